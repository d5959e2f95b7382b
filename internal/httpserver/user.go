package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "create_user", apperr.Validation("invalid body"))
	}
	u, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		return fail(l, "create_user", err)
	}

	l.Info("create_user_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, echo.Map{"data": u})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_user", err)
	}
	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(l, "get_user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}
