package httpserver

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	authmw "github.com/elkhamyyali/ecommerceback/pkg/middleware/auth"
)

func callerID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(authmw.ContextUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, apperr.Validation("unauthorized")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperr.Validation("unauthorized")
	}
	return id, nil
}

func isStaff(c echo.Context) bool {
	role, _ := c.Get(authmw.ContextRole).(string)
	return role == models.RoleAdmin || role == models.RoleManager
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid " + name + " format")
	}
	return id, nil
}

// fail logs a handler error at the level its status deserves and returns it for the error handler.
func fail(l *slog.Logger, op string, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		l.Error(op+"_error", "status", status, "error", err)
	} else {
		l.Warn(op+"_error", "status", status, "reason", apperr.PublicMessage(err), "error", err)
	}
	return err
}
