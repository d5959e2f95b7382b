package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"numOfCartItems": len(cart.Items), "data": cart})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "add_to_cart", apperr.Validation("invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "add_to_cart", err)
	}
	cart, err := h.Svc.AddToCart(ctx, userID, req)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	l.Info("add_to_cart_success", "cart_id", cart.ID)
	return c.JSON(http.StatusOK, echo.Map{"numOfCartItems": len(cart.Items), "data": cart})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "remove_item", err)
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return fail(l, "remove_item", err)
	}
	cart, err := h.Svc.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return fail(l, "remove_item", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"numOfCartItems": len(cart.Items), "data": cart})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear_cart")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "clear_cart", err)
	}
	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}
