package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/internal/util"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "create_order", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "create_order", apperr.Validation("invalid body"))
	}

	staff := isStaff(c)
	// staff may place orders on behalf of another user
	if req.User != nil && staff {
		userID = *req.User
	}

	// only staff may set amounts; everyone else is charged catalog prices
	draft := service.OrderDraft{
		UserID:           userID,
		ShippingAddress:  addressFrom(req.ShippingAddress),
		TaxPrice:         req.TaxPrice,
		ShippingPrice:    req.ShippingPrice,
		TotalOrderPrice:  req.TotalOrderPrice,
		PaymentMethod:    models.PaymentMethod(req.PaymentMethodType),
		PriceFromCatalog: !staff,
	}
	for _, it := range req.CartItems {
		draft.Items = append(draft.Items, service.DraftItem{ProductID: it.ProductID, Count: it.Count, Color: it.Color, Price: it.Price})
	}

	order, err := h.Svc.CreateOrder(ctx, draft)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "sequence_id", order.SequenceID)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": order})
}

func (h *OrderHTTP) CreateCashOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_cash_order")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "create_cash_order", err)
	}
	cartID, err := pathID(c, "cartId")
	if err != nil {
		return fail(l, "create_cash_order", err)
	}

	var req transport.CashOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "create_cash_order", apperr.Validation("invalid body"))
	}

	order, err := h.Svc.CreateCashOrder(ctx, userID, cartID, addressFrom(req.ShippingAddress))
	if err != nil {
		return fail(l, "create_cash_order", err)
	}

	l.Info("create_cash_order_success", "order_id", order.ID, "sequence_id", order.SequenceID)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": order})
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "get_orders", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	filter := service.OrderFilter{Page: page, Size: size}
	if !isStaff(c) {
		filter.UserID = &userID
	}

	orders, total, err := h.Svc.FindOrders(ctx, filter)
	if err != nil {
		return fail(l, "get_orders", err)
	}

	offset, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, echo.Map{
		"results": len(orders),
		"data":    orders,
		"meta":    transport.NewListMeta(max(page, 1), offset, limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := callerID(c)
	if err != nil {
		return fail(l, "get_order", err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_order", err)
	}

	order, err := h.Svc.FindOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order", err)
	}
	if order.UserID != userID && !isStaff(c) {
		return fail(l, "get_order", apperr.NotFound("There is no order with id "+id.String()))
	}

	return c.JSON(http.StatusOK, echo.Map{"data": order})
}

func (h *OrderHTTP) MarkPaid(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mark_paid")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "mark_paid", err)
	}
	order, err := h.Svc.MarkPaid(ctx, id)
	if err != nil {
		return fail(l, "mark_paid", err)
	}

	l.Info("mark_paid_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": order})
}

func (h *OrderHTTP) MarkDelivered(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mark_delivered")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "mark_delivered", err)
	}
	order, err := h.Svc.MarkDelivered(ctx, id)
	if err != nil {
		return fail(l, "mark_delivered", err)
	}

	l.Info("mark_delivered_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": order})
}

func addressFrom(a transport.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{Details: a.Details, Phone: a.Phone, City: a.City, PostalCode: a.PostalCode}
}
