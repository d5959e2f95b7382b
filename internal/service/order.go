package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/internal/util"
	"github.com/elkhamyyali/ecommerceback/internal/webhook"
	"github.com/elkhamyyali/ecommerceback/pkg/events"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
	"github.com/elkhamyyali/ecommerceback/pkg/metrics"
)

type DraftItem struct {
	ProductID uuid.UUID
	Count     int
	Color     string
	Price     decimal.Decimal
}

// OrderDraft is an order before it has been numbered and stored.
type OrderDraft struct {
	UserID          uuid.UUID
	Items           []DraftItem
	ShippingAddress models.ShippingAddress
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalOrderPrice decimal.Decimal
	PaymentMethod   models.PaymentMethod
	IsPaid          bool

	// PriceFromCatalog discards client amounts: item prices come from the catalog and
	// tax and shipping from configuration.
	PriceFromCatalog bool
	// CheckoutSessionID ties a card order to the payment session that created it.
	CheckoutSessionID string
}

type OrderFilter struct {
	UserID *uuid.UUID
	Page   int
	Size   int
}

type OrderService struct {
	Orders        *repo.OrderRepo
	Users         *repo.UserRepo
	Catalog       *repo.CatalogRepo
	Carts         *repo.CartRepo
	Events        events.Publisher
	Metrics       *metrics.ServerMetrics
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	Now           func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateOrder validates the draft, numbers it from the "orderId" sequence and stores it.
// The sequence increment and the insert share one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, draft OrderDraft) (*transport.OrderResponse, error) {
	if draft.PriceFromCatalog {
		if err := s.priceFromCatalog(ctx, &draft); err != nil {
			return nil, err
		}
	}
	order, err := s.buildOrder(draft)
	if err != nil {
		return nil, err
	}
	if err := s.Orders.CreateOrder(ctx, order, nil); err != nil {
		return nil, err
	}
	s.created(ctx, order)
	return s.expandOne(ctx, order), nil
}

func (s *OrderService) priceFromCatalog(ctx context.Context, draft *OrderDraft) error {
	if len(draft.Items) == 0 {
		return apperr.Validation("order must have at least one cart item")
	}
	ids := make([]uuid.UUID, 0, len(draft.Items))
	for _, it := range draft.Items {
		ids = append(ids, it.ProductID)
	}
	prices, err := s.Catalog.Prices(ctx, ids)
	if err != nil {
		return err
	}

	items := make([]DraftItem, len(draft.Items))
	for i, it := range draft.Items {
		price, ok := prices[it.ProductID]
		if !ok {
			return apperr.Validation("There is no product with id " + it.ProductID.String())
		}
		it.Price = price
		items[i] = it
	}
	draft.Items = items
	draft.TaxPrice = s.TaxPrice
	draft.ShippingPrice = s.ShippingPrice
	draft.TotalOrderPrice = decimal.Zero
	return nil
}

func (s *OrderService) buildOrder(draft OrderDraft) (*models.Order, error) {
	if draft.UserID == uuid.Nil {
		return nil, apperr.Validation("order must belong to user")
	}

	method := draft.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	if !method.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("payment method %q is not one of card, cash", method))
	}

	if draft.TaxPrice.IsNegative() || draft.ShippingPrice.IsNegative() || draft.TotalOrderPrice.IsNegative() {
		return nil, apperr.Validation("prices must be >= 0")
	}

	items := make([]models.OrderItem, 0, len(draft.Items))
	itemsTotal := decimal.Zero
	for _, it := range draft.Items {
		if it.ProductID == uuid.Nil {
			return nil, apperr.Validation("product is required for every cart item")
		}
		if it.Count < 0 {
			return nil, apperr.Validation("count must be > 0")
		}
		if it.Price.IsNegative() {
			return nil, apperr.Validation("price must be >= 0")
		}
		count := it.Count
		if count == 0 {
			count = 1
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Count:     count,
			Color:     it.Color,
			Price:     it.Price,
		})
		itemsTotal = itemsTotal.Add(it.Price.Mul(decimal.NewFromInt(int64(count))))
	}

	total := draft.TotalOrderPrice
	if total.IsZero() {
		total = itemsTotal.Add(draft.TaxPrice).Add(draft.ShippingPrice)
	}

	order := &models.Order{
		UserID:            draft.UserID,
		CartItems:         items,
		ShippingAddress:   draft.ShippingAddress,
		TaxPrice:          draft.TaxPrice,
		ShippingPrice:     draft.ShippingPrice,
		TotalOrderPrice:   total,
		PaymentMethodType: method,
	}
	if draft.CheckoutSessionID != "" {
		sessionID := draft.CheckoutSessionID
		order.CheckoutSessionID = &sessionID
	}
	if draft.IsPaid {
		at := s.now()
		order.IsPaid = true
		order.PaidAt = &at
	}
	return order, nil
}

func (s *OrderService) FindOrders(ctx context.Context, f OrderFilter) ([]transport.OrderResponse, int64, error) {
	offset, limit := util.Calculate(f.Page, f.Size)
	total, orders, err := s.Orders.ListOrders(ctx, repo.OrderQuery{UserID: f.UserID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	return s.expand(ctx, orders), total, nil
}

func (s *OrderService) FindOrder(ctx context.Context, id uuid.UUID) (*transport.OrderResponse, error) {
	order, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "There is no order with id "+id.String())
	}
	return s.expandOne(ctx, order), nil
}

// CreateCashOrder turns the caller's cart into an unpaid cash order. Stock is moved and the
// cart removed in the same transaction as the insert.
func (s *OrderService) CreateCashOrder(ctx context.Context, userID, cartID uuid.UUID, addr models.ShippingAddress) (*transport.OrderResponse, error) {
	cart, err := s.Carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, notFound(err, "There is no cart with id "+cartID.String())
	}
	if cart.UserID != userID {
		return nil, apperr.NotFound("There is no cart with id " + cartID.String())
	}

	return s.orderFromCart(ctx, cart, OrderDraft{
		UserID:          userID,
		ShippingAddress: addr,
		TaxPrice:        s.TaxPrice,
		ShippingPrice:   s.ShippingPrice,
		PaymentMethod:   models.PaymentCash,
	})
}

// CreateCardOrder records a paid card order for a completed checkout session.
// A session that already produced an order returns that order, so redelivered
// notifications are answered without creating anything.
func (s *OrderService) CreateCardOrder(ctx context.Context, session webhook.CheckoutSession) (*transport.OrderResponse, error) {
	if existing, err := s.sessionOrder(ctx, session.ID); err != nil || existing != nil {
		return existing, err
	}

	cartID, err := session.CartID()
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	cart, err := s.Carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, notFound(err, "There is no cart with id "+cartID.String())
	}
	user, err := s.Users.GetByEmail(ctx, session.CustomerEmail)
	if err != nil {
		return nil, notFound(err, "There is no user with email "+session.CustomerEmail)
	}

	resp, err := s.orderFromCart(ctx, cart, OrderDraft{
		UserID: user.ID,
		ShippingAddress: models.ShippingAddress{
			Details:    session.Metadata["details"],
			Phone:      session.Metadata["phone"],
			City:       session.Metadata["city"],
			PostalCode: session.Metadata["postal_code"],
		},
		TotalOrderPrice:   decimal.New(session.AmountTotal, -2),
		PaymentMethod:     models.PaymentCard,
		IsPaid:            true,
		CheckoutSessionID: session.ID,
	})
	if errors.Is(err, repo.ErrCartConsumed) {
		// a concurrent delivery of the same session may have won the cart
		if existing, lookupErr := s.sessionOrder(ctx, session.ID); lookupErr == nil && existing != nil {
			return existing, nil
		}
	}
	return resp, err
}

// sessionOrder returns the order already created for sessionID, or nil when there is none.
func (s *OrderService) sessionOrder(ctx context.Context, sessionID string) (*transport.OrderResponse, error) {
	if sessionID == "" {
		return nil, nil
	}
	order, err := s.Orders.GetBySession(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, order), nil
}

func (s *OrderService) orderFromCart(ctx context.Context, cart *models.Cart, draft OrderDraft) (*transport.OrderResponse, error) {
	if len(cart.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}
	for _, it := range cart.Items {
		draft.Items = append(draft.Items, DraftItem{ProductID: it.ProductID, Count: it.Count, Color: it.Color, Price: it.Price})
	}
	if draft.TotalOrderPrice.IsZero() {
		draft.TotalOrderPrice = cart.TotalCartPrice.Add(draft.TaxPrice).Add(draft.ShippingPrice)
	}

	order, err := s.buildOrder(draft)
	if err != nil {
		return nil, err
	}
	if err := s.Orders.CreateOrder(ctx, order, cart); err != nil {
		return nil, err
	}
	s.created(ctx, order)
	return s.expandOne(ctx, order), nil
}

func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID) (*transport.OrderResponse, error) {
	if err := s.Orders.MarkPaid(ctx, id, s.now()); err != nil {
		return nil, notFound(err, "There is no order with id "+id.String())
	}
	return s.afterStatusChange(ctx, id, events.OrderPaid)
}

func (s *OrderService) MarkDelivered(ctx context.Context, id uuid.UUID) (*transport.OrderResponse, error) {
	if err := s.Orders.MarkDelivered(ctx, id, s.now()); err != nil {
		return nil, notFound(err, "There is no order with id "+id.String())
	}
	return s.afterStatusChange(ctx, id, events.OrderDelivered)
}

func (s *OrderService) afterStatusChange(ctx context.Context, id uuid.UUID, eventType string) (*transport.OrderResponse, error) {
	order, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "There is no order with id "+id.String())
	}
	s.publish(ctx, eventType, order)
	return s.expandOne(ctx, order), nil
}

func (s *OrderService) created(ctx context.Context, order *models.Order) {
	if s.Metrics != nil {
		s.Metrics.OrdersCreated.Inc()
	}
	s.publish(ctx, events.OrderCreated, order)
}

// publish never fails the caller; the order is already committed.
func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.Events == nil {
		return
	}
	ev := events.Event{
		Type:       eventType,
		OrderID:    order.ID.String(),
		SequenceID: order.SequenceID,
		UserID:     order.UserID.String(),
		Total:      order.TotalOrderPrice.String(),
		OccurredAt: s.now(),
	}
	if err := s.Events.Publish(ctx, order.ID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "event", eventType, "order_id", order.ID, "error", err)
	}
}

// notFound turns a missing row into ErrNotFound and leaves other errors alone.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
