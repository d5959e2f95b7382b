package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
)

type OrderRepo struct {
	DB       *gorm.DB
	Counters *CounterRepo
}

type OrderQuery struct {
	UserID *uuid.UUID
	Offset int
	Limit  int
}

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// CreateOrder assigns the next order number and inserts the order in one transaction.
// When cart is non-nil its products are taken out of stock and the cart is removed in the
// same transaction. Any failure rolls back the counter increment as well.
func (r *OrderRepo) CreateOrder(ctx context.Context, order *models.Order, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := r.Counters.nextValue(tx, models.OrderSequence)
		if err != nil {
			return err
		}
		order.SequenceID = seq

		for i := range order.CartItems {
			order.CartItems[i].Position = i
		}

		if err := tx.Create(order).Error; err != nil {
			return apperr.Storage("insert order", err)
		}

		if cart == nil {
			return nil
		}
		return consumeCart(tx, cart)
	})
}

// ErrCartConsumed is returned when the cart behind an order was already checked out.
var ErrCartConsumed = errors.New("cart already checked out")

// consumeCart claims the cart by deleting it first. A cart that is already gone means a
// concurrent or repeated checkout won, and the whole order transaction is rolled back.
func consumeCart(tx *gorm.DB, cart *models.Cart) error {
	res := tx.Delete(&models.Cart{}, "id = ?", cart.ID)
	if res.Error != nil {
		return apperr.Storage("delete cart", res.Error)
	}
	if res.RowsAffected != 1 {
		return apperr.Conflict("cart already checked out", ErrCartConsumed)
	}
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.Storage("delete cart items", err)
	}

	for _, it := range cart.Items {
		res := tx.Model(&models.Product{}).
			Where("id = ?", it.ProductID).
			Updates(map[string]any{
				"quantity": gorm.Expr("quantity - ?", it.Count),
				"sold":     gorm.Expr("sold + ?", it.Count),
			})
		if res.Error != nil {
			return apperr.Storage("update product stock", res.Error)
		}
	}
	return nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("CartItems", itemsByPosition).First(&order, "id = ?", id).Error; err != nil {
		return nil, apperr.Storage("get order", err)
	}
	return &order, nil
}

// GetBySession finds the order recorded for a payment checkout session.
func (r *OrderRepo) GetBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("CartItems", itemsByPosition).First(&order, "checkout_session_id = ?", sessionID).Error; err != nil {
		return nil, apperr.Storage("get order by session", err)
	}
	return &order, nil
}

func (r *OrderRepo) ListOrders(ctx context.Context, q OrderQuery) (int64, []models.Order, error) {
	base := r.DB.WithContext(ctx).Model(&models.Order{})
	if q.UserID != nil {
		base = base.Where("user_id = ?", *q.UserID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, apperr.Storage("count orders", err)
	}

	var orders []models.Order
	if err := base.Session(&gorm.Session{}).
		Preload("CartItems", itemsByPosition).
		Order("sequence_id DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&orders).Error; err != nil {
		return 0, nil, apperr.Storage("list orders", err)
	}
	return total, orders, nil
}

func (r *OrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateStatus(ctx, id, map[string]any{"is_paid": true, "paid_at": at})
}

func (r *OrderRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateStatus(ctx, id, map[string]any{"is_delivered": true, "delivered_at": at})
}

func (r *OrderRepo) updateStatus(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperr.Storage("update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Storage("update order status", gorm.ErrRecordNotFound)
	}
	return nil
}
