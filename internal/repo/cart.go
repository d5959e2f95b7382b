package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
)

type CartRepo struct {
	DB *gorm.DB
}

func (r *CartRepo) GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Preload("Items").First(&cart, "id = ?", id).Error; err != nil {
		return nil, apperr.Storage("get cart", err)
	}
	return &cart, nil
}

func (r *CartRepo) GetCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Preload("Items").First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, apperr.Storage("get user cart", err)
	}
	return &cart, nil
}

// AddItem puts count units of a product in the user's cart, creating the cart on first use.
// An existing line with the same product and color is incremented instead of duplicated.
func (r *CartRepo) AddItem(ctx context.Context, userID uuid.UUID, item models.CartItem) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&cart, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{UserID: userID}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ? AND color = ?", cart.ID, item.ProductID, item.Color).
			Update("count", gorm.Expr("count + ?", item.Count))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			item.ID = uuid.Nil
			item.CartID = cart.ID
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		return refreshTotal(tx, &cart)
	})
	if err != nil {
		return nil, apperr.Storage("add cart item", err)
	}
	return &cart, nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cart, "user_id = ?", userID).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return refreshTotal(tx, &cart)
	})
	if err != nil {
		return nil, apperr.Storage("remove cart item", err)
	}
	return &cart, nil
}

func (r *CartRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return apperr.Storage("clear cart", r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.First(&cart, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	}))
}

func refreshTotal(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Where("cart_id = ?", cart.ID).Find(&cart.Items).Error; err != nil {
		return err
	}
	cart.Recalculate()
	return tx.Model(cart).Update("total_cart_price", cart.TotalCartPrice).Error
}
