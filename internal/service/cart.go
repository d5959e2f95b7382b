package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
)

type CartService struct {
	Repo    *repo.CartRepo
	Catalog *repo.CatalogRepo
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "There is no cart for this user")
	}
	return cart, nil
}

// AddToCart snapshots the product's current price into the cart line.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddToCartRequest) (*models.Cart, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	product, err := s.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, notFound(err, "There is no product with id "+req.ProductID.String())
	}

	return s.Repo.AddItem(ctx, userID, models.CartItem{
		ProductID: product.ID,
		Count:     count,
		Color:     req.Color,
		Price:     product.Price,
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return nil, notFound(err, "There is no cart item with id "+itemID.String())
	}
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return notFound(s.Repo.ClearCart(ctx, userID), "There is no cart for this user")
}
