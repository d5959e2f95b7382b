package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

func (s *OrderService) expandOne(ctx context.Context, order *models.Order) *transport.OrderResponse {
	out := s.expand(ctx, []models.Order{*order})
	return &out[0]
}

// expand replaces user and product references with their summaries. It issues at most one
// query per referenced table. A failed lookup or a missing row leaves the summary nil.
func (s *OrderService) expand(ctx context.Context, orders []models.Order) []transport.OrderResponse {
	userIDs := make([]uuid.UUID, 0, len(orders))
	productIDs := make([]uuid.UUID, 0, len(orders))
	seenUser := map[uuid.UUID]bool{}
	seenProduct := map[uuid.UUID]bool{}
	for _, o := range orders {
		if !seenUser[o.UserID] {
			seenUser[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
		for _, it := range o.CartItems {
			if !seenProduct[it.ProductID] {
				seenProduct[it.ProductID] = true
				productIDs = append(productIDs, it.ProductID)
			}
		}
	}

	l := logging.FromContext(ctx)

	users, err := s.Users.Summaries(ctx, userIDs)
	if err != nil {
		l.Warn("expand_users_error", "error", err)
		users = map[uuid.UUID]repo.UserSummary{}
	}
	products, err := s.Catalog.Summaries(ctx, productIDs)
	if err != nil {
		l.Warn("expand_products_error", "error", err)
		products = map[uuid.UUID]repo.ProductSummary{}
	}

	out := make([]transport.OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o, users, products)
	}
	return out
}

func toOrderResponse(o models.Order, users map[uuid.UUID]repo.UserSummary, products map[uuid.UUID]repo.ProductSummary) transport.OrderResponse {
	resp := transport.OrderResponse{
		ID:         o.ID,
		SequenceID: o.SequenceID,
		UserID:     o.UserID,
		CartItems:  make([]transport.OrderItemResponse, len(o.CartItems)),
		ShippingAddress: transport.ShippingAddress{
			Details:    o.ShippingAddress.Details,
			Phone:      o.ShippingAddress.Phone,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
		},
		TaxPrice:          o.TaxPrice,
		ShippingPrice:     o.ShippingPrice,
		TotalOrderPrice:   o.TotalOrderPrice,
		PaymentMethodType: string(o.PaymentMethodType),
		IsPaid:            o.IsPaid,
		PaidAt:            o.PaidAt,
		IsDelivered:       o.IsDelivered,
		DeliveredAt:       o.DeliveredAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	if u, ok := users[o.UserID]; ok {
		resp.User = &transport.UserSummary{ID: u.ID, Name: u.Name, ProfileImg: u.ProfileImg, Email: u.Email, Phone: u.Phone}
	}

	for i, it := range o.CartItems {
		item := transport.OrderItemResponse{ProductID: it.ProductID, Count: it.Count, Color: it.Color, Price: it.Price}
		if p, ok := products[it.ProductID]; ok {
			item.Product = &transport.ProductSummary{
				ID:              p.ID,
				Title:           p.Title,
				ImageCover:      p.ImageCover,
				RatingsAverage:  p.RatingsAverage,
				RatingsQuantity: p.RatingsQuantity,
			}
		}
		resp.CartItems[i] = item
	}
	return resp
}
