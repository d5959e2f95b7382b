package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ProfileImg string    `json:"profile_img"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
}

type ProductSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	ImageCover      string    `json:"image_cover"`
	RatingsAverage  float64   `json:"ratings_average"`
	RatingsQuantity int       `json:"ratings_quantity"`
}

type ShippingAddress struct {
	Details    string `json:"details"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// OrderItemResponse carries the expanded product; Product is null when it no longer exists.
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Product   *ProductSummary `json:"product"`
	Count     int             `json:"count"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	SequenceID        int64               `json:"sequence_id"`
	UserID            uuid.UUID           `json:"user_id"`
	User              *UserSummary        `json:"user"`
	CartItems         []OrderItemResponse `json:"cart_items"`
	ShippingAddress   ShippingAddress     `json:"shipping_address"`
	TaxPrice          decimal.Decimal     `json:"tax_price"`
	ShippingPrice     decimal.Decimal     `json:"shipping_price"`
	TotalOrderPrice   decimal.Decimal     `json:"total_order_price"`
	PaymentMethodType string              `json:"payment_method_type"`
	IsPaid            bool                `json:"is_paid"`
	PaidAt            *time.Time          `json:"paid_at"`
	IsDelivered       bool                `json:"is_delivered"`
	DeliveredAt       *time.Time          `json:"delivered_at"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type CreateOrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Count     int             `json:"count"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	User              *uuid.UUID        `json:"user"`
	CartItems         []CreateOrderItem `json:"cart_items"`
	ShippingAddress   ShippingAddress   `json:"shipping_address"`
	TaxPrice          decimal.Decimal   `json:"tax_price"`
	ShippingPrice     decimal.Decimal   `json:"shipping_price"`
	TotalOrderPrice   decimal.Decimal   `json:"total_order_price"`
	PaymentMethodType string            `json:"payment_method_type"`
}

type CashOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

type ListMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewListMeta(page, offset, limit int, total int64) ListMeta {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return ListMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

type CreateProductRequest struct {
	Title       string          `json:"title"       validate:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"    validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	ImageCover  string          `json:"image_cover"`
}

type PatchProductRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	ImageCover  *string          `json:"image_cover"`
}

type CreateUserRequest struct {
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	Phone      string `json:"phone"`
	ProfileImg string `json:"profile_img"`
	Password   string `json:"password"    validate:"min=6"`
	Role       string `json:"role"        validate:"omitempty,oneof=user manager admin"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Count     int       `json:"count"      validate:"gte=0"`
	Color     string    `json:"color"`
}
