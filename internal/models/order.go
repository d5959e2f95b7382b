package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderSequence is the counter name that numbers orders.
const OrderSequence = "orderId"

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCash
}

type ShippingAddress struct {
	Details    string `json:"details"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"                            json:"id"`
	SequenceID        int64           `gorm:"uniqueIndex;not null"                            json:"sequence_id"`
	UserID            uuid.UUID       `gorm:"type:uuid;index;not null"                        json:"user_id"`
	CartItems         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"  json:"cart_items"`
	ShippingAddress   ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"               json:"shipping_address"`
	TaxPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"           json:"tax_price"`
	ShippingPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"           json:"shipping_price"`
	TotalOrderPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"           json:"total_order_price"`
	PaymentMethodType PaymentMethod   `gorm:"type:varchar(8);not null;default:cash"           json:"payment_method_type"`
	IsPaid            bool            `gorm:"not null;default:false"                          json:"is_paid"`
	PaidAt            *time.Time      `                                                       json:"paid_at"`
	IsDelivered       bool            `gorm:"not null;default:false"                          json:"is_delivered"`
	DeliveredAt       *time.Time      `                                                       json:"delivered_at"`
	CheckoutSessionID *string         `gorm:"size:255;uniqueIndex"                            json:"-"`
	CreatedAt         time.Time       `                                                       json:"created_at"`
	UpdatedAt         time.Time       `                                                       json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                  json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"              json:"order_id"`
	Position  int             `gorm:"not null"                              json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"                    json:"product_id"`
	Count     int             `gorm:"not null;default:1;check:count>0"      json:"count"`
	Color     string          `                                             json:"color"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"           json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Counter holds the last value handed out for a named sequence.
type Counter struct {
	Name      string    `gorm:"primaryKey;size:64"     json:"name"`
	Value     int64     `gorm:"not null;default:0"     json:"value"`
	CreatedAt time.Time `                              json:"created_at"`
	UpdatedAt time.Time `                              json:"updated_at"`
}

func (Counter) TableName() string {
	return "counters"
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Product{}, &Cart{}, &CartItem{}, &Counter{}, &Order{}, &OrderItem{}}
}
