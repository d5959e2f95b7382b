package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Name         string    `gorm:"not null"                json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"    json:"email"`
	Phone        string    `                               json:"phone"`
	ProfileImg   string    `                               json:"profile_img"`
	PasswordHash string    `gorm:"not null"                json:"-"`
	Role         string    `gorm:"not null;default:user"   json:"role"`
	CreatedAt    time.Time `                               json:"created_at"`
	UpdatedAt    time.Time `                               json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"             json:"id"`
	Title           string          `gorm:"not null"                         json:"title"`
	Description     string          `gorm:"not null"                         json:"description"`
	Quantity        int             `gorm:"not null;default:0"               json:"quantity"`
	Sold            int             `gorm:"not null;default:0"               json:"sold"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null"      json:"price"`
	ImageCover      string          `                                        json:"image_cover"`
	RatingsAverage  float64         `gorm:"not null;default:0"               json:"ratings_average"`
	RatingsQuantity int             `gorm:"not null;default:0"               json:"ratings_quantity"`
	CreatedAt       time.Time       `                                        json:"created_at"`
	UpdatedAt       time.Time       `                                        json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Cart struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"                           json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"                 json:"user_id"`
	Items          []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"  json:"items"`
	TotalCartPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"          json:"total_cart_price"`
	CreatedAt      time.Time       `                                                      json:"created_at"`
	UpdatedAt      time.Time       `                                                      json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Recalculate sums price*count over the items.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Count))))
	}
	c.TotalCartPrice = total
}

type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                  json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;index;not null"              json:"cart_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"                    json:"product_id"`
	Count     int             `gorm:"not null;default:1;check:count>0"      json:"count"`
	Color     string          `                                             json:"color"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"           json:"price"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}
