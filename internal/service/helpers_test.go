package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/testenv"
	"github.com/elkhamyyali/ecommerceback/pkg/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	counters *repo.CounterRepo
	orders   *OrderService
	carts    *CartService
	events   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testenv.DB(t)

	counters := repo.NewCounterRepo(db, 0, 1)
	catalog := &repo.CatalogRepo{DB: db}
	cartRepo := &repo.CartRepo{DB: db}
	pub := &recordingPublisher{}

	return &fixture{
		db:       db,
		counters: counters,
		events:   pub,
		orders: &OrderService{
			Orders:        &repo.OrderRepo{DB: db, Counters: counters},
			Users:         &repo.UserRepo{DB: db},
			Catalog:       catalog,
			Carts:         cartRepo,
			Events:        pub,
			TaxPrice:      decimal.RequireFromString("1.50"),
			ShippingPrice: decimal.RequireFromString("3"),
		},
		carts: &CartService{Repo: cartRepo, Catalog: catalog},
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Mona", Email: email, Phone: "0100", ProfileImg: "mona.png", PasswordHash: "x"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) product(t *testing.T, title, price string, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:           title,
		Description:     title + " description",
		Quantity:        qty,
		Price:           decimal.RequireFromString(price),
		ImageCover:      title + ".jpg",
		RatingsAverage:  4.5,
		RatingsQuantity: 12,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) currentSeq(t *testing.T) int64 {
	t.Helper()
	v, err := f.counters.Current(context.Background(), models.OrderSequence)
	require.NoError(t, err)
	return v
}

func draftFor(userID uuid.UUID, products ...*models.Product) OrderDraft {
	d := OrderDraft{
		UserID:          userID,
		ShippingAddress: models.ShippingAddress{Details: "12 Nile St", Phone: "0100", City: "Cairo", PostalCode: "11511"},
		TaxPrice:        decimal.RequireFromString("2"),
		ShippingPrice:   decimal.RequireFromString("5"),
	}
	for i, p := range products {
		d.Items = append(d.Items, DraftItem{ProductID: p.ID, Count: i + 1, Color: "red", Price: p.Price})
	}
	return d
}
