package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/webhook"
	"github.com/elkhamyyali/ecommerceback/pkg/events"
)

func TestCreateOrder_SequentialNumbers(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	first, err := f.orders.CreateOrder(ctx, draftFor(u.ID, p))
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.SequenceID)
	assert.EqualValues(t, 1, f.currentSeq(t))

	second, err := f.orders.CreateOrder(ctx, draftFor(u.ID, p))
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.SequenceID)
	assert.EqualValues(t, 2, f.currentSeq(t))

	assert.Equal(t, []string{events.OrderCreated, events.OrderCreated}, f.events.types())
}

func TestCreateOrder_MissingUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.CreateOrder(context.Background(), OrderDraft{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "order must belong to user", err.Error())

	assert.EqualValues(t, 0, f.currentSeq(t))
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateOrder_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)

	bad := []OrderDraft{
		func() OrderDraft { d := draftFor(u.ID, p); d.PaymentMethod = "cheque"; return d }(),
		func() OrderDraft { d := draftFor(u.ID, p); d.TaxPrice = decimal.NewFromInt(-1); return d }(),
		func() OrderDraft { d := draftFor(u.ID, p); d.Items[0].Count = -2; return d }(),
		func() OrderDraft { d := draftFor(u.ID, p); d.Items[0].ProductID = uuid.Nil; return d }(),
	}
	for i, d := range bad {
		_, err := f.orders.CreateOrder(context.Background(), d)
		assert.ErrorIs(t, err, apperr.ErrValidation, "draft %d", i)
	}
	assert.EqualValues(t, 0, f.currentSeq(t))
}

func TestCreateOrder_Defaults(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)

	d := draftFor(u.ID, p)
	d.Items[0].Count = 0

	got, err := f.orders.CreateOrder(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentCash), got.PaymentMethodType)
	assert.Equal(t, 1, got.CartItems[0].Count)
	assert.False(t, got.IsPaid)
	// 10*1 + 2 tax + 5 shipping
	assert.True(t, got.TotalOrderPrice.Equal(decimal.NewFromInt(17)), got.TotalOrderPrice.String())
}

func TestCreateOrder_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)

	const n = 20
	seqs := make(chan int64, n)
	errs := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.orders.CreateOrder(context.Background(), draftFor(u.ID, p))
			if err != nil {
				errs <- err
				return
			}
			seqs <- o.SequenceID
		}()
	}
	wg.Wait()
	close(seqs)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[int64]bool{}
	for s := range seqs {
		assert.False(t, seen[s], "duplicate sequence id %d", s)
		seen[s] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing sequence id %d", i)
	}
	assert.EqualValues(t, n, f.currentSeq(t))
}

func TestCreateOrder_FailedInsertConsumesNoNumber(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	const hook = "test:fail_order_insert"
	boom := errors.New("disk full")
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register(hook, func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "orders" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := f.orders.CreateOrder(ctx, draftFor(u.ID, p))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, f.currentSeq(t))
	assert.Empty(t, f.events.types())

	require.NoError(t, f.db.Callback().Create().Remove(hook))

	o, err := f.orders.CreateOrder(ctx, draftFor(u.ID, p))
	require.NoError(t, err)
	assert.EqualValues(t, 1, o.SequenceID)
}

func TestFindOrder_RoundTripWithExpansion(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	shirt := f.product(t, "shirt", "19.99", 5)
	mug := f.product(t, "mug", "4.25", 5)
	ctx := context.Background()

	d := draftFor(u.ID, shirt, mug)
	created, err := f.orders.CreateOrder(ctx, d)
	require.NoError(t, err)

	got, err := f.orders.FindOrder(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.SequenceID, got.SequenceID)
	assert.Equal(t, d.ShippingAddress.City, got.ShippingAddress.City)
	assert.Equal(t, d.ShippingAddress.PostalCode, got.ShippingAddress.PostalCode)
	assert.True(t, got.TaxPrice.Equal(d.TaxPrice))
	assert.True(t, got.ShippingPrice.Equal(d.ShippingPrice))
	// 19.99*1 + 4.25*2 + 2 + 5
	assert.True(t, got.TotalOrderPrice.Equal(decimal.RequireFromString("35.49")), got.TotalOrderPrice.String())

	require.NotNil(t, got.User)
	assert.Equal(t, "Mona", got.User.Name)
	assert.Equal(t, "mona@example.com", got.User.Email)
	assert.Equal(t, "0100", got.User.Phone)
	assert.Equal(t, "mona.png", got.User.ProfileImg)

	require.Len(t, got.CartItems, 2)
	assert.Equal(t, shirt.ID, got.CartItems[0].ProductID)
	assert.Equal(t, 1, got.CartItems[0].Count)
	assert.Equal(t, "red", got.CartItems[0].Color)
	assert.True(t, got.CartItems[0].Price.Equal(shirt.Price))
	require.NotNil(t, got.CartItems[0].Product)
	assert.Equal(t, "shirt", got.CartItems[0].Product.Title)
	assert.Equal(t, "shirt.jpg", got.CartItems[0].Product.ImageCover)
	assert.Equal(t, 4.5, got.CartItems[0].Product.RatingsAverage)
	assert.Equal(t, 12, got.CartItems[0].Product.RatingsQuantity)

	assert.Equal(t, mug.ID, got.CartItems[1].ProductID)
	assert.Equal(t, 2, got.CartItems[1].Count)
}

func TestFindOrder_PriceIsSnapshot(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	created, err := f.orders.CreateOrder(ctx, draftFor(u.ID, p))
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", decimal.NewFromInt(99)).Error)

	got, err := f.orders.FindOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.CartItems[0].Price.Equal(decimal.NewFromInt(10)))
}

func TestFindOrder_MissingReferencesExpandToNull(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	created, err := f.orders.CreateOrder(ctx, draftFor(uuid.New(), p))
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.Product{}, "id = ?", p.ID).Error)

	got, err := f.orders.FindOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.User)
	require.Len(t, got.CartItems, 1)
	assert.Nil(t, got.CartItems[0].Product)
	assert.Equal(t, p.ID, got.CartItems[0].ProductID)
}

func TestFindOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.FindOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFindOrders_ScopedAndPaged(t *testing.T) {
	f := newFixture(t)
	mona := f.user(t, "mona@example.com")
	omar := f.user(t, "omar@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.orders.CreateOrder(ctx, draftFor(mona.ID, p))
		require.NoError(t, err)
	}
	_, err := f.orders.CreateOrder(ctx, draftFor(omar.ID, p))
	require.NoError(t, err)

	all, total, err := f.orders.FindOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)
	assert.EqualValues(t, 4, all[0].SequenceID)

	mine, total, err := f.orders.FindOrders(ctx, OrderFilter{UserID: &mona.ID, Page: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, mine, 1)
	assert.EqualValues(t, 1, mine[0].SequenceID)
	require.NotNil(t, mine[0].User)
	assert.Equal(t, mona.ID, mine[0].User.ID)
}

func TestCreateCashOrder_ConsumesCart(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	cart, err := f.carts.AddToCart(ctx, u.ID, addReq(p.ID, 2))
	require.NoError(t, err)

	o, err := f.orders.CreateCashOrder(ctx, u.ID, cart.ID, models.ShippingAddress{City: "Giza"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, o.SequenceID)
	assert.Equal(t, string(models.PaymentCash), o.PaymentMethodType)
	// 2*10 + 1.50 + 3
	assert.True(t, o.TotalOrderPrice.Equal(decimal.RequireFromString("24.5")), o.TotalOrderPrice.String())

	var stock models.Product
	require.NoError(t, f.db.First(&stock, "id = ?", p.ID).Error)
	assert.Equal(t, 3, stock.Quantity)
	assert.Equal(t, 2, stock.Sold)

	_, err = f.carts.GetCart(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateCashOrder_ForeignOrEmptyCart(t *testing.T) {
	f := newFixture(t)
	mona := f.user(t, "mona@example.com")
	omar := f.user(t, "omar@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	cart, err := f.carts.AddToCart(ctx, mona.ID, addReq(p.ID, 1))
	require.NoError(t, err)

	_, err = f.orders.CreateCashOrder(ctx, omar.ID, cart.ID, models.ShippingAddress{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.orders.CreateCashOrder(ctx, mona.ID, uuid.New(), models.ShippingAddress{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	item := cart.Items[0]
	_, err = f.carts.RemoveItem(ctx, mona.ID, item.ID)
	require.NoError(t, err)
	_, err = f.orders.CreateCashOrder(ctx, mona.ID, cart.ID, models.ShippingAddress{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.EqualValues(t, 0, f.currentSeq(t))
}

func TestCreateCardOrder_FromCheckoutSession(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	cart, err := f.carts.AddToCart(ctx, u.ID, addReq(p.ID, 1))
	require.NoError(t, err)

	o, err := f.orders.CreateCardOrder(ctx, webhook.CheckoutSession{
		ClientReferenceID: cart.ID.String(),
		CustomerEmail:     u.Email,
		AmountTotal:       1450,
		Metadata:          map[string]string{"city": "Alexandria"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentCard), o.PaymentMethodType)
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.True(t, o.TotalOrderPrice.Equal(decimal.RequireFromString("14.50")))
	assert.Equal(t, "Alexandria", o.ShippingAddress.City)
	assert.Equal(t, u.ID, o.UserID)
}

func TestCreateCardOrder_RedeliveredSessionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	cart, err := f.carts.AddToCart(ctx, u.ID, addReq(p.ID, 1))
	require.NoError(t, err)
	session := webhook.CheckoutSession{
		ID:                "cs_test_1",
		ClientReferenceID: cart.ID.String(),
		CustomerEmail:     u.Email,
		AmountTotal:       1000,
	}

	first, err := f.orders.CreateCardOrder(ctx, session)
	require.NoError(t, err)
	again, err := f.orders.CreateCardOrder(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.SequenceID, again.SequenceID)

	assert.EqualValues(t, 1, f.currentSeq(t))
	var stock models.Product
	require.NoError(t, f.db.First(&stock, "id = ?", p.ID).Error)
	assert.Equal(t, 4, stock.Quantity)
	assert.Equal(t, []string{events.OrderCreated}, f.events.types())
}

func TestCreateOrder_PriceFromCatalog(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()

	draft := draftFor(u.ID, p)
	draft.Items[0].Price = decimal.RequireFromString("0.01")
	draft.TotalOrderPrice = decimal.RequireFromString("0.01")
	draft.PriceFromCatalog = true

	o, err := f.orders.CreateOrder(ctx, draft)
	require.NoError(t, err)
	require.Len(t, o.CartItems, 1)
	assert.True(t, o.CartItems[0].Price.Equal(decimal.RequireFromString("10")))
	assert.True(t, o.TaxPrice.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, o.ShippingPrice.Equal(decimal.RequireFromString("3")))
	// 10 + 1.50 + 3
	assert.True(t, o.TotalOrderPrice.Equal(decimal.RequireFromString("14.5")), o.TotalOrderPrice.String())
}

func TestCreateOrder_PriceFromCatalogRejectsUnknownProducts(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	ctx := context.Background()

	draft := draftFor(u.ID)
	draft.Items = []DraftItem{{ProductID: uuid.New(), Count: 1, Price: decimal.RequireFromString("1")}}
	draft.PriceFromCatalog = true
	_, err := f.orders.CreateOrder(ctx, draft)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.orders.CreateOrder(ctx, OrderDraft{UserID: u.ID, PriceFromCatalog: true})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.EqualValues(t, 0, f.currentSeq(t))
}

func TestMarkPaidAndDelivered(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "mona@example.com")
	p := f.product(t, "shirt", "10", 5)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.orders.Now = func() time.Time { return at }

	created, err := f.orders.CreateOrder(ctx, draftFor(u.ID, p))
	require.NoError(t, err)

	paid, err := f.orders.MarkPaid(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(at))
	assert.Equal(t, created.SequenceID, paid.SequenceID)

	delivered, err := f.orders.MarkDelivered(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)

	assert.EqualValues(t, 1, f.currentSeq(t))
	assert.Equal(t, []string{events.OrderCreated, events.OrderPaid, events.OrderDelivered}, f.events.types())

	_, err = f.orders.MarkPaid(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
