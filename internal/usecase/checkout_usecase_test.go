package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/infra/session"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	uc         *usecase.CheckoutUsecase
	store      *session.MemoryStore
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	inventory  *InventoryRepoMock
	publisher  *PublisherMock
	now        time.Time
}

func newCheckoutFixture() checkoutFixture {
	f := checkoutFixture{
		store:      session.NewMemoryStore(),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		inventory:  new(InventoryRepoMock),
		publisher:  new(PublisherMock),
		now:        time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	f.uc = usecase.NewCheckoutUsecase(f.store, f.orders, f.orderItems, f.inventory, f.publisher, &fixedClock{now: f.now}, 30)
	return f
}

func (f checkoutFixture) seed(t *testing.T, s model.TableSession) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), s))
}

func validCheckout() usecase.CheckoutInput {
	return usecase.CheckoutInput{Name: "Budi", TableNumber: 4, OrderType: "dine_in", PaymentMethod: "cash"}
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.seed(t, model.TableSession{
		ID:          "s1",
		TableNumber: 4,
		Cart: []model.CartLine{
			{MenuItemID: 7, Name: "Nasi Goreng", Price: 15000, Quantity: 2, Stock: 10},
		},
	})

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.Total == 30000 && o.Status == model.OrderStatusWaiting && o.TableNumber == 4 && o.CustomerName == "Budi"
	})).Return(nil).Once()
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), []model.OrderItem{
		{MenuItemID: 7, Quantity: 2, Price: 15000},
	}).Return(nil).Once()
	f.inventory.On("DecreaseStock", mock.Anything, int64(7), int64(2)).Return(nil).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(ev model.OrderEvent) bool {
		return ev.Type == model.OrderEventInsert && ev.OrderID == 100 && ev.TableNumber == 4
	})).Return(nil).Once()

	out, err := f.uc.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.Order.ID)
	assert.Equal(t, int64(30000), out.Order.Total)
	assert.Equal(t, "Nasi Goreng x2", out.Order.Menu)
	assert.Equal(t, "/status?meja=4&nama=Budi", out.Redirect)

	// カートは空になり、注文を覚える
	s, err := f.store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s.Cart)
	assert.Equal(t, 0, s.TableNumber)
	assert.Equal(t, int64(100), s.OrderID)
	assert.Equal(t, 4, s.OrderTable)
	assert.Equal(t, model.OrderStatusWaiting, s.OrderStatus)

	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCheckout_ItemsFailureLeavesOrder(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.seed(t, model.TableSession{
		ID:          "s1",
		TableNumber: 4,
		Cart:        []model.CartLine{{MenuItemID: 7, Name: "Nasi Goreng", Price: 15000, Quantity: 1, Stock: 5}},
	})

	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(errors.New("boom")).Once()

	_, err := f.uc.Checkout(ctx, "s1", validCheckout())
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)

	// 注文は消さない。在庫もセッションも触らない
	f.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "DecreaseStock", mock.Anything, mock.Anything, mock.Anything)
	s, _ := f.store.Get(ctx, "s1")
	assert.Len(t, s.Cart, 1)
}

func TestCheckout_StockFailureIsOnlyLogged(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.seed(t, model.TableSession{
		ID:          "s1",
		TableNumber: 4,
		Cart: []model.CartLine{
			{MenuItemID: 1, Name: "A", Price: 1000, Quantity: 1, Stock: 5},
			{MenuItemID: 2, Name: "B", Price: 2000, Quantity: 1, Stock: 5},
		},
	})

	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(nil)
	f.inventory.On("DecreaseStock", mock.Anything, int64(1), int64(1)).Return(errors.New("lock timeout"))
	f.inventory.On("DecreaseStock", mock.Anything, int64(2), int64(1)).Return(nil)
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)
	assert.Equal(t, int64(3000), out.Order.Total)
	f.inventory.AssertExpectations(t)
}

func TestCheckout_ValidationWritesNothing(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.seed(t, model.TableSession{
		ID:          "s1",
		TableNumber: 4,
		Cart:        []model.CartLine{{MenuItemID: 7, Name: "Nasi Goreng", Price: 15000, Quantity: 4, Stock: 3}},
	})
	f.seed(t, model.TableSession{ID: "empty", TableNumber: 4})

	cases := []struct {
		name    string
		session string
		mutate  func(*usecase.CheckoutInput)
		want    string
	}{
		{"blank name", "s1", func(in *usecase.CheckoutInput) { in.Name = "  " }, "name required"},
		{"table out of range", "s1", func(in *usecase.CheckoutInput) { in.TableNumber = 31 }, "invalid table_number"},
		{"order type", "s1", func(in *usecase.CheckoutInput) { in.OrderType = "delivery" }, "invalid order_type"},
		{"payment", "s1", func(in *usecase.CheckoutInput) { in.PaymentMethod = "card" }, "invalid payment_method"},
		{"no session", "", func(in *usecase.CheckoutInput) {}, "no session"},
		{"empty cart", "empty", func(in *usecase.CheckoutInput) {}, "cart is empty"},
		{"over stock", "s1", func(in *usecase.CheckoutInput) {}, "quantity exceeds stock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCheckout()
			tc.mutate(&in)
			_, err := f.uc.Checkout(ctx, tc.session, in)
			assertErrContains(t, err, tc.want)
		})
	}

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_TableMismatch(t *testing.T) {
	f := newCheckoutFixture()
	f.seed(t, model.TableSession{
		ID:          "s1",
		TableNumber: 4,
		Cart:        []model.CartLine{{MenuItemID: 7, Name: "Nasi Goreng", Price: 15000, Quantity: 1, Stock: 3}},
	})

	in := validCheckout()
	in.TableNumber = 5
	_, err := f.uc.Checkout(context.Background(), "s1", in)
	assertErrContains(t, err, "does not match")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStatusPageURL_EncodesName(t *testing.T) {
	assert.Equal(t, "/status?meja=12&nama=Budi+Santoso", usecase.StatusPageURL("Budi Santoso", 12))
}
