package usecase_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	menus      repo.MenuRepository
	inventory  repo.InventoryRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Menus() repo.MenuRepository           { return r.menus }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil && order.ID == 0 {
		order.ID = 100
	}
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListActiveByTable(ctx context.Context, table int) ([]model.Order, error) {
	args := m.Called(ctx, table)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListActiveTables(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	tables, _ := args.Get(0).([]int)
	return tables, args.Error(1)
}

func (m *OrderRepoMock) FindLatestByNameAndTable(ctx context.Context, name string, table int) (model.Order, error) {
	args := m.Called(ctx, name, table)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	args := m.Called(ctx, cutoff)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, endedAt *time.Time) error {
	args := m.Called(ctx, orderID, status, endedAt)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	panic("not used")
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, menuItemID int64, newStock int64) error {
	args := m.Called(ctx, menuItemID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStock(ctx context.Context, menuItemID int64, qty int64) error {
	args := m.Called(ctx, menuItemID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, menuItemID int64, qty int64) error {
	args := m.Called(ctx, menuItemID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

type MenuRepoMock struct{ mock.Mock }

func (m *MenuRepoMock) List(ctx context.Context, q repo.MenuListQuery) ([]model.MenuItem, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuRepoMock) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(model.MenuItem)
	return item, args.Error(1)
}

func (m *MenuRepoMock) Create(ctx context.Context, item *model.MenuItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == 0 {
		item.ID = 1
	}
	return args.Error(0)
}

func (m *MenuRepoMock) Update(ctx context.Context, item *model.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MenuRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MenuRepoMock) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type SettingsRepoMock struct{ mock.Mock }

func (m *SettingsRepoMock) Get(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.Settings)
	return s, args.Error(1)
}

func (m *SettingsRepoMock) Save(ctx context.Context, s model.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type StorageMock struct{ mock.Mock }

func (m *StorageMock) Upload(ctx context.Context, path string, r io.Reader, upsert bool) error {
	args := m.Called(ctx, path, upsert)
	return args.Error(0)
}

func (m *StorageMock) PublicURL(path string) string {
	return "http://cafe.local/storage/" + path
}

// =====================
// Clock / ID
// =====================

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
