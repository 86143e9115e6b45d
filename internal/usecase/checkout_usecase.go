package usecase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

type CheckoutInput struct {
	Name          string `json:"name"`
	TableNumber   int    `json:"table_number"`
	OrderType     string `json:"order_type"`
	PaymentMethod string `json:"payment_method"`
}

type CheckoutOutput struct {
	Order    OrderOutput `json:"order"`
	Redirect string      `json:"redirect"`
}

// 注文確定
// 注文→明細→在庫の順に別々に書く。途中で失敗しても前の書き込みは戻さない。
type CheckoutUsecase struct {
	sessions   repo.SessionStore
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	inventory  repo.InventoryRepository
	publisher  repo.OrderEventPublisher
	clock      Clock
	tableCount int
}

// DI
func NewCheckoutUsecase(
	sessions repo.SessionStore,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	inventory repo.InventoryRepository,
	publisher repo.OrderEventPublisher,
	clock Clock,
	tableCount int,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		sessions:   sessions,
		orders:     orders,
		orderItems: orderItems,
		inventory:  inventory,
		publisher:  publisher,
		clock:      clock,
		tableCount: tableCount,
	}
}

func StatusPageURL(name string, table int) string {
	q := url.Values{}
	q.Set("nama", name)
	q.Set("meja", strconv.Itoa(table))
	return "/status?" + q.Encode()
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (CheckoutOutput, error) {
	log := logging.FromContext(ctx)

	// 0) 入力チェック（ここまでは何も書かない）
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(name) > 100 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "name too long")
	}
	if in.TableNumber < 1 || in.TableNumber > u.tableCount {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid table_number")
	}
	orderType, err := model.ParseOrderType(in.OrderType)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	payment, err := model.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if sessionID == "" {
		return CheckoutOutput{}, NewRedirectError(http.StatusBadRequest, "no session", "/")
	}
	s, err := u.sessions.Get(ctx, sessionID)
	if err == repo.ErrNotFound {
		return CheckoutOutput{}, NewRedirectError(http.StatusBadRequest, "no session", "/")
	}
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}

	if len(s.Cart) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	for _, l := range s.Cart {
		if l.Quantity <= 0 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity for "+l.Name)
		}
		if l.Quantity > l.Stock {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "quantity exceeds stock for "+l.Name)
		}
	}

	if s.Claimed() {
		if s.TableNumber != in.TableNumber {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "table_number does not match scanned table")
		}
	} else if err := checkTableFree(ctx, u.orders, in.TableNumber); err != nil {
		return CheckoutOutput{}, err
	}

	now := u.clock.Now()

	// 1) 注文
	order := model.Order{
		CustomerName:  name,
		TableNumber:   in.TableNumber,
		OrderType:     orderType,
		PaymentMethod: payment,
		Total:         s.CartTotal(),
		Status:        model.OrderStatusWaiting,
		CreatedAt:     now,
	}
	if err := u.orders.Create(ctx, &order); err != nil {
		log.Error("create order failed", "table", in.TableNumber, "error", err)
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to save order")
	}

	// 2) 明細（まとめて1回）。失敗しても注文は残る
	items := make([]model.OrderItem, 0, len(s.Cart))
	for _, l := range s.Cart {
		items = append(items, model.OrderItem{
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}
	if err := u.orderItems.CreateBulk(ctx, order.ID, items); err != nil {
		log.Error("create order items failed, order left without items", "order_id", order.ID, "error", err)
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to save order items")
	}

	// 3) 在庫を1行ずつ減らす。失敗はログだけ
	for _, l := range s.Cart {
		if err := u.inventory.DecreaseStock(ctx, l.MenuItemID, l.Quantity); err != nil {
			log.Warn("decrease stock failed", "order_id", order.ID, "menu_id", l.MenuItemID, "qty", l.Quantity, "error", err)
		}
	}

	// 4) セッションを片付けて状態ページへ
	for i := range items {
		items[i].MenuItem = &model.MenuItem{ID: s.Cart[i].MenuItemID, Name: s.Cart[i].Name}
	}
	order.Items = items

	s.Cart = nil
	s.TableNumber = 0
	s.CustomerName = name
	s.OrderID = order.ID
	s.OrderTable = order.TableNumber
	s.OrderStatus = order.Status
	s.LastActivity = now
	if err := u.sessions.Save(ctx, s); err != nil {
		log.Warn("save session after checkout failed", "order_id", order.ID, "error", err)
	}

	if err := u.publisher.PublishOrderEvent(ctx, orderEvent(model.OrderEventInsert, order, now)); err != nil {
		log.Warn("publish order event failed", "order_id", order.ID, "error", err)
	}

	return CheckoutOutput{
		Order:    toOrderOutput(order),
		Redirect: StatusPageURL(name, order.TableNumber),
	}, nil
}
