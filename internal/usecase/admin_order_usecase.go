package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

type AdminOrderUsecase struct {
	tx              repo.TransactionManager
	orders          repo.OrderRepository
	orderItems      repo.OrderItemRepository
	auditRepo       repo.AuditLogRepository
	publisher       repo.OrderEventPublisher
	clock           Clock
	autoCancelAfter time.Duration
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	auditRepo repo.AuditLogRepository,
	publisher repo.OrderEventPublisher,
	clock Clock,
	autoCancelAfter time.Duration,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:              tx,
		orders:          orders,
		orderItems:      orderItems,
		auditRepo:       auditRepo,
		publisher:       publisher,
		clock:           clock,
		autoCancelAfter: autoCancelAfter,
	}
}

type AdminUpdateOrderStatusInput struct {
	Status string `json:"status"`
}

// 注文一覧
// 読む前に、autoCancelAfter を過ぎた waiting をキャンセルする。
func (u *AdminOrderUsecase) List(ctx context.Context, status string) ([]OrderOutput, error) {
	f := repo.OrderListFilter{}
	if status != "" {
		s, err := model.ParseOrderStatus(status)
		if err != nil {
			return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = string(s)
	}

	if _, err := u.CancelStaleOrders(ctx); err != nil {
		logging.FromContext(ctx).Warn("auto cancel sweep failed", "error", err)
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to load orders")
	}
	return toOrderOutputs(orders), nil
}

// 30分以上 waiting の注文をキャンセルして在庫を戻す
func (u *AdminOrderUsecase) CancelStaleOrders(ctx context.Context) (int, error) {
	now := u.clock.Now()
	stale, err := u.orders.ListWaitingBefore(ctx, now.Add(-u.autoCancelAfter))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, o := range stale {
		var done bool
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			// 他の画面が先に処理していたら何もしない
			cur, err := r.Orders().FindByID(ctx, o.ID)
			if err != nil {
				return err
			}
			if cur.Status != model.OrderStatusWaiting {
				return nil
			}

			if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCancelled, &now); err != nil {
				return err
			}
			for _, it := range cur.Items {
				if err := r.Inventory().IncreaseStock(ctx, it.MenuItemID, it.Quantity); err != nil {
					return err
				}
			}
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  model.SystemActorID,
				Action:       model.AuditActionAutoCancelOrder,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   o.ID,
				BeforeJSON:   statusJSON(model.OrderStatusWaiting),
				AfterJSON:    statusJSON(model.OrderStatusCancelled),
				CreatedAt:    now,
			}); err != nil {
				return err
			}
			done = true
			return nil
		})
		if err != nil {
			logging.FromContext(ctx).Warn("auto cancel failed", "order_id", o.ID, "error", err)
			continue
		}
		if !done {
			continue
		}

		cancelled++
		o.Status = model.OrderStatusCancelled
		u.publish(ctx, model.OrderEventUpdate, o)
	}
	return cancelled, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o), nil
}

// ステータス更新
// done/cancelled は終端。cancelled にしたら在庫を戻す。終端にしたら ended_at を入れる。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus, err := model.ParseOrderStatus(in.Status)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	now := u.clock.Now()
	changed := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		// 終端ガード
		if o.Status.IsTerminal() {
			return NewHTTPError(http.StatusBadRequest, "cannot change "+string(o.Status)+" order")
		}

		if newStatus == model.OrderStatusCancelled {
			for _, it := range o.Items {
				if err := r.Inventory().IncreaseStock(ctx, it.MenuItemID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		var endedAt *time.Time
		if newStatus.IsTerminal() {
			endedAt = &now
		}
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus, endedAt); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(o.Status),
			AfterJSON:    statusJSON(newStatus),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		changed = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	out, err := u.Get(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	if changed {
		u.publish(ctx, model.OrderEventUpdate, model.Order{ID: out.ID, TableNumber: out.TableNumber, Status: out.Status})
	}
	return out, nil
}

// 明細→注文の順で消す（まとめたトランザクションにはしない）
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.orderItems.DeleteByOrderID(ctx, orderID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "failed to delete order items")
	}
	if err := u.orders.Delete(ctx, orderID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "failed to delete order")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionDeleteOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   statusJSON(o.Status),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		logging.FromContext(ctx).Error("audit log failed", "action", model.AuditActionDeleteOrder, "order_id", orderID, "error", err)
	}

	u.publish(ctx, model.OrderEventDelete, o)
	return nil
}

func (u *AdminOrderUsecase) publish(ctx context.Context, typ model.OrderEventType, o model.Order) {
	if err := u.publisher.PublishOrderEvent(ctx, orderEvent(typ, o, u.clock.Now())); err != nil {
		logging.FromContext(ctx).Warn("publish order event failed", "order_id", o.ID, "error", err)
	}
}

func statusJSON(s model.OrderStatus) string {
	return `{"status":"` + string(s) + `"}`
}
