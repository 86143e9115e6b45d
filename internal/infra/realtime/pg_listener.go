package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"

	"github.com/jackc/pgx/v5"
)

// orders_changed の通知の中身
type notification struct {
	Type        string `json:"type"`
	OrderID     int64  `json:"order_id"`
	TableNumber int    `json:"table_number"`
	Status      string `json:"status"`
}

func DecodeNotification(payload string, at time.Time) (model.OrderEvent, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return model.OrderEvent{}, fmt.Errorf("decode notification: %w", err)
	}

	typ := model.OrderEventType(n.Type)
	switch typ {
	case model.OrderEventInsert, model.OrderEventUpdate, model.OrderEventDelete:
	default:
		return model.OrderEvent{}, fmt.Errorf("unknown notification type %q", n.Type)
	}

	// 不明なステータスはそのまま流す
	status, err := model.ParseOrderStatus(n.Status)
	if err != nil {
		status = model.OrderStatus(n.Status)
	}

	return model.OrderEvent{
		Type:        typ,
		OrderID:     n.OrderID,
		TableNumber: n.TableNumber,
		Status:      status,
		At:          at,
	}, nil
}

// postgres の LISTEN を受けて Hub に流す
type PGListener struct {
	dsn     string
	channel string
	hub     *Hub
	log     *slog.Logger
	retry   time.Duration
}

func NewPGListener(dsn, channel string, hub *Hub, log *slog.Logger) *PGListener {
	return &PGListener{dsn: dsn, channel: channel, hub: hub, log: log, retry: 5 * time.Second}
}

// ctx が終わるまで再接続しながら聞き続ける
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("order listener disconnected", "error", err, "retry_in", l.retry.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retry):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.log.Info("listening for order changes", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		ev, err := DecodeNotification(n.Payload, time.Now())
		if err != nil {
			l.log.Warn("bad order notification", "payload", n.Payload, "error", err)
			continue
		}
		l.hub.Publish(ev)
	}
}
