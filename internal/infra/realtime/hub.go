package realtime

import (
	"context"
	"sync"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

const subscriberBuffer = 16

// 注文の変更をプロセス内の購読者に配る
// 遅い購読者のイベントは捨てる（受け手は全件を取り直すので問題ない）。
type Hub struct {
	mu   sync.Mutex
	subs map[chan model.OrderEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan model.OrderEvent]struct{})}
}

// 戻り値の関数で購読解除
func (h *Hub) Subscribe() (<-chan model.OrderEvent, func()) {
	ch := make(chan model.OrderEvent, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(ev model.OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// OrderEventPublisher として使う（postgres以外の環境用）
func (h *Hub) PublishOrderEvent(_ context.Context, ev model.OrderEvent) error {
	h.Publish(ev)
	return nil
}
