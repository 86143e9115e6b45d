package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

// 注文の変更を外に流す
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error
}
