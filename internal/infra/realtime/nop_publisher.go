package realtime

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

// KAFKA_BROKERS が無いとき
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }
