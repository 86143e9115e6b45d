package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

// 空の項目は絞り込まない
type AuditLogFilter struct {
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   int64
	Limit        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
