package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

var knownAuditActions = map[model.AuditAction]bool{
	model.AuditActionUpdateStock:       true,
	model.AuditActionUpdateOrderStatus: true,
	model.AuditActionAutoCancelOrder:   true,
	model.AuditActionDeleteOrder:       true,
	model.AuditActionCreateMenu:        true,
	model.AuditActionUpdateMenu:        true,
	model.AuditActionDeleteMenu:        true,
	model.AuditActionUpdateHours:       true,
}

type AuditLogQuery struct {
	Action       string
	ResourceType string
	ResourceID   string
	Limit        string
}

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// GET /admin/audit-logs
func (u *AuditLogUsecase) List(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error) {
	f := repo.AuditLogFilter{}

	if v := strings.ToUpper(strings.TrimSpace(q.Action)); v != "" {
		if !knownAuditActions[model.AuditAction(v)] {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		f.Action = model.AuditAction(v)
	}

	switch rt := model.AuditResourceType(strings.ToLower(strings.TrimSpace(q.ResourceType))); rt {
	case "":
	case model.AuditResourceMenu, model.AuditResourceOrder, model.AuditResourceSettings:
		f.ResourceType = rt
	default:
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
	}

	if v := strings.TrimSpace(q.ResourceID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid resource_id")
		}
		f.ResourceID = id
	}

	if v := strings.TrimSpace(q.Limit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		f.Limit = n
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
