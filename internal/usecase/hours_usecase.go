package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

const (
	DefaultOpeningTime = "08:00"
	DefaultClosingTime = "22:00"
)

// open <= now < close（分単位）
// close <= open（日付またぎ）の設定は常に閉店扱い。
func IsWithinHours(opening, closing string, now time.Time) (bool, error) {
	if strings.TrimSpace(opening) == "" {
		opening = DefaultOpeningTime
	}
	if strings.TrimSpace(closing) == "" {
		closing = DefaultClosingTime
	}

	openAt, err := model.ParseClock(opening)
	if err != nil {
		return false, err
	}
	closeAt, err := model.ParseClock(closing)
	if err != nil {
		return false, err
	}

	m := model.MinuteOfDay(now)
	return openAt <= m && m < closeAt, nil
}

type OpenStatus struct {
	Open        bool   `json:"open"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
	Now         string `json:"now"`
}

type HoursUsecase struct {
	settings  repo.SettingsRepository
	auditRepo repo.AuditLogRepository
	clock     Clock
	loc       *time.Location
}

func NewHoursUsecase(settings repo.SettingsRepository, auditRepo repo.AuditLogRepository, clock Clock, loc *time.Location) *HoursUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &HoursUsecase{settings: settings, auditRepo: auditRepo, clock: clock, loc: loc}
}

// 今営業中か。設定が読めない/壊れているときは開いている扱い。
func (u *HoursUsecase) Status(ctx context.Context) OpenStatus {
	now := u.clock.Now().In(u.loc)
	out := OpenStatus{
		Open:        true,
		OpeningTime: DefaultOpeningTime,
		ClosingTime: DefaultClosingTime,
		Now:         now.Format("15:04"),
	}

	s, err := u.settings.Get(ctx)
	if err != nil && err != repo.ErrNotFound {
		logging.FromContext(ctx).Warn("read operating hours failed, letting request through", "error", err)
		return out
	}
	if err == nil {
		if v := strings.TrimSpace(s.OpeningTime); v != "" {
			out.OpeningTime = v
		}
		if v := strings.TrimSpace(s.ClosingTime); v != "" {
			out.ClosingTime = v
		}
	}

	open, err := IsWithinHours(out.OpeningTime, out.ClosingTime, now)
	if err != nil {
		logging.FromContext(ctx).Warn("malformed operating hours, letting request through",
			"opening_time", out.OpeningTime, "closing_time", out.ClosingTime, "error", err)
		return out
	}
	out.Open = open
	return out
}

type UpdateHoursInput struct {
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

func (u *HoursUsecase) UpdateHours(ctx context.Context, actorAdminUserID int64, in UpdateHoursInput) (model.Settings, error) {
	if actorAdminUserID <= 0 {
		return model.Settings{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	opening := strings.TrimSpace(in.OpeningTime)
	closing := strings.TrimSpace(in.ClosingTime)
	if _, err := model.ParseClock(opening); err != nil {
		return model.Settings{}, NewHTTPError(http.StatusBadRequest, "invalid opening_time")
	}
	if _, err := model.ParseClock(closing); err != nil {
		return model.Settings{}, NewHTTPError(http.StatusBadRequest, "invalid closing_time")
	}

	before, err := u.settings.Get(ctx)
	if err != nil && err != repo.ErrNotFound {
		return model.Settings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after := model.Settings{ID: model.SettingsID, OpeningTime: opening, ClosingTime: closing}
	if err := u.settings.Save(ctx, after); err != nil {
		return model.Settings{}, NewHTTPError(http.StatusInternalServerError, "failed to save hours")
	}

	beforeJSON, _ := json.Marshal(map[string]string{"opening_time": before.OpeningTime, "closing_time": before.ClosingTime})
	afterJSON, _ := json.Marshal(map[string]string{"opening_time": opening, "closing_time": closing})
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionUpdateHours,
		ResourceType: model.AuditResourceSettings,
		ResourceID:   model.SettingsID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		logging.FromContext(ctx).Error("audit log failed", "action", model.AuditActionUpdateHours, "error", err)
	}

	return after, nil
}
