package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// 設定は id=1 の1行だけ
const SettingsID int64 = 1

var ErrInvalidClock = errors.New("invalid time, use HH:MM")

// 営業時間の設定
type Settings struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	OpeningTime string    `gorm:"type:varchar(8);not null;default:'08:00'" json:"opening_time"`
	ClosingTime string    `gorm:"type:varchar(8);not null;default:'22:00'" json:"closing_time"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// "HH:MM"（"HH:MM:SS" も可）を0時からの分に変換する
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
