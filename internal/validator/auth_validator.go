package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/syrjfsih/TwoNCafe/internal/usecase"
)

// 入力が不正
var ErrInvalidInput = errors.New("invalid input")

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	// bcryptは72バイトまで
	if len(password) > 72 {
		return ErrInvalidInput
	}

	return nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
