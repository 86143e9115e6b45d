package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	"github.com/syrjfsih/TwoNCafe/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
}

type TokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error)
}

type UserDTO struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	TokenVersion int        `json:"token_version"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	issuer    TokenIssuer
	clock     Clock
}

func NewAuthUsecase(users repository.UserRepository, validator AuthValidator, issuer TokenIssuer, clock Clock) *AuthUsecase {
	return &AuthUsecase{users: users, validator: validator, issuer: issuer, clock: clock}
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid input")
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "account disabled")
	}

	//last_login更新
	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		logging.FromContext(ctx).Warn("update last login failed", "user_id", user.ID, "error", err)
	}

	//access token発行
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  token,
			ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
}

// GET /admin/session
func (u *AuthUsecase) Session(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// token_versionを+1して、発行済みトークンを全部無効にする
func (u *AuthUsecase) Logout(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if err == repository.ErrNotFound {
			return NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return nil
}

// 初期管理者を作る。既にあれば何もしない
func (u *AuthUsecase) SeedAdmin(ctx context.Context, email string, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}

	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	if err := u.users.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return false, err
	}
	return true, nil
}
