package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"
	"github.com/syrjfsih/TwoNCafe/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type IssuerMock struct{ mock.Mock }

func (m *IssuerMock) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, role, tokenVersion)
	return args.String(0), now.Add(12 * time.Hour), args.Error(1)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func TestAuthUsecase_Login(t *testing.T) {
	users := new(UserRepoMock)
	issuer := new(IssuerMock)
	uc := usecase.NewAuthUsecase(users, validator.NewAuthValidator(), issuer, &fixedClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)})
	ctx := context.Background()

	admin := &model.User{ID: 1, Email: "admin@twoncafe.id", PasswordHash: hashed(t, "rahasia123"), Role: model.RoleAdmin, TokenVersion: 2, IsActive: true}
	users.On("FindByEmail", mock.Anything, "admin@twoncafe.id").Return(admin, nil)
	users.On("FindByEmail", mock.Anything, "ghost@twoncafe.id").Return(nil, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	issuer.On("Issue", int64(1), model.RoleAdmin, 2).Return("signed.jwt", nil)

	res, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "admin@twoncafe.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", res.Token.AccessToken)
	assert.Equal(t, 12*60*60, res.Token.ExpiresIn)
	assert.Equal(t, 2, res.Token.TokenVersion)
	require.NotNil(t, res.User.LastLoginAt)

	_, err = uc.Login(ctx, usecase.AuthLoginRequest{Email: "admin@twoncafe.id", Password: "salah-sekali"})
	assertErrContains(t, err, "invalid email or password")

	_, err = uc.Login(ctx, usecase.AuthLoginRequest{Email: "ghost@twoncafe.id", Password: "rahasia123"})
	assertErrContains(t, err, "invalid email or password")

	_, err = uc.Login(ctx, usecase.AuthLoginRequest{Email: "not-an-email", Password: "rahasia123"})
	assertErrContains(t, err, "invalid input")
}

func TestAuthUsecase_Login_DisabledAccount(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, validator.NewAuthValidator(), new(IssuerMock), usecase.SystemClock{})

	users.On("FindByEmail", mock.Anything, "staff@twoncafe.id").
		Return(&model.User{ID: 2, PasswordHash: hashed(t, "rahasia123"), IsActive: false}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{Email: "staff@twoncafe.id", Password: "rahasia123"})
	assertErrContains(t, err, "account disabled")
}

func TestAuthUsecase_SessionAndLogout(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, validator.NewAuthValidator(), new(IssuerMock), usecase.SystemClock{})
	ctx := context.Background()

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Email: "admin@twoncafe.id", Role: model.RoleAdmin, IsActive: true}, nil)
	users.On("FindByID", mock.Anything, int64(2)).Return(nil, nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil).Once()
	users.On("IncrementTokenVersion", mock.Anything, int64(3)).Return(repo.ErrNotFound).Once()

	dto, err := uc.Session(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", dto.Role)

	_, err = uc.Session(ctx, 2)
	assertErrContains(t, err, "unauthorized")

	require.NoError(t, uc.Logout(ctx, 1))
	assertErrContains(t, uc.Logout(ctx, 3), "unauthorized")
	users.AssertExpectations(t)
}

func TestAuthUsecase_SeedAdmin(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, validator.NewAuthValidator(), new(IssuerMock), usecase.SystemClock{})
	ctx := context.Background()

	users.On("FindByEmail", mock.Anything, "admin@twoncafe.id").Return(nil, nil).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "admin@twoncafe.id" && u.Role == model.RoleAdmin &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("rahasia123")) == nil
	})).Return(nil).Once()

	created, err := uc.SeedAdmin(ctx, " Admin@TwoNCafe.id ", "rahasia123")
	require.NoError(t, err)
	assert.True(t, created)

	users.On("FindByEmail", mock.Anything, "admin@twoncafe.id").Return(&model.User{ID: 1}, nil).Once()
	created, err = uc.SeedAdmin(ctx, "admin@twoncafe.id", "rahasia123")
	require.NoError(t, err)
	assert.False(t, created)

	users.On("FindByEmail", mock.Anything, "broken@twoncafe.id").Return(nil, errors.New("db down")).Once()
	_, err = uc.SeedAdmin(ctx, "broken@twoncafe.id", "x")
	assert.Error(t, err)

	created, err = uc.SeedAdmin(ctx, "", "x")
	require.NoError(t, err)
	assert.False(t, created)
	users.AssertExpectations(t)
}
