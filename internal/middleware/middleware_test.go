package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	"github.com/syrjfsih/TwoNCafe/internal/middleware"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

type mwOKResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

// =====================
// UserRepository モック
// =====================

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	panic("not used")
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used")
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *model.User) error {
	panic("not used")
}

func (m *MockUserRepo) IncrementTokenVersion(ctx context.Context, id int64) error {
	panic("not used")
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub string, role string, tv int, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
}

// =====================
// AuthJWT
// =====================

func TestMiddleware_AuthJWT_Unauthorized(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	good := mustMakeJWT(t, cfg.JWTSecret, "1", "ADMIN", 0, jwt.SigningMethodHS256)

	cases := map[string]string{
		"no header":     "",
		"bad scheme":    "Token abc.def.ghi",
		"empty bearer":  "Bearer ",
		"bad signature": "Bearer " + mustMakeJWT(t, "wrong-secret", "1", "ADMIN", 0, jwt.SigningMethodHS256),
		"wrong alg":     "Bearer " + mustMakeJWT(t, cfg.JWTSecret, "1", "ADMIN", 0, jwt.SigningMethodHS512),
		"bad sub":       "Bearer " + mustMakeJWT(t, cfg.JWTSecret, "abc", "ADMIN", 0, jwt.SigningMethodHS256),
		"missing role":  "Bearer " + mustMakeJWT(t, cfg.JWTSecret, "1", "", 0, jwt.SigningMethodHS256),
		"truncated":     "Bearer " + good[:len(good)-4],
		"negative tv":   "Bearer " + mustMakeJWT(t, cfg.JWTSecret, "1", "ADMIN", -1, jwt.SigningMethodHS256),
		"zero sub":      "Bearer " + mustMakeJWT(t, cfg.JWTSecret, "0", "ADMIN", 0, jwt.SigningMethodHS256),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", ok, middleware.AuthJWT(cfg))

			rec := runRequest(t, e, http.MethodGet, "/protected", header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// 正常：ctxに値が入る
func TestMiddleware_AuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, "123", "ADMIN", 7, jwt.SigningMethodHS256)

	e.GET("/protected", func(c echo.Context) error {
		userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
		role, _ := c.Get(middleware.CtxUserRoleKey).(string)
		tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)
		return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role, TokenVersion: tv})
	}, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "ADMIN", body.Role)
	assert.Equal(t, 7, body.TokenVersion)
}

// SSE用：GETだけクエリのトークンを見る
func TestMiddleware_AuthJWT_QueryTokenOnlyForGET(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, "1", "ADMIN", 0, jwt.SigningMethodHS256)

	e.GET("/stream", ok, middleware.AuthJWT(cfg))
	e.POST("/stream", ok, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/stream?access_token="+raw, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRequest(t, e, http.MethodPost, "/stream?access_token="+raw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// TokenVersionGuard
// =====================

func TestMiddleware_TokenVersionGuard_Unauthorized_MissingContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", ok, middleware.TokenVersionGuard(new(MockUserRepo)))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_TokenVersionGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	cases := []struct {
		name   string
		user   *model.User
		err    error
		tv     int
		status int
	}{
		{"match", &model.User{ID: 1, Role: model.RoleAdmin, TokenVersion: 5, IsActive: true}, nil, 5, http.StatusOK},
		{"mismatch after logout", &model.User{ID: 1, Role: model.RoleAdmin, TokenVersion: 6, IsActive: true}, nil, 5, http.StatusUnauthorized},
		{"disabled", &model.User{ID: 1, Role: model.RoleAdmin, TokenVersion: 5, IsActive: false}, nil, 5, http.StatusForbidden},
		{"deleted user", nil, nil, 5, http.StatusUnauthorized},
		{"db error", nil, errors.New("db down"), 5, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userRepo := new(MockUserRepo)
			userRepo.On("FindByID", mock.Anything, int64(1)).Return(tc.user, tc.err)

			e := echo.New()
			e.GET("/protected", ok, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

			raw := mustMakeJWT(t, cfg.JWTSecret, "1", "ADMIN", tc.tv, jwt.SigningMethodHS256)
			rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
			assert.Equal(t, tc.status, rec.Code)
			userRepo.AssertExpectations(t)
		})
	}
}

// =====================
// AdminRoleGuard
// =====================

func TestMiddleware_AdminRoleGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	for role, want := range map[string]int{
		"ADMIN":    http.StatusOK,
		"STAFF":    http.StatusOK,
		"CUSTOMER": http.StatusForbidden,
	} {
		e := echo.New()
		e.GET("/admin", ok, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

		raw := mustMakeJWT(t, cfg.JWTSecret, "1", role, 0, jwt.SigningMethodHS256)
		rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+raw)
		assert.Equal(t, want, rec.Code, role)
	}

	e := echo.New()
	e.GET("/admin", ok, middleware.AdminRoleGuard())
	rec := runRequest(t, e, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// HoursGate
// =====================

type stubHours struct{ open bool }

func (s stubHours) Status(ctx context.Context) usecase.OpenStatus {
	return usecase.OpenStatus{Open: s.open}
}

func TestMiddleware_HoursGate(t *testing.T) {
	e := echo.New()
	e.GET("/open", ok, middleware.HoursGate(stubHours{open: true}))
	e.GET("/closed", ok, middleware.HoursGate(stubHours{open: false}))

	rec := runRequest(t, e, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRequest(t, e, http.MethodGet, "/closed", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeMWError(t, rec)
	assert.Equal(t, "closed", body.Error)
	assert.Equal(t, "/blocked", body.Redirect)
}

// =====================
// TableSession
// =====================

type stubToucher struct {
	known map[string]bool
	err   error
}

func (s *stubToucher) Touch(ctx context.Context, id string) (model.TableSession, bool, error) {
	if s.err != nil {
		return model.TableSession{}, false, s.err
	}
	if s.known[id] {
		return model.TableSession{ID: id}, false, nil
	}
	s.known["new-id"] = true
	return model.TableSession{ID: "new-id"}, true, nil
}

func TestMiddleware_TableSession(t *testing.T) {
	toucher := &stubToucher{known: map[string]bool{"abc": true}}
	e := echo.New()
	e.GET("/api/cart", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(middleware.CtxSessionIDKey).(string))
	}, middleware.TableSession(toucher, false))

	// cookie無し → 作ってcookieを返す
	rec := runRequest(t, e, http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-id", rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// 既存のcookie → そのまま使う
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "abc"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	toucher.err = errors.New("boom")
	rec = runRequest(t, e, http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// =====================
// RequestLogger
// =====================

func TestMiddleware_RequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "debug")

	e := echo.New()
	e.Use(middleware.RequestLogger(base))
	e.GET("/ping", func(c echo.Context) error {
		// handler側からも同じloggerが取れる
		logging.FromContext(c.Request().Context()).Info("inside")
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `"msg":"inside"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"msg":"request completed"`)
	assert.Contains(t, out, `"status":200`)

	buf.Reset()
	rec = runRequest(t, e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
