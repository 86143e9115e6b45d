package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/syrjfsih/TwoNCafe/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// 管理画面のハンドラが c.Get で読むキー
const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

var errBadStaffToken = errors.New("bad staff token")

// 店員・管理者のトークンから取り出した中身
type staffClaims struct {
	UserID       int64
	Role         string
	TokenVersion int
}

// 管理画面（店員・管理者）のリクエストにトークンを要求する。
// 注文ボードの EventSource はヘッダを付けられないので GET だけ ?access_token= も受ける。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := staffToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			staff, err := parseStaffToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, staff.UserID)
			c.Set(CtxUserRoleKey, staff.Role)
			c.Set(CtxTokenVersionKey, staff.TokenVersion)
			return next(c)
		}
	}
}

// Authorization: Bearer <token>。無ければ GET に限ってクエリ
func staffToken(c echo.Context) (string, bool) {
	req := c.Request()
	authz := req.Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		if req.Method != http.MethodGet {
			return "", false
		}
		t := strings.TrimSpace(c.QueryParam("access_token"))
		return t, t != ""
	}

	scheme, t, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	t = strings.TrimSpace(t)
	return t, t != ""
}

// HS256 の署名を確かめて sub / role / tv を読む。どれか欠けたら弾く
func parseStaffToken(raw string, secret []byte) (staffClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errBadStaffToken
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return staffClaims{}, errBadStaffToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return staffClaims{}, errBadStaffToken
	}

	var staff staffClaims
	switch sub := claims["sub"].(type) {
	case string:
		staff.UserID, err = strconv.ParseInt(sub, 10, 64)
	case float64:
		staff.UserID = int64(sub)
	default:
		err = errBadStaffToken
	}
	if err != nil || staff.UserID <= 0 {
		return staffClaims{}, errBadStaffToken
	}

	//ADMIN か STAFF かは AdminRoleGuard が見る
	staff.Role, _ = claims["role"].(string)
	if staff.Role == "" {
		return staffClaims{}, errBadStaffToken
	}

	//ログアウトのたびに増える番号
	switch tv := claims["tv"].(type) {
	case float64:
		staff.TokenVersion = int(tv)
	case string:
		n, err := strconv.Atoi(tv)
		if err != nil {
			return staffClaims{}, errBadStaffToken
		}
		staff.TokenVersion = n
	default:
		return staffClaims{}, errBadStaffToken
	}
	if staff.TokenVersion < 0 {
		return staffClaims{}, errBadStaffToken
	}
	return staff, nil
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
