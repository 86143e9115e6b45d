package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理画面のログイン
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// login だけはトークン無し
	e.POST("/admin/login", h.login)

	admin := adminGroup(e, cfg, userRepo)
	admin.GET("/session", h.session)
	admin.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.Login(c.Request().Context(), usecase.AuthLoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) session(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	u, err := h.uc.Session(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// token_version を上げて、手元のトークンも全部無効にする
func (h *AuthHandler) logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Logout(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}
