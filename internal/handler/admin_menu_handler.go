package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

const maxImageBytes = 5 << 20

type MenuRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

func (r MenuRequest) input() usecase.MenuInput {
	return usecase.MenuInput{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
}

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/menu と画像アップロード
type AdminMenuHandler struct {
	uc *usecase.MenuUsecase
}

// DI
func NewAdminMenuHandler(uc *usecase.MenuUsecase) *AdminMenuHandler {
	return &AdminMenuHandler{uc: uc}
}

func (h *AdminMenuHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/menu", h.list)
	admin.POST("/menu", h.create)
	admin.PUT("/menu/:id", h.update)
	admin.DELETE("/menu/:id", h.delete)
	admin.PUT("/menu/:id/stock", h.updateStock)
	admin.POST("/menu/images", h.uploadImage)
}

func (h *AdminMenuHandler) list(c echo.Context) error {
	out, err := h.uc.AdminList(c.Request().Context(), c.QueryParam("q"), c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminMenuHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	m, err := h.uc.AdminCreate(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *AdminMenuHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	m, err := h.uc.AdminUpdate(c.Request().Context(), adminID, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *AdminMenuHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminDelete(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "menu deleted"})
}

func (h *AdminMenuHandler) updateStock(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	m, err := h.uc.AdminUpdateStock(c.Request().Context(), adminID, id, usecase.UpdateStockInput{
		Stock:  req.Stock,
		Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// multipart の "image"
func (h *AdminMenuHandler) uploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image required"})
	}
	if fh.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "image too large"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer f.Close()

	out, err := h.uc.UploadImage(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
