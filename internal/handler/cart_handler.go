package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cart のHTTP
type CartHandler struct {
	uc *usecase.SessionUsecase
}

// DI
func NewCartHandler(uc *usecase.SessionUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	MenuItemID int64 `json:"menu_id"`
	Quantity   int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /api/cart, /api/cart/items/{menu_id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, customer ...echo.MiddlewareFunc) {
	g := e.Group("/api/cart", customer...)

	g.GET("", h.getCart)
	g.POST("/items", h.addToCart)
	g.PUT("/items/:menu_id", h.updateItem)
	g.DELETE("/items/:menu_id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), sessionIDFromContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), sessionIDFromContext(c), usecase.AddToCartInput{
		MenuItemID: req.MenuItemID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	menuID, ok := parseIDParam(c, "menu_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid menu_id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), sessionIDFromContext(c), menuID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	menuID, ok := parseIDParam(c, "menu_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid menu_id"})
	}

	out, err := h.uc.RemoveCartItem(c.Request().Context(), sessionIDFromContext(c), menuID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
