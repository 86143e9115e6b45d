package model

import (
	"errors"
	"strings"
	"time"
)

type MenuCategory string

const (
	MenuCategoryFood  MenuCategory = "food"
	MenuCategoryDrink MenuCategory = "drink"
)

var (
	ErrInvalidMenuName     = errors.New("name required")
	ErrInvalidMenuPrice    = errors.New("price must be >= 0")
	ErrInvalidMenuStock    = errors.New("stock must be >= 0")
	ErrInvalidMenuCategory = errors.New("invalid category")
)

// 旧データの makanan/minuman も受け付ける
func ParseMenuCategory(s string) (MenuCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "food", "makanan":
		return MenuCategoryFood, nil
	case "drink", "minuman":
		return MenuCategoryDrink, nil
	default:
		return "", ErrInvalidMenuCategory
	}
}

// メニュー（商品）
// 削除は is_deleted で論理削除。
type MenuItem struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Price       int64        `gorm:"not null" json:"price"`
	Description string       `gorm:"type:text" json:"description"`
	Category    MenuCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Stock       int64        `gorm:"not null;default:0" json:"stock"`
	ImageURL    string       `gorm:"type:text" json:"image_url"`
	IsDeleted   bool         `gorm:"not null;default:false;index" json:"is_deleted"`
	IsActive    bool         `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// NewMenuItem は入力を検証してMenuItemを組み立てる。
func NewMenuItem(name string, price int64, description string, category string, stock int64, imageURL string, isActive bool) (MenuItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return MenuItem{}, ErrInvalidMenuName
	}
	if price < 0 {
		return MenuItem{}, ErrInvalidMenuPrice
	}
	if stock < 0 {
		return MenuItem{}, ErrInvalidMenuStock
	}
	cat, err := ParseMenuCategory(category)
	if err != nil {
		return MenuItem{}, err
	}

	return MenuItem{
		Name:        name,
		Price:       price,
		Description: strings.TrimSpace(description),
		Category:    cat,
		Stock:       stock,
		ImageURL:    strings.TrimSpace(imageURL),
		IsActive:    isActive,
	}, nil
}

// 客が注文できる状態か
func (m MenuItem) Orderable() bool {
	return !m.IsDeleted && m.IsActive
}
