package repository

import (
	"context"
	"io"
)

// メニュー画像の保存先
type ImageStorage interface {
	// upsert=false で同じパスがあればエラー
	Upload(ctx context.Context, path string, r io.Reader, upsert bool) error
	PublicURL(path string) string
}
