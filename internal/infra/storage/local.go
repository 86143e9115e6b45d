package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrInvalidPath  = errors.New("invalid object path")
)

// ローカルディスクの画像置き場。/storage/ で配信する。
type LocalStorage struct {
	root    string
	baseURL string
}

// baseURL は "http://host" のようなURL（空なら相対パス）
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *LocalStorage) Upload(ctx context.Context, objectPath string, r io.Reader, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !upsert {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(dst, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return ErrObjectExists
	}
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

func (s *LocalStorage) PublicURL(objectPath string) string {
	return s.baseURL + "/storage/" + strings.TrimPrefix(path.Clean("/"+objectPath), "/")
}
