package usecase

import (
	"errors"
	"fmt"
)

// handlerでそのままHTTPレスポンスにするエラー
// Redirect は客側画面の戻り先（無ければ空）
type HTTPError struct {
	Status   int
	Message  string
	Redirect string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func NewRedirectError(status int, message string, redirect string) error {
	return &HTTPError{
		Status:   status,
		Message:  message,
		Redirect: redirect,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
