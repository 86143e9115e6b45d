package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, " admin@twon.cafe ", "secret123"))

	assert.ErrorIs(t, v.ValidateLogin(ctx, "", "x"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "admin@twon.cafe", ""), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "not-an-email", "x"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "admin@twon.cafe", strings.Repeat("a", 73)), ErrInvalidInput)
}
