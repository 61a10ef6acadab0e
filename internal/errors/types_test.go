package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	err := New(ErrCodeTelegramAPI, "request failed")
	assert.Equal(t, "TELEGRAM_API: request failed", err.Error())

	wrapped := Wrap(fmt.Errorf("connection refused"), ErrCodeTelegramAPI, "request failed")
	assert.Equal(t, "TELEGRAM_API: request failed: connection refused", wrapped.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := Wrap(cause, ErrCodeTelegramAPI, "request failed")
	assert.True(t, errors.Is(wrapped, cause))
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeMediaDownload, "download failed").
		WithContext("fileID", "abc").
		WithContext("attempt", 2)

	assert.Equal(t, "abc", err.Context["fileID"])
	assert.Equal(t, 2, err.Context["attempt"])
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(WrapRetryable(fmt.Errorf("timeout"), ErrCodeTimeout, "slow")))
	assert.False(t, IsRetryable(New(ErrCodeInvalidInput, "bad")))
	assert.False(t, IsRetryable(fmt.Errorf("plain error")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, GetCode(New(ErrCodeNotFound, "missing")))
	assert.Equal(t, ErrCodeInternalError, GetCode(fmt.Errorf("plain error")))
}
