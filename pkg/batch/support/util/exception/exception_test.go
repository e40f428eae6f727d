package exception_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
)

type CustomError struct {
	Msg string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("CustomError: %s", e.Msg)
}

func TestNewBatchError(t *testing.T) {
	originalErr := errors.New("db connection refused")
	be := exception.NewBatchError("db", "failed to connect", originalErr, false, true)

	assert.Equal(t, "db", be.Module)
	assert.Equal(t, "failed to connect", be.Message)
	assert.Equal(t, originalErr, be.Unwrap())
	assert.True(t, be.IsRetryable())
	assert.False(t, be.IsSkippable())
	assert.Equal(t, "[db] failed to connect: db connection refused", be.Error())

	bare := exception.NewBatchError("reader", "not open", nil, false, false)
	assert.Equal(t, "[reader] not open", bare.Error())
}

func TestIsTemporaryAndIsFatal(t *testing.T) {
	retryableErr := exception.NewBatchError("net", "timeout", errors.New("timeout"), false, true)
	assert.True(t, exception.IsTemporary(retryableErr))
	assert.False(t, exception.IsFatal(retryableErr))

	fatalErr := exception.NewBatchError("data", "invalid format", errors.New("invalid argument"), false, false)
	assert.False(t, exception.IsTemporary(fatalErr))
	assert.True(t, exception.IsFatal(fatalErr))

	skippableErr := exception.NewBatchError("writer", "batch failed", errors.New("conflict"), true, false)
	assert.False(t, exception.IsTemporary(skippableErr))
	assert.False(t, exception.IsFatal(skippableErr))

	assert.True(t, exception.IsTemporary(errors.New("rpc error: code = Unavailable")))
	assert.True(t, exception.IsTemporary(fmt.Errorf("mutate: %w", context.DeadlineExceeded)))
	assert.True(t, exception.IsFatal(errors.New("permission denied")))
	assert.False(t, exception.IsTemporary(nil))
	assert.False(t, exception.IsFatal(nil))
}

func TestIsErrorOfType(t *testing.T) {
	sentinel := errors.New("sentinel")
	exception.RegisterErrorType("exception_test.sentinel", sentinel)
	assert.True(t, exception.IsErrorTypeRegistered("exception_test.sentinel"))
	assert.True(t, exception.IsErrorOfType(fmt.Errorf("wrapped: %w", sentinel), "exception_test.sentinel"))

	customErr := &CustomError{Msg: "test"}
	wrappedErr := exception.NewBatchError("proc", "custom failure", customErr, false, false)
	assert.True(t, exception.IsErrorOfType(wrappedErr, "*exception_test.CustomError"))
	assert.True(t, exception.IsErrorOfType(wrappedErr, "custom failure"))
	assert.True(t, exception.IsErrorOfType(wrappedErr, "CustomError: test"))

	deeplyWrapped := fmt.Errorf("level 2: %w", wrappedErr)
	assert.True(t, exception.IsErrorOfType(deeplyWrapped, "*exception_test.CustomError"))
	assert.False(t, exception.IsErrorOfType(deeplyWrapped, "exception_test.sentinel"))
	assert.False(t, exception.IsErrorOfType(deeplyWrapped, "NonExistentError"))
	assert.False(t, exception.IsErrorOfType(nil, "any"))
}

func TestRegisterErrorTypeRejectsInvalidInput(t *testing.T) {
	assert.Panics(t, func() { exception.RegisterErrorType("", errors.New("x")) })
	assert.Panics(t, func() { exception.RegisterErrorType("nil.Prototype", nil) })
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	be := exception.NewBatchError("writer", "batch 3 failed", errors.New("conflict"), true, false)
	assert.Equal(t, "batch 3 failed", exception.ExtractErrorMessage(fmt.Errorf("outer: %w", be)))
}
