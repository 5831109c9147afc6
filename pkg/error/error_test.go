package error

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SetsKindAndCategory(t *testing.T) {
	err := New(KindOutOfRange, "arg 2 must be greater than 0")

	assert.Equal(t, KindOutOfRange, err.Kind)
	assert.Equal(t, "OUT_OF_RANGE", err.Code)
	assert.Equal(t, ErrCategoryUser, err.Category)
	assert.Equal(t, -1, err.Location)
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, "[OUT_OF_RANGE] arg 2 must be greater than 0", err.Error())
}

func TestWrap_EnrichesExistingDBError(t *testing.T) {
	inner := New(KindExecutor, "boom")
	wrapped := Wrap(fmt.Errorf("context: %w", inner), "X", "SortExec.Next", "execution/query")

	require.Same(t, inner, wrapped)
	assert.Equal(t, "SortExec.Next", wrapped.Operation)
	assert.Equal(t, "execution/query", wrapped.Component)
}

func TestWrap_PlainError(t *testing.T) {
	wrapped := Wrap(errors.New("disk gone"), "SOURCE", "ScanExec.Next", "execution")

	assert.Equal(t, "SOURCE", wrapped.Code)
	assert.Equal(t, ErrCategorySystem, wrapped.Category)
	assert.Contains(t, wrapped.Error(), "caused by: disk gone")
	assert.Nil(t, Wrap(nil, "X", "", ""))
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KindDecimal, "cast fail"))

	assert.Equal(t, KindDecimal, KindOf(err))
	assert.True(t, IsKind(err, KindDecimal))
	assert.False(t, IsKind(nil, KindDecimal))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestMemoryLimit_IsCatchable(t *testing.T) {
	err := fmt.Errorf("sort: %w", MemoryLimit(64, 32))

	assert.True(t, IsMemoryLimit(err))
	assert.True(t, errors.Is(err, ErrMemoryLimitExceeded))
	assert.Equal(t, KindMemoryLimit, KindOf(err))
	assert.Equal(t, ErrCategoryTransient, KindMemoryLimit.Category())
}

func TestFormatStack(t *testing.T) {
	err := New(KindFatal, "unsupported join type")
	assert.Contains(t, err.FormatStack(), "Stack trace:")
	assert.Equal(t, ErrCategorySystem, err.Category)
}
