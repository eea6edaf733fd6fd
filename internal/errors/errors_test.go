package errors

import (
	stderrors "errors"
	"testing"

	"abtest/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("PORT is required")
	wrapped := Wrap(base, "failed to load server configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "failed to load server configuration: PORT is required", wrapped.Error())
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(stderrors.New("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "step 3: boom", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCodePreservesTypedCause(t *testing.T) {
	parseErr := core.NewRangeError("Bad 100 200", 100, 200, "successes exceed trials")
	err := WithCode(CodeInvalidInput, parseErr)

	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, parseErr.Error(), err.Error())

	var rangeErr *core.RangeError
	require.True(t, stderrors.As(err, &rangeErr))
	assert.Equal(t, int64(200), rangeErr.X)
	assert.True(t, core.IsParseError(err))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.False(t, IsAppError(stderrors.New("plain")))
	assert.True(t, IsAppError(NotFound("share")))
}
