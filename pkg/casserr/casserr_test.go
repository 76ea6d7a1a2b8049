package casserr

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeLayout(t *testing.T) {
	assert.Equal(t, Code(0x01000001), LibBadParams)
	assert.Equal(t, Code(0x0100000E), LibRequestTimedOut)
	assert.Equal(t, Code(0x01000022), LibExecutionProfileInvalid)
	assert.Equal(t, Code(0x02001200), ServerReadTimeout)
	assert.Equal(t, ServerInvalidQuery, ServerCode(0x2200))
	assert.Equal(t, SourceServer, ServerWriteTimeout.Source())
	assert.Equal(t, SourceLib, LibInternalError.Source())
}

func TestDesc(t *testing.T) {
	assert.Equal(t, "Success", OK.Desc())
	assert.Equal(t, "Callback already set", LibCallbackAlreadySet.Desc())
	assert.Equal(t, "Unknown error", Code(0x7F000000).Desc())
}

func TestCodeOf(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"plain", New(LibBadParams, "bad"), LibBadParams},
		{"wrapped", errors.Wrap(New(ServerSyntaxError, "line 1"), "prepare"), ServerSyntaxError},
		{"std wrapped", fmt.Errorf("exec: %w", New(ServerUnavailable, "")), ServerUnavailable},
		{"deadline", errors.WithStack(context.DeadlineExceeded), LibRequestTimedOut},
		{"unknown", errors.New("boom"), LibInternalError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CodeOf(tc.err))
		})
	}
}

func TestMessageAndResult(t *testing.T) {
	res := &ErrorResult{Code: ServerReadTimeout, ResponsesReceived: 1, ResponsesRequired: 2}
	err := errors.Wrap(&Error{Code: ServerReadTimeout, Message: "Operation timed out", Result: res}, "execute")

	assert.Equal(t, "Operation timed out", MessageOf(err))
	require.NotNil(t, ResultOf(err))
	assert.Equal(t, int32(2), ResultOf(err).ResponsesRequired)

	assert.Equal(t, "Request timed out", MessageOf(&Error{Code: LibRequestTimedOut}))
	assert.Nil(t, ResultOf(errors.New("x")))
	assert.Empty(t, MessageOf(nil))
}
