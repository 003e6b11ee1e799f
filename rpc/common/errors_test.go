package common

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeSuccess, "success"},
		{CodeInvalidOperation, "invalid operation"},
		{CodeHostNotFound, "host not found"},
		{CodeConnectionRefused, "connection refused"},
		{CodeSendError, "send error"},
		{CodeReceiveError, "recv error"},
		{CodeExistingRecord, "existing record"},
		{CodeNoRecordFound, "no record found"},
		{CodeMiscellaneous, "miscellaneous error"},
		{Code(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	err := NewError(CodeNoRecordFound, "get")
	assert.True(t, errors.Is(err, ErrNoRecord))
	assert.False(t, errors.Is(err, ErrKeep))

	wrapped := errors.Wrap(err, "loading user")
	assert.True(t, errors.Is(wrapped, ErrNoRecord))

	cause := WrapError(CodeReceiveError, io.ErrUnexpectedEOF, "reading get response")
	assert.True(t, errors.Is(cause, ErrRecv))
	assert.True(t, errors.Is(cause, io.ErrUnexpectedEOF))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "tyrant error (existing record)", (&Error{Code: CodeExistingRecord}).Error())
	assert.Equal(t, "tyrant error (invalid operation): put: key required", NewError(CodeInvalidOperation, "put: key required").Error())
	assert.Equal(t, "tyrant error (send error): sending put: EOF", WrapError(CodeSendError, io.EOF, "sending put").Error())
	assert.Equal(t, "tyrant error (recv error): EOF", (&Error{Code: CodeReceiveError, Err: io.EOF}).Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeSuccess, CodeOf(nil))
	assert.Equal(t, CodeNoRecordFound, CodeOf(ErrNoRecord))
	assert.Equal(t, CodeSendError, CodeOf(errors.Wrap(ErrSend, "context")))
	assert.Equal(t, CodeMiscellaneous, CodeOf(io.EOF))
}
