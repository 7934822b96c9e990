package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteErrorUnwrapsKindAndCause(t *testing.T) {
	err := &RemoteError{Kind: ErrRateLimited, StatusCode: 429, Attempts: 1, Err: io.ErrUnexpectedEOF}

	assert.True(t, IsRateLimited(err))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, IsInvalidCredential(err))
	assert.Contains(t, err.Error(), "status=429")
}

func TestRemoteKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "credential", err: &RemoteError{Kind: ErrInvalidCredential}, want: "invalid_credential"},
		{name: "rate_limited", err: &RemoteError{Kind: ErrRateLimited}, want: "rate_limited"},
		{name: "unavailable", err: &RemoteError{Kind: ErrUnavailable}, want: "unavailable"},
		{name: "unclassified", err: io.EOF, want: "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoteKind(tt.err))
		})
	}
}

func TestSentinelHierarchy(t *testing.T) {
	assert.True(t, IsNotFound(ErrSessionNotFound))
	assert.True(t, IsServiceUnavailable(ErrUnavailable))
	assert.Nil(t, WrapError(nil, "ignored"))
	assert.True(t, IsSessionNotFound(WrapErrorf(ErrSessionNotFound, "session %s", "abc")))
}
