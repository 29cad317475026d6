package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/carlmjohnson/be"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: Unknown,
		},
		{
			name:     "plain error",
			err:      cause,
			expected: Unknown,
		},
		{
			name:     "network failure",
			err:      E(NetworkFailure, "list transactions", cause),
			expected: NetworkFailure,
		},
		{
			name:     "wrapped auth required",
			err:      fmt.Errorf("loading dashboard: %w", E(AuthRequired, "balance", nil)),
			expected: AuthRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")

	be.Equal(t, "list transactions: boom", E(NetworkFailure, "list transactions", cause).Error())
	be.Equal(t, "boom", E(NetworkFailure, "", cause).Error())
	be.Equal(t, "balance: authentication required", E(AuthRequired, "balance", nil).Error())
	be.Equal(t, "invalid input", E(ValidationFailure, "", nil).Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := E(NetworkFailure, "delete transaction", cause)

	be.True(t, errors.Is(err, cause))
	be.True(t, Is(err, NetworkFailure))
	be.False(t, Is(err, AuthRequired))
	be.False(t, Is(nil, NetworkFailure))
}

func TestKindString(t *testing.T) {
	be.Equal(t, "auth required", AuthRequired.String())
	be.Equal(t, "network failure", NetworkFailure.String())
	be.Equal(t, "validation failure", ValidationFailure.String())
	be.Equal(t, "unknown", Kind(42).String())
	be.Equal(t, "an unexpected error occurred", Kind(42).Message())
}
