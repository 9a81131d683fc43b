package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("load: %w", ErrConfiguration), "ConfigurationError"},
		{Wrap("graph.token", ErrAuth, errors.New("invalid_client")), "AuthError"},
		{Wrap("graph.download", ErrNotFound, errors.New("404")), "NotFoundError"},
		{ErrUnsupportedFormat, "UnsupportedFormatError"},
		{Wrap("check.heading1Color", ErrRule, errors.New("bad rgb")), "ValidationRuleError"},
		{ErrAICorrector, "AICorrectorError"},
		{ErrBadRequest, "BadRequestError"},
		{errors.New("boom"), "InternalError"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeName(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap("op", ErrAuth, nil))

	base := errors.New("token expired")
	err := Wrap("graph.token", ErrAuth, base)
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "graph.token: authentication failed: token expired", err.Error())

	// already classified errors are not double-wrapped
	again := Wrap("server.validate", ErrAuth, err)
	assert.Equal(t, "server.validate: graph.token: authentication failed: token expired", again.Error())
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("x: %w", ErrBadRequest)))
	assert.True(t, IsClientError(ErrUnsupportedFormat))
	assert.False(t, IsClientError(ErrAuth))
}
