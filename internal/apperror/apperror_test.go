// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantStatus int
		wantCode   string
	}{
		{"validation", Validation("bad input", nil), http.StatusBadRequest, "validation_error"},
		{"auth", Auth("bad credentials"), http.StatusUnauthorized, "auth_error"},
		{"forbidden", Forbidden("no"), http.StatusForbidden, "forbidden"},
		{"conflict", Conflict("exists"), http.StatusConflict, "conflict"},
		{"policy", Policy("weak"), http.StatusUnprocessableEntity, "policy_error"},
		{"not found", NotFound("missing"), http.StatusNotFound, "not_found"},
		{"rate limit", RateLimit("slow down"), http.StatusTooManyRequests, "rate_limit"},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.Status())
			assert.Equal(t, tt.wantCode, tt.err.Code())
		})
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("sqlite: disk I/O error")
	err := Internal(cause)

	assert.Equal(t, "internal server error", err.Message)
	assert.NotContains(t, err.Message, "sqlite")
	require.ErrorIs(t, err, cause)
}

func TestValidationFields(t *testing.T) {
	err := Validation("invalid request", map[string]string{"email": "email is required"})

	require.NotNil(t, err.Fields)
	assert.Equal(t, "email is required", err.Fields["email"])
	assert.Equal(t, "invalid request", err.Error())
}
