// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/gatehouse-go/internal/apperror"
)

// maxBodyBytes caps request bodies for all JSON endpoints.
const maxBodyBytes = 1 << 20

// WriteJSON renders v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError renders err as a JSON error envelope. Internal errors are
// always logged with their cause; the response body stays opaque. Errors
// that are not *apperror.Error are logged and reduced to a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error in handler", "error", err)
		appErr = apperror.Internal(err)
	} else if appErr.Kind == apperror.KindInternal {
		slog.Error("internal error", "error", appErr.Unwrap())
	}
	body := map[string]any{
		"error":   appErr.Code(),
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	WriteJSON(w, appErr.Status(), body)
}

// DecodeJSON reads the request body into dst, rejecting oversized and
// malformed payloads.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is empty", nil)
		}
		return apperror.Validation("malformed JSON body", nil)
	}
	return nil
}
