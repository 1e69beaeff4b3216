// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/olegiv/gatehouse-go/internal/version"
)

// Health serves GET /healthz.
type Health struct {
	db *sql.DB
}

// NewHealth creates the health handler.
func NewHealth(db *sql.DB) *Health {
	return &Health{db: db}
}

// Check reports service liveness and database reachability.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "degraded",
			"version": version.Version,
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
	})
}
