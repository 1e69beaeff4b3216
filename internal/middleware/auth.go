// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/gatehouse-go/internal/apperror"
	"github.com/olegiv/gatehouse-go/internal/model"
	"github.com/olegiv/gatehouse-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// SessionKeyUserID is the session key for the authenticated user ID.
const SessionKeyUserID = "user_id"

// writeError renders an apperror as the JSON error envelope. Internal
// errors are always logged with their cause.
func writeError(w http.ResponseWriter, appErr *apperror.Error) {
	if appErr.Kind == apperror.KindInternal {
		slog.Error("internal error", "error", appErr.Unwrap())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   appErr.Code(),
		"message": appErr.Message,
	})
}

// RequireUser creates middleware that requires an authenticated session and
// loads the user into the request context. Unauthenticated requests get a
// JSON 401.
func RequireUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				writeError(w, apperror.Auth("authentication required"))
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				// Stale session for a deleted user.
				_ = sm.Destroy(r.Context())
				writeError(w, apperror.Auth("authentication required"))
				return
			}

			if user.Blocked {
				writeError(w, apperror.Forbidden("account is blocked"))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff creates middleware that requires admin or super-admin access.
// Must be used after RequireUser.
func RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				writeError(w, apperror.Auth("authentication required"))
				return
			}
			if !model.IsStaff(user.AccessLevel) {
				slog.Warn("admin route denied", "user_id", user.ID, "access_level", user.AccessLevel)
				writeError(w, apperror.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetClientIP extracts the client IP from the request, preferring
// reverse-proxy headers over the socket address.
func GetClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For can contain multiple IPs; take the first one.
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return strings.Trim(host, "[]")
}
