// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP API surface: account lifecycle,
// admin moderation, contact intake and health.
package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/gatehouse-go/internal/apperror"
	"github.com/olegiv/gatehouse-go/internal/auth"
	"github.com/olegiv/gatehouse-go/internal/eventlog"
	"github.com/olegiv/gatehouse-go/internal/middleware"
	"github.com/olegiv/gatehouse-go/internal/model"
	"github.com/olegiv/gatehouse-go/internal/store"
)

const (
	minPasswordLength = 8
	maxNameLength     = 120
	maxEmailLength    = 254
)

// Account serves the /api/account endpoints.
type Account struct {
	queries    *store.Queries
	events     *eventlog.Logger
	sessions   *scs.SessionManager
	protection *middleware.LoginProtection
	peppers    []string
	sanitizer  *bluemonday.Policy
}

// NewAccount creates the account handler.
func NewAccount(db *sql.DB, events *eventlog.Logger, sessions *scs.SessionManager,
	protection *middleware.LoginProtection, peppers []string) *Account {
	return &Account{
		queries:    store.New(db),
		events:     events,
		sessions:   sessions,
		protection: protection,
		peppers:    peppers,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *signupRequest) validate() map[string]string {
	fields := make(map[string]string)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Name == "" {
		fields["name"] = "name is required"
	} else if len(req.Name) > maxNameLength {
		fields["name"] = "name is too long"
	}
	if req.Email == "" {
		fields["email"] = "email is required"
	} else if len(req.Email) > maxEmailLength {
		fields["email"] = "email is too long"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "email is not a valid address"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// containsHTML reports whether sanitizing s strips anything, which means the
// input carried markup.
func (h *Account) containsHTML(s string) bool {
	return h.sanitizer.Sanitize(s) != s
}

// Signup handles POST /api/account/signup.
func (h *Account) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if fields := req.validate(); fields != nil {
		if err := h.events.Log(ctx, eventlog.ActivitySignup, eventlog.CodeSignupSchemaReject, req.Email); err != nil {
			slog.Error("failed to log signup rejection", "error", err)
		}
		WriteError(w, apperror.Validation("invalid signup request", fields))
		return
	}

	if h.containsHTML(req.Name) {
		if err := h.events.Log(ctx, eventlog.ActivitySignup, eventlog.CodeSignupHTMLSuspected, req.Email); err != nil {
			slog.Error("failed to log signup rejection", "error", err)
		}
		WriteError(w, apperror.Validation("invalid signup request",
			map[string]string{"name": "name must not contain markup"}))
		return
	}

	if !auth.IsGoodPassword(req.Password) {
		if err := h.events.Log(ctx, eventlog.ActivitySignup, eventlog.CodeSignupWeakPassword, req.Email); err != nil {
			slog.Error("failed to log signup rejection", "error", err)
		}
		WriteError(w, apperror.Policy("password is too weak"))
		return
	}

	if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
		if err := h.events.Log(ctx, eventlog.ActivitySignup, eventlog.CodeSignupDuplicate, req.Email); err != nil {
			slog.Error("failed to log signup rejection", "error", err)
		}
		WriteError(w, apperror.Conflict("an account with this email already exists"))
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteError(w, apperror.Internal(err))
		return
	}

	now := time.Now()
	salt := auth.GenerateSalt()
	pepper := auth.PepperForMonth(h.peppers, now.Month())
	hash, err := auth.HashPassword(req.Password, salt, pepper)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Salt:         salt,
		AccessLevel:  model.AccessUser,
		Flag:         model.FlagBlue,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.events.Log(ctx, eventlog.ActivitySignup, eventlog.CodeSignupCreated, user.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"response": "user created",
		"user_id":  user.ID,
		"user":     model.UserSummary{Name: user.Name, Email: user.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) validate() map[string]string {
	fields := make(map[string]string)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Login handles POST /api/account/login.
func (h *Account) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if fields := req.validate(); fields != nil {
		WriteError(w, apperror.Validation("invalid login request", fields))
		return
	}

	if locked, _ := h.protection.IsLocked(req.Email); locked {
		if err := h.events.Log(ctx, eventlog.ActivityLogin, eventlog.CodeLoginLockedOut, req.Email); err != nil {
			WriteError(w, apperror.Internal(err))
			return
		}
		WriteError(w, apperror.RateLimit("too many failed attempts, try again later"))
		return
	}

	user, err := h.queries.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteError(w, apperror.Internal(err))
			return
		}
		h.protection.RecordFailure(req.Email)
		if err := h.events.Log(ctx, eventlog.ActivityLogin, eventlog.CodeLoginUnknownUser, req.Email); err != nil {
			WriteError(w, apperror.Internal(err))
			return
		}
		WriteError(w, apperror.Auth("invalid credentials"))
		return
	}

	if user.Blocked {
		if err := h.events.Log(ctx, eventlog.ActivityLogin, eventlog.CodeLoginBlocked, user.Email); err != nil {
			WriteError(w, apperror.Internal(err))
			return
		}
		WriteError(w, apperror.Forbidden("account is blocked"))
		return
	}

	// The pepper is selected by the month the account was created in, not
	// the current month, so verification survives rotation.
	pepper := auth.PepperForMonth(h.peppers, user.CreatedAt.Month())
	ok, err := auth.CheckPassword(req.Password, user.Salt, pepper, user.PasswordHash)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	if !ok {
		count, locked, _ := h.protection.RecordFailure(req.Email)
		code := eventlog.CodeLoginWrongPassword
		if count >= h.protection.Threshold() {
			code = eventlog.CodeLoginRepeatedFails
		}
		if err := h.events.Log(ctx, eventlog.ActivityLogin, code, user.Email); err != nil {
			WriteError(w, apperror.Internal(err))
			return
		}
		if locked {
			WriteError(w, apperror.RateLimit("too many failed attempts, try again later"))
			return
		}
		WriteError(w, apperror.Auth("invalid credentials"))
		return
	}

	h.protection.RecordSuccess(req.Email)

	if err := h.sessions.RenewToken(ctx); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	h.sessions.Put(ctx, middleware.SessionKeyUserID, user.ID)

	if err := h.events.Log(ctx, eventlog.ActivityLogin, eventlog.CodeLoginSuccess, user.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"response": "login successful",
		"user_id":  user.ID,
		"user":     model.UserSummary{Name: user.Name, Email: user.Email},
	})
}

// Logout handles POST /api/account/logout. Requires a session.
func (h *Account) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"response": "logged out"})
}

type updateNameRequest struct {
	Name string `json:"name"`
}

// UpdateName handles POST /api/account/name. Requires a session.
func (h *Account) UpdateName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	var req updateNameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > maxNameLength {
		WriteError(w, apperror.Validation("invalid name",
			map[string]string{"name": "name is required"}))
		return
	}
	if h.containsHTML(req.Name) {
		WriteError(w, apperror.Validation("invalid name",
			map[string]string{"name": "name must not contain markup"}))
		return
	}

	if err := h.queries.UpdateUserName(ctx, store.UpdateUserNameParams{
		Name:      req.Name,
		UpdatedAt: time.Now(),
		ID:        user.ID,
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"response": "name updated",
		"user":     model.UserSummary{Name: req.Name, Email: user.Email},
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles POST /api/account/password. Requires a session. The
// stored hash and salt are replaced together; the pepper stays keyed to the
// account's creation month.
func (h *Account) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)

	var req changePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.OldPassword == "" || len(req.NewPassword) < minPasswordLength {
		WriteError(w, apperror.Validation("invalid password change request",
			map[string]string{"new_password": "password must be at least 8 characters"}))
		return
	}

	pepper := auth.PepperForMonth(h.peppers, user.CreatedAt.Month())
	ok, err := auth.CheckPassword(req.OldPassword, user.Salt, pepper, user.PasswordHash)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	if !ok {
		WriteError(w, apperror.Auth("current password is incorrect"))
		return
	}

	if !auth.IsGoodPassword(req.NewPassword) {
		WriteError(w, apperror.Policy("password is too weak"))
		return
	}

	salt := auth.GenerateSalt()
	hash, err := auth.HashPassword(req.NewPassword, salt, pepper)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		Salt:         salt,
		UpdatedAt:    time.Now(),
		ID:           user.ID,
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"response": "password updated"})
}
