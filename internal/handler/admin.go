// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/gatehouse-go/internal/apperror"
	"github.com/olegiv/gatehouse-go/internal/eventlog"
	"github.com/olegiv/gatehouse-go/internal/middleware"
	"github.com/olegiv/gatehouse-go/internal/model"
	"github.com/olegiv/gatehouse-go/internal/store"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Admin serves the /api/admin endpoints. All routes are mounted behind
// RequireUser and RequireStaff.
type Admin struct {
	queries *store.Queries
	events  *eventlog.Logger
}

// NewAdmin creates the admin handler.
func NewAdmin(db *sql.DB, events *eventlog.Logger) *Admin {
	return &Admin{queries: store.New(db), events: events}
}

// pagination reads page/per_page query parameters with sane bounds.
func pagination(r *http.Request) store.ListUsersParams {
	page := int64(1)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil && v > 0 {
		page = v
	}
	perPage := int64(defaultPageSize)
	if v, err := strconv.ParseInt(r.URL.Query().Get("per_page"), 10, 64); err == nil && v > 0 {
		perPage = min(v, maxPageSize)
	}
	return store.ListUsersParams{Limit: perPage, Offset: (page - 1) * perPage}
}

type targetRequest struct {
	Email string `json:"email"`
}

// target resolves the user addressed by an admin action.
func (h *Admin) target(r *http.Request) (store.User, error) {
	var req targetRequest
	if err := DecodeJSON(r, &req); err != nil {
		return store.User{}, err
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return store.User{}, apperror.Validation("invalid request",
			map[string]string{"email": "email is required"})
	}
	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, apperror.NotFound("no user with this email")
	}
	if err != nil {
		return store.User{}, apperror.Internal(err)
	}
	return user, nil
}

// Block handles POST /api/admin/block.
func (h *Admin) Block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true, eventlog.CodeAdminBlock, "user blocked")
}

// Unblock handles POST /api/admin/unblock.
func (h *Admin) Unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false, eventlog.CodeAdminUnblock, "user unblocked")
}

func (h *Admin) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool,
	code eventlog.Code, response string) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	target, err := h.target(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if target.ID == actor.ID {
		WriteError(w, apperror.Validation("cannot moderate your own account", nil))
		return
	}
	if target.AccessLevel == model.AccessSuperAdmin {
		WriteError(w, apperror.Forbidden("super admin accounts cannot be blocked"))
		return
	}

	if err := h.queries.SetUserBlocked(ctx, store.SetUserBlockedParams{
		Blocked:   blocked,
		UpdatedAt: time.Now(),
		ID:        target.ID,
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	// Audit rows are keyed to the moderated account, not the acting admin.
	if err := h.events.Log(ctx, eventlog.ActivityAdmin, code, target.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"response": response, "user_id": target.ID})
}

// Delete handles POST /api/admin/delete. Deleting a staff account requires
// super-admin access.
func (h *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	target, err := h.target(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if target.ID == actor.ID {
		WriteError(w, apperror.Validation("cannot moderate your own account", nil))
		return
	}
	if target.AccessLevel == model.AccessSuperAdmin {
		WriteError(w, apperror.Forbidden("super admin accounts cannot be deleted"))
		return
	}
	if model.IsStaff(target.AccessLevel) && actor.AccessLevel != model.AccessSuperAdmin {
		WriteError(w, apperror.Forbidden("deleting staff accounts requires super admin access"))
		return
	}

	if err := h.queries.DeleteUser(ctx, target.ID); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.events.Log(ctx, eventlog.ActivityAdmin, eventlog.CodeAdminDelete, target.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"response": "user deleted", "user_id": target.ID})
}

type flagRequest struct {
	Email string `json:"email"`
	Flag  string `json:"flag"`
}

// Flag handles POST /api/admin/flag.
func (h *Admin) Flag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req flagRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		WriteError(w, apperror.Validation("invalid request",
			map[string]string{"email": "email is required"}))
		return
	}
	if !model.IsValidFlag(req.Flag) {
		WriteError(w, apperror.Validation("invalid request",
			map[string]string{"flag": "flag must be one of red, yellow, purple, blue"}))
		return
	}

	target, err := h.queries.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, apperror.NotFound("no user with this email"))
		return
	}
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.queries.SetUserFlag(ctx, store.SetUserFlagParams{
		Flag:      req.Flag,
		UpdatedAt: time.Now(),
		ID:        target.ID,
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.events.Log(ctx, eventlog.ActivityAdmin, eventlog.CodeAdminFlag, target.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"response": "flag updated", "user_id": target.ID})
}

type accessLevelRequest struct {
	Email       string `json:"email"`
	AccessLevel string `json:"access_level"`
}

// AccessLevel handles POST /api/admin/access. Changing access levels is
// restricted to super admins.
func (h *Admin) AccessLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUser(r)

	if actor.AccessLevel != model.AccessSuperAdmin {
		WriteError(w, apperror.Forbidden("changing access levels requires super admin access"))
		return
	}

	var req accessLevelRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		WriteError(w, apperror.Validation("invalid request",
			map[string]string{"email": "email is required"}))
		return
	}
	if !model.IsValidAccessLevel(req.AccessLevel) {
		WriteError(w, apperror.Validation("invalid request",
			map[string]string{"access_level": "access_level must be one of user, admin, super_admin"}))
		return
	}

	target, err := h.queries.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, apperror.NotFound("no user with this email"))
		return
	}
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	if target.ID == actor.ID {
		WriteError(w, apperror.Validation("cannot moderate your own account", nil))
		return
	}

	if err := h.queries.SetUserAccessLevel(ctx, store.SetUserAccessLevelParams{
		AccessLevel: req.AccessLevel,
		UpdatedAt:   time.Now(),
		ID:          target.ID,
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.events.Log(ctx, eventlog.ActivityAdmin, eventlog.CodeAdminAccessLevel, target.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"response": "access level updated", "user_id": target.ID})
}

type markSpamRequest struct {
	MessageID int64 `json:"message_id"`
}

// MarkSpam handles POST /api/admin/spam. Flags a contact message as spam and
// registers its sender in the spammer registry.
func (h *Admin) MarkSpam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req markSpamRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.MessageID <= 0 {
		WriteError(w, apperror.Validation("invalid request",
			map[string]string{"message_id": "message_id is required"}))
		return
	}

	msg, err := h.queries.GetContactMessageByID(ctx, req.MessageID)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, apperror.NotFound("no contact message with this id"))
		return
	}
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.queries.MarkContactMessageSpam(ctx, msg.ID); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	if _, err := h.queries.CreateSpammer(ctx, store.CreateSpammerParams{
		Email:     msg.Email,
		CreatedAt: time.Now(),
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.events.Log(ctx, eventlog.ActivityAdmin, eventlog.CodeAdminMarkSpam, msg.Email); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"response": "message marked as spam", "message_id": msg.ID})
}

// ListUsers handles GET /api/admin/users.
func (h *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination(r)

	users, err := h.queries.ListUsers(ctx, page)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	total, err := h.queries.CountUsers(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	items := make([]map[string]any, 0, len(users))
	for _, u := range users {
		items = append(items, map[string]any{
			"id":           u.ID,
			"name":         u.Name,
			"email":        u.Email,
			"access_level": u.AccessLevel,
			"flag":         u.Flag,
			"blocked":      u.Blocked,
			"created_at":   u.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": items, "total": total})
}

// ListEvents handles GET /api/admin/events.
func (h *Admin) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination(r)

	events, err := h.queries.ListLogEvents(ctx, store.ListLogEventsParams(page))
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	total, err := h.queries.CountLogEvents(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	items := make([]map[string]any, 0, len(events))
	for _, e := range events {
		item := map[string]any{
			"id":         e.ID,
			"type":       e.Type,
			"activity":   e.Activity,
			"code":       e.Code,
			"message":    e.Message,
			"created_at": e.CreatedAt,
		}
		if e.Subject.Valid {
			item["subject"] = e.Subject.String
		}
		items = append(items, item)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": items, "total": total})
}

// ListBots handles GET /api/admin/bots.
func (h *Admin) ListBots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pagination(r)

	catches, err := h.queries.ListBotCatches(ctx, store.ListBotCatchesParams(page))
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	total, err := h.queries.CountBotCatches(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	items := make([]map[string]any, 0, len(catches))
	for _, b := range catches {
		items = append(items, map[string]any{
			"id":         b.ID,
			"ip":         b.IP,
			"country":    b.Country,
			"user_agent": b.UserAgent,
			"form":       b.Form,
			"created_at": b.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"bots": items, "total": total})
}

// Stats handles GET /api/admin/stats. Returns table totals plus a per-activity
// breakdown of the event log.
func (h *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.queries.CountUsers(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	events, err := h.queries.CountLogEvents(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	bots, err := h.queries.CountBotCatches(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	byActivity, err := h.queries.CountLogEventsByActivity(ctx)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	breakdown := make([]map[string]any, 0, len(byActivity))
	for _, c := range byActivity {
		breakdown = append(breakdown, map[string]any{
			"activity": c.Activity,
			"type":     c.Type,
			"count":    c.Count,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"users":       users,
		"events":      events,
		"bots":        bots,
		"by_activity": breakdown,
	})
}
