// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/gatehouse-go/internal/apperror"
	"github.com/olegiv/gatehouse-go/internal/eventlog"
	"github.com/olegiv/gatehouse-go/internal/geoip"
	"github.com/olegiv/gatehouse-go/internal/middleware"
	"github.com/olegiv/gatehouse-go/internal/store"
)

const maxMessageLength = 4000

// contactForm names the form recorded on honeypot captures.
const contactForm = "contact"

// Contact serves POST /api/contact.
type Contact struct {
	queries *store.Queries
	events  *eventlog.Logger
	geo     *geoip.Lookup
}

// NewContact creates the contact handler.
func NewContact(db *sql.DB, events *eventlog.Logger, geo *geoip.Lookup) *Contact {
	return &Contact{queries: store.New(db), events: events, geo: geo}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`

	// Honeypot. Hidden on the real form; any value means a bot filled it.
	Website string `json:"_website"`
}

func (req *contactRequest) validate() map[string]string {
	fields := make(map[string]string)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		fields["name"] = "name is required"
	} else if len(req.Name) > maxNameLength {
		fields["name"] = "name is too long"
	}
	if req.Email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "email is not a valid address"
	}
	if req.Message == "" {
		fields["message"] = "message is required"
	} else if len(req.Message) > maxMessageLength {
		fields["message"] = "message is too long"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// userAgentSummary condenses a raw User-Agent header into "browser version
// (os)" for the capture record.
func userAgentSummary(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.Parse(raw)
	if ua.Name == "" {
		return raw
	}
	summary := ua.Name
	if ua.Version != "" {
		summary += " " + ua.Version
	}
	if ua.OS != "" {
		summary += " (" + ua.OS + ")"
	}
	return summary
}

// Submit handles POST /api/contact. Bot and spammer submissions are dropped
// with the same generic success response as genuine ones, so senders cannot
// tell they were filtered.
func (h *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accepted := map[string]any{"response": "message received"}

	var req contactRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Website != "" {
		ip := middleware.GetClientIP(r)
		if _, err := h.queries.CreateBotCatch(ctx, store.CreateBotCatchParams{
			IP:        ip,
			Country:   h.geo.Country(ip),
			UserAgent: userAgentSummary(r.UserAgent()),
			Form:      contactForm,
			CreatedAt: time.Now(),
		}); err != nil {
			slog.Warn("failed to record bot catch", "error", err)
		}
		if err := h.events.Log(ctx, eventlog.ActivityContact, eventlog.CodeContactHoneypot, req.Email); err != nil {
			slog.Warn("failed to log honeypot capture", "error", err)
		}
		WriteJSON(w, http.StatusOK, accepted)
		return
	}

	if fields := req.validate(); fields != nil {
		WriteError(w, apperror.Validation("invalid contact request", fields))
		return
	}

	spammer, err := h.queries.IsSpammer(ctx, req.Email)
	if err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}
	if spammer {
		if err := h.events.Log(ctx, eventlog.ActivityContact, eventlog.CodeContactSpammer, req.Email); err != nil {
			slog.Warn("failed to log spammer drop", "error", err)
		}
		WriteJSON(w, http.StatusOK, accepted)
		return
	}

	if _, err := h.queries.CreateContactMessage(ctx, store.CreateContactMessageParams{
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}); err != nil {
		WriteError(w, apperror.Internal(err))
		return
	}

	if err := h.events.Log(ctx, eventlog.ActivityContact, eventlog.CodeContactReceived, req.Email); err != nil {
		slog.Warn("failed to log contact message", "error", err)
	}

	WriteJSON(w, http.StatusOK, accepted)
}
