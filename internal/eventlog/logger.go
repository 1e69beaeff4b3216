// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package eventlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/gatehouse-go/internal/store"
)

// Logger persists audit events. It does not swallow persistence failures;
// callers decide whether a failed write is fatal for their path.
type Logger struct {
	queries *store.Queries
}

// NewLogger creates a Logger backed by the given database.
func NewLogger(db *sql.DB) *Logger {
	return &Logger{queries: store.New(db)}
}

// Log resolves the (activity, code) template and appends one event row.
// subject is the associated user identifier; pass "" when the template does
// not require one. A missing required subject returns MissingSubjectError
// without writing anything.
func (l *Logger) Log(ctx context.Context, activity Activity, code Code, subject string) error {
	tmpl, err := Resolve(activity, code)
	if err != nil {
		return err
	}

	if tmpl.SubjectRequired && subject == "" {
		return &MissingSubjectError{Activity: activity, Code: code}
	}

	var nullSubject sql.NullString
	if subject != "" {
		nullSubject = sql.NullString{String: subject, Valid: true}
	}

	_, err = l.queries.CreateLogEvent(ctx, store.CreateLogEventParams{
		Level:     tmpl.Level,
		Type:      tmpl.Type,
		Activity:  string(activity),
		Code:      string(code),
		Message:   tmpl.Message,
		Subject:   nullSubject,
		CreatedAt: time.Now(),
	})
	return err
}
