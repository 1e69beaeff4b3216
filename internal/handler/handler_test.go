// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/gatehouse-go/internal/eventlog"
	"github.com/olegiv/gatehouse-go/internal/geoip"
	"github.com/olegiv/gatehouse-go/internal/handler"
	"github.com/olegiv/gatehouse-go/internal/middleware"
	"github.com/olegiv/gatehouse-go/internal/session"
	"github.com/olegiv/gatehouse-go/internal/store"
	"github.com/olegiv/gatehouse-go/internal/testutil"
)

// testApp wires the full API router against a temporary database, without
// rate limiting so tests can issue bursts.
type testApp struct {
	db     *sql.DB
	router http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithThreshold(t, 5)
}

func newTestAppWithThreshold(t *testing.T, loginThreshold int) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, time.Hour, false)
	events := eventlog.NewLogger(db)
	protection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		Threshold: loginThreshold,
	})
	geo, err := geoip.NewLookup("")
	if err != nil {
		t.Fatalf("geoip.NewLookup() error: %v", err)
	}

	accountHandler := handler.NewAccount(db, events, sm, protection, testutil.TestPeppers)
	adminHandler := handler.NewAdmin(db, events)
	contactHandler := handler.NewContact(db, events, geo)
	healthHandler := handler.NewHealth(db)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get("/healthz", healthHandler.Check)
	r.Route("/api", func(r chi.Router) {
		r.Route("/account", func(r chi.Router) {
			r.Post("/signup", accountHandler.Signup)
			r.Post("/login", accountHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser(sm, db))
				r.Post("/logout", accountHandler.Logout)
				r.Post("/name", accountHandler.UpdateName)
				r.Post("/password", accountHandler.ChangePassword)
			})
		})
		r.Post("/contact", contactHandler.Submit)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireUser(sm, db))
			r.Use(middleware.RequireStaff())
			r.Post("/block", adminHandler.Block)
			r.Post("/unblock", adminHandler.Unblock)
			r.Post("/delete", adminHandler.Delete)
			r.Post("/flag", adminHandler.Flag)
			r.Post("/access", adminHandler.AccessLevel)
			r.Post("/spam", adminHandler.MarkSpam)
			r.Get("/users", adminHandler.ListUsers)
			r.Get("/events", adminHandler.ListEvents)
			r.Get("/bots", adminHandler.ListBots)
			r.Get("/stats", adminHandler.Stats)
		})
	})

	return &testApp{db: db, router: r}
}

// post sends a JSON POST and returns the response recorder.
func (app *testApp) post(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

// get sends a GET and returns the response recorder.
func (app *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user through the API and fails the test on rejection.
func (app *testApp) signup(t *testing.T, name, email, password string) {
	t.Helper()

	rec := app.post(t, "/api/account/signup", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
}

// login authenticates through the API and returns the session cookie.
func (app *testApp) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := app.post(t, "/api/account/login", map[string]string{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}
	return cookies[0]
}

// promote raises a user's access level directly in the store.
func (app *testApp) promote(t *testing.T, email, level string) {
	t.Helper()

	user, err := store.New(app.db).GetUserByEmail(t.Context(), email)
	if err != nil {
		t.Fatalf("GetUserByEmail(%q) error: %v", email, err)
	}
	if err := store.New(app.db).SetUserAccessLevel(t.Context(), store.SetUserAccessLevelParams{
		AccessLevel: level, UpdatedAt: user.UpdatedAt, ID: user.ID,
	}); err != nil {
		t.Fatalf("SetUserAccessLevel() error: %v", err)
	}
}

// decodeBody unmarshals a JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

// lastEvents returns the newest n event rows.
func (app *testApp) lastEvents(t *testing.T, n int64) []store.LogEvent {
	t.Helper()

	events, err := store.New(app.db).ListLogEvents(t.Context(), store.ListLogEventsParams{Limit: n})
	if err != nil {
		t.Fatalf("ListLogEvents() error: %v", err)
	}
	return events
}

// requireEvent asserts that the newest event row matches the given pair.
func (app *testApp) requireEvent(t *testing.T, activity, code, subject string) {
	t.Helper()

	events := app.lastEvents(t, 1)
	if len(events) == 0 {
		t.Fatalf("no event rows, want %s/%s", activity, code)
	}
	e := events[0]
	if e.Activity != activity || e.Code != code {
		t.Fatalf("newest event = %s/%s, want %s/%s", e.Activity, e.Code, activity, code)
	}
	if subject != "" && (!e.Subject.Valid || e.Subject.String != subject) {
		t.Fatalf("event subject = %+v, want %q", e.Subject, subject)
	}
}
