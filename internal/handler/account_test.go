// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/olegiv/gatehouse-go/internal/eventlog"
	"github.com/olegiv/gatehouse-go/internal/store"
)

func TestSignupCreatesUser(t *testing.T) {
	app := newTestApp(t)

	rec := app.post(t, "/api/account/signup", map[string]string{
		"name":     "Test Joe",
		"email":    "joe@example.com",
		"password": "joeTesting067!",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["response"] != "user created" {
		t.Errorf("response = %v", body["response"])
	}
	if body["user_id"] == nil {
		t.Error("response has no user_id")
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["name"] != "Test Joe" || user["email"] != "joe@example.com" {
		t.Errorf("user summary = %v", body["user"])
	}

	stored, err := store.New(app.db).GetUserByEmail(t.Context(), "joe@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.PasswordHash == "joeTesting067!" || stored.PasswordHash == "" {
		t.Error("password stored unhashed")
	}
	if len(stored.Salt) != 8 {
		t.Errorf("salt length = %d, want 8", len(stored.Salt))
	}
	if stored.AccessLevel != "user" || stored.Flag != "blue" {
		t.Errorf("defaults = %q/%q, want user/blue", stored.AccessLevel, stored.Flag)
	}

	app.requireEvent(t, "LOG_EVENT_SIGNUP", "LES_01", "joe@example.com")
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]string
		wantStatus int
		wantCode   string
		wantEvent  string
	}{
		{
			name:       "missing name",
			payload:    map[string]string{"email": "a@example.com", "password": "joeTesting067!"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
			wantEvent:  "LES_02",
		},
		{
			name:       "short password",
			payload:    map[string]string{"name": "Joe", "email": "a@example.com", "password": "joe1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
			wantEvent:  "LES_02",
		},
		{
			name:       "bad email",
			payload:    map[string]string{"name": "Joe", "email": "not-an-email", "password": "joeTesting067!"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
			wantEvent:  "LES_02",
		},
		{
			name:       "weak password",
			payload:    map[string]string{"name": "Joe", "email": "a@example.com", "password": "xPassword9!"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "policy_error",
			wantEvent:  "LES_03",
		},
		{
			name:       "repeated characters",
			payload:    map[string]string{"name": "Joe", "email": "a@example.com", "password": "aaaaGood067!"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "policy_error",
			wantEvent:  "LES_03",
		},
		{
			name:       "html in name",
			payload:    map[string]string{"name": "<script>x</script>", "email": "a@example.com", "password": "joeTesting067!"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
			wantEvent:  "LES_05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			rec := app.post(t, "/api/account/signup", tt.payload)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["error"] != tt.wantCode {
				t.Errorf("error code = %v, want %s", body["error"], tt.wantCode)
			}
			app.requireEvent(t, "LOG_EVENT_SIGNUP", tt.wantEvent, "")

			count, err := store.New(app.db).CountUsers(t.Context())
			if err != nil {
				t.Fatalf("CountUsers() error: %v", err)
			}
			if count != 0 {
				t.Errorf("rejected signup persisted a user")
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")

	rec := app.post(t, "/api/account/signup", map[string]string{
		"name": "Another Joe", "email": "joe@example.com", "password": "otherGood067!",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "conflict" {
		t.Errorf("error code = %v, want conflict", body["error"])
	}
	app.requireEvent(t, "LOG_EVENT_SIGNUP", "LES_04", "joe@example.com")
}

func TestLoginSuccess(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")

	rec := app.post(t, "/api/account/login", map[string]string{
		"email": "joe@example.com", "password": "joeTesting067!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["response"] != "login successful" {
		t.Errorf("response = %v", body["response"])
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("login set no session cookie")
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_01", "joe@example.com")
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")

	rec := app.post(t, "/api/account/login", map[string]string{
		"email": "joe@example.com", "password": "wrongGuess067!",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "auth_error" {
		t.Errorf("error code = %v, want auth_error", body["error"])
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_04", "joe@example.com")
}

func TestLoginConcurrentFailuresEachLogged(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")

	const attempts = 2
	payload := []byte(`{"email":"joe@example.com","password":"wrongGuess067!"}`)

	var wg sync.WaitGroup
	codes := make([]int, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/account/login", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			app.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusUnauthorized {
			t.Errorf("attempt %d: status = %d, want 401", i, code)
		}
	}

	// Each failed attempt gets its own event row.
	var logins int
	for _, e := range app.lastEvents(t, 10) {
		if e.Activity == string(eventlog.ActivityLogin) {
			logins++
			if e.Code != string(eventlog.CodeLoginWrongPassword) {
				t.Errorf("login event code = %s, want %s", e.Code, eventlog.CodeLoginWrongPassword)
			}
		}
	}
	if logins != attempts {
		t.Errorf("login event rows = %d, want %d", logins, attempts)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	app := newTestApp(t)

	rec := app.post(t, "/api/account/login", map[string]string{
		"email": "ghost@example.com", "password": "whoGoesThere1!",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// Same client-facing error as a wrong password.
	if body := decodeBody(t, rec); body["message"] != "invalid credentials" {
		t.Errorf("message = %v, want invalid credentials", body["message"])
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_02", "ghost@example.com")
}

func TestLoginBlockedAccount(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")

	user, err := store.New(app.db).GetUserByEmail(t.Context(), "joe@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}
	if err := store.New(app.db).SetUserBlocked(t.Context(), store.SetUserBlockedParams{
		Blocked: true, UpdatedAt: user.UpdatedAt, ID: user.ID,
	}); err != nil {
		t.Fatalf("SetUserBlocked() error: %v", err)
	}

	rec := app.post(t, "/api/account/login", map[string]string{
		"email": "joe@example.com", "password": "joeTesting067!",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_03", "joe@example.com")
}

func TestLoginEscalationAndLockout(t *testing.T) {
	app := newTestAppWithThreshold(t, 3)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")

	wrong := map[string]string{"email": "joe@example.com", "password": "wrongGuess067!"}

	// First failures stay informational.
	for i := 0; i < 2; i++ {
		rec := app.post(t, "/api/account/login", wrong)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("failure %d status = %d, want 401", i+1, rec.Code)
		}
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_04", "joe@example.com")

	// The threshold failure escalates and locks the account.
	rec := app.post(t, "/api/account/login", wrong)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("threshold failure status = %d, want 429 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["error"] != "rate_limit" || body["message"] == "" {
		t.Errorf("429 envelope = %v", body)
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_05", "joe@example.com")

	// Even the correct password is rejected while locked.
	rec = app.post(t, "/api/account/login", map[string]string{
		"email": "joe@example.com", "password": "joeTesting067!",
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("locked login status = %d, want 429", rec.Code)
	}
	app.requireEvent(t, "LOG_EVENT_LOGIN", "LEL_06", "joe@example.com")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")
	cookie := app.login(t, "joe@example.com", "joeTesting067!")

	rec := app.post(t, "/api/account/logout", map[string]string{}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The old session must no longer grant access.
	rec = app.post(t, "/api/account/name", map[string]string{"name": "New Name"}, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("post-logout status = %d, want 401", rec.Code)
	}
}

func TestLogoutRequiresSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.post(t, "/api/account/logout", map[string]string{})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateName(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")
	cookie := app.login(t, "joe@example.com", "joeTesting067!")

	rec := app.post(t, "/api/account/name", map[string]string{"name": "Renamed Joe"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	user, err := store.New(app.db).GetUserByEmail(t.Context(), "joe@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}
	if user.Name != "Renamed Joe" {
		t.Errorf("name = %q, want Renamed Joe", user.Name)
	}
}

func TestUpdateNameRejectsHTML(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")
	cookie := app.login(t, "joe@example.com", "joeTesting067!")

	rec := app.post(t, "/api/account/name", map[string]string{"name": "<b>Joe</b>"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")
	cookie := app.login(t, "joe@example.com", "joeTesting067!")

	before, err := store.New(app.db).GetUserByEmail(t.Context(), "joe@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}

	rec := app.post(t, "/api/account/password", map[string]string{
		"old_password": "joeTesting067!", "new_password": "freshSecret42?",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	after, err := store.New(app.db).GetUserByEmail(t.Context(), "joe@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}
	if after.Salt == before.Salt {
		t.Error("salt not regenerated on password change")
	}
	if after.PasswordHash == before.PasswordHash {
		t.Error("password hash unchanged")
	}

	// Old credentials out, new ones in.
	rec = app.post(t, "/api/account/login", map[string]string{
		"email": "joe@example.com", "password": "joeTesting067!",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old password login status = %d, want 401", rec.Code)
	}
	app.login(t, "joe@example.com", "freshSecret42?")
}

func TestChangePasswordChecks(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Test Joe", "joe@example.com", "joeTesting067!")
	cookie := app.login(t, "joe@example.com", "joeTesting067!")

	tests := []struct {
		name    string
		payload map[string]string
		want    int
	}{
		{
			"wrong old password",
			map[string]string{"old_password": "notIt12345!", "new_password": "freshSecret42?"},
			http.StatusUnauthorized,
		},
		{
			"weak new password",
			map[string]string{"old_password": "joeTesting067!", "new_password": "xPassword9!"},
			http.StatusUnprocessableEntity,
		},
		{
			"short new password",
			map[string]string{"old_password": "joeTesting067!", "new_password": "joe1"},
			http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.post(t, "/api/account/password", tt.payload, cookie)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	app := newTestApp(t)

	rec := app.post(t, "/api/account/signup", "this is not an object")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
