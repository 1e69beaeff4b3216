// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/gatehouse-go/internal/store"
)

// TestPeppers is a deterministic twelve-entry pepper list for tests.
var TestPeppers = []string{
	"pep-jan", "pep-feb", "pep-mar", "pep-apr", "pep-may", "pep-jun",
	"pep-jul", "pep-aug", "pep-sep", "pep-oct", "pep-nov", "pep-dec",
}

// TestDB creates a migrated temporary database that is removed with the
// test's temp directory.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestUser inserts a user with precomputed credentials and returns the
// stored row.
func CreateTestUser(t *testing.T, db *sql.DB, name, email, passwordHash, salt string) store.User {
	t.Helper()

	now := time.Now()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		AccessLevel:  "user",
		Flag:         "blue",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
