// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/gatehouse-go/internal/auth"
	"github.com/olegiv/gatehouse-go/internal/model"
)

// DefaultAdminName is the display name for the bootstrap admin account.
const DefaultAdminName = "Administrator"

// Seed creates the bootstrap super-admin account if it does not exist.
// Credentials come from configuration, never from hard-coded defaults.
func Seed(ctx context.Context, db *sql.DB, email, password string, peppers []string) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	now := time.Now()
	salt := auth.GenerateSalt()
	pepper := auth.PepperForMonth(peppers, now.Month())

	passwordHash, err := auth.HashPassword(password, salt, pepper)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Name:         DefaultAdminName,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		AccessLevel:  model.AccessSuperAdmin,
		Flag:         model.FlagBlue,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created bootstrap admin user", "id", user.ID, "email", user.Email)

	return nil
}
