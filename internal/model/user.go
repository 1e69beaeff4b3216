// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain enums and small shared types: user access
// levels, moderation flags, and event log levels and types.
package model

// User access levels.
const (
	AccessSuperAdmin = "super_admin"
	AccessAdmin      = "admin"
	AccessUser       = "user"
)

// ValidAccessLevels contains all valid user access levels.
var ValidAccessLevels = []string{AccessSuperAdmin, AccessAdmin, AccessUser}

// IsValidAccessLevel checks if an access level is valid.
func IsValidAccessLevel(level string) bool {
	for _, l := range ValidAccessLevels {
		if l == level {
			return true
		}
	}
	return false
}

// IsStaff reports whether an access level grants moderation rights.
func IsStaff(level string) bool {
	return level == AccessAdmin || level == AccessSuperAdmin
}

// Moderation flag colors. A flag is an admin-visible marker of suspected
// abuse, not an enforcement action.
const (
	FlagRed    = "red"
	FlagYellow = "yellow"
	FlagPurple = "purple"
	FlagBlue   = "blue"
)

// ValidFlags contains all valid moderation flag colors.
var ValidFlags = []string{FlagRed, FlagYellow, FlagPurple, FlagBlue}

// IsValidFlag checks if a flag color is valid.
func IsValidFlag(flag string) bool {
	for _, f := range ValidFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// UserSummary is the public projection of a user returned by the API.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
