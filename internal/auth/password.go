// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides the password pipeline: strength policy, per-user
// salt generation, monthly pepper selection, and bcrypt hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes salt + password + pepper with bcrypt at the default
// cost. Only the hash and the per-user salt are stored; the pepper is
// re-derived from the account's creation month at verification time.
func HashPassword(password, salt, pepper string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(salt+password+pepper), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a candidate password against a stored bcrypt hash,
// recomputing the salted input. bcrypt performs the comparison in constant
// time. Returns (false, nil) on a plain mismatch; errors indicate a
// malformed hash.
func CheckPassword(password, salt, pepper, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(salt+password+pepper))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("comparing password hash: %w", err)
}

// PepperForMonth selects the pepper for a given month from the configured
// rotation. The index is derived from the account's creation month, so
// verification selects the same pepper the hash was created with.
func PepperForMonth(peppers []string, m time.Month) string {
	if len(peppers) == 0 {
		return ""
	}
	return peppers[(int(m)-1)%len(peppers)]
}
