// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "strings"

// maxRun is the longest allowed run of a single repeated character.
const maxRun = 3

// commonPasswordCheckLimit is the maximum password length subjected to the
// common-password substring check. Longer passwords bypass it; this is a
// documented quirk of the policy, kept intentionally.
const commonPasswordCheckLimit = 15

// IsGoodPassword reports whether a password passes the strength policy:
// no character repeated four or more times in a row, and no common-password
// substring for passwords of 15 characters or fewer. No side effects.
func IsGoodPassword(password string) bool {
	if hasLongRun(password) {
		return false
	}

	if len(password) <= commonPasswordCheckLimit {
		lowered := strings.ToLower(password)
		for _, common := range commonPasswords {
			if strings.Contains(lowered, common) {
				return false
			}
		}
	}

	return true
}

// hasLongRun reports whether any character repeats more than maxRun times
// consecutively. A loop rather than a regexp: RE2 has no backreferences.
func hasLongRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run > maxRun {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
