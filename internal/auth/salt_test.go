// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "testing"

func TestGenerateSaltLength(t *testing.T) {
	for i := 0; i < 100; i++ {
		salt := GenerateSalt()
		if len(salt) != SaltLength {
			t.Fatalf("GenerateSalt() length = %d, want %d (salt %q)", len(salt), SaltLength, salt)
		}
	}
}

func TestGenerateSaltPrintable(t *testing.T) {
	for i := 0; i < 100; i++ {
		salt := GenerateSalt()
		for j := 0; j < len(salt); j++ {
			if salt[j] < '!' || salt[j] > '~' {
				t.Fatalf("GenerateSalt() produced non-printable byte %#x in %q", salt[j], salt)
			}
		}
	}
}

func TestGenerateSaltVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateSalt()] = true
	}
	// Collisions are possible but 50 identical salts mean a broken source.
	if len(seen) < 2 {
		t.Errorf("GenerateSalt() produced %d distinct salts out of 50", len(seen))
	}
}
