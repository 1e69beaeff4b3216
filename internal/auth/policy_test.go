// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "testing"

func TestIsGoodPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"strong mixed password", "joeTesting067!", true},
		{"three repeats allowed", "aaabcdefg1!", true},
		{"four repeats rejected", "aaaabcdefg1!", false},
		{"four repeats in the middle", "xyzaaaa1!", false},
		{"common password substring", "xPassword9!", false},
		{"common password exact", "qwerty", false},
		{"long password bypasses common check", "xPassword9!bypas", true},
		{"case-insensitive common check", "LetMeIn99", false},
		{"empty password has no runs", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGoodPassword(tt.password); got != tt.want {
				t.Errorf("IsGoodPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestHasLongRun(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"abc", false},
		{"aaab", false},
		{"aaaab", true},
		{"baaaa", true},
		{"ababab", false},
		{"aaabaaa", false},
	}

	for _, tt := range tests {
		if got := hasLongRun(tt.s); got != tt.want {
			t.Errorf("hasLongRun(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
