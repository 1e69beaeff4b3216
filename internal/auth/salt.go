// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaltLength is the fixed length of generated salts.
const SaltLength = 8

// Fixed offsets into the 32-character hex text of a UUID.
var saltHexOffsets = [4]int{0, 9, 17, 25}

// GenerateSalt produces an 8-character opaque salt. The characters come from
// mixed sources: one digit from the current Unix timestamp, two punctuation
// characters mapped from the first byte of a random UUID into two ASCII
// ranges, four characters at fixed offsets of a second UUID's hex text, and
// one character at a random offset of the same text. The result is shuffled
// before being returned.
func GenerateSalt() string {
	chars := make([]byte, 0, SaltLength)

	chars = append(chars, byte('0'+time.Now().Unix()%10))

	first := uuid.New()
	// '!'..'/' (33-47) and ':'..'@' (58-64)
	chars = append(chars, '!'+first[0]%15, ':'+first[0]%7)

	hexText := strings.ReplaceAll(uuid.New().String(), "-", "")
	for _, off := range saltHexOffsets {
		chars = append(chars, hexText[off])
	}
	chars = append(chars, hexText[rand.IntN(len(hexText))])

	rand.Shuffle(len(chars), func(i, j int) {
		chars[i], chars[j] = chars[j], chars[i]
	})

	return string(chars)
}
