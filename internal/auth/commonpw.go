// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

// commonPasswords is the fixed corpus of most-used passwords, lowercase.
// Candidate passwords are lowercased before the substring check.
var commonPasswords = []string{
	"123456",
	"12345678",
	"123456789",
	"password",
	"passw0rd",
	"password1",
	"qwerty",
	"qwertyuiop",
	"abc123",
	"111111",
	"iloveyou",
	"admin123",
	"letmein",
	"welcome",
	"monkey",
	"dragon",
	"sunshine",
	"princess",
	"football",
	"baseball",
	"superman",
	"batman",
	"shadow",
	"master",
	"michael",
	"jennifer",
	"charlie",
	"jordan",
	"freedom",
	"whatever",
	"trustno1",
	"starwars",
	"hello123",
	"zaq12wsx",
	"1q2w3e4r",
	"654321",
	"666666",
	"121212",
	"qazwsx",
	"asdfgh",
	"zxcvbnm",
	"pokemon",
	"computer",
	"internet",
	"secret",
	"login123",
	"access",
	"mustang",
	"ginger",
	"cheese",
}
