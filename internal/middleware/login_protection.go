// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"sync"
	"time"
)

// LoginProtection tracks consecutive failed login attempts per account.
// Past the threshold, failures escalate in log severity and the account is
// temporarily locked.
type LoginProtection struct {
	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	threshold       int           // consecutive failures before escalation and lockout
	lockoutDuration time.Duration // base lockout, doubles with each lockout
	attemptWindow   time.Duration // window to count failed attempts
}

// loginAttempt tracks failed login attempts for one account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// Threshold is the number of consecutive failures before lockout (default 5).
	Threshold int
	// LockoutDuration is the base lockout time, doubles with each lockout (default 15 minutes).
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default 15 minutes).
	AttemptWindow time.Duration
}

// NewLoginProtection creates a login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	lp := &LoginProtection{
		failedAttempts:  make(map[string]*loginAttempt),
		threshold:       cfg.Threshold,
		lockoutDuration: cfg.LockoutDuration,
		attemptWindow:   cfg.AttemptWindow,
	}

	go lp.cleanup()

	return lp
}

// Threshold returns the configured consecutive-failure threshold.
func (lp *LoginProtection) Threshold() int {
	return lp.threshold
}

// IsLocked checks whether an account is currently locked.
// Returns (locked, remainingTime).
func (lp *LoginProtection) IsLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[email]
	lp.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}
	if time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}
	return false, 0
}

// RecordFailure records a failed login attempt. Returns the consecutive
// failure count and, if the account is now locked, the lock duration.
func (lp *LoginProtection) RecordFailure(email string) (count int, locked bool, lockFor time.Duration) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := lp.failedAttempts[email]

	if !exists {
		lp.failedAttempts[email] = &loginAttempt{count: 1, firstFailed: now}
		return 1, false, 0
	}

	// Reset the counter once the window has passed.
	if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 1
		attempt.firstFailed = now
		return 1, false, 0
	}

	attempt.count++

	if attempt.count >= lp.threshold {
		// Exponential backoff on repeated lockouts, capped at 24 hours.
		lockDuration := lp.lockoutDuration
		for i := 0; i < attempt.lockouts; i++ {
			lockDuration *= 2
			if lockDuration > 24*time.Hour {
				lockDuration = 24 * time.Hour
				break
			}
		}

		attempt.lockedUntil = now.Add(lockDuration)
		attempt.lockouts++
		escalated := attempt.count
		attempt.count = 0

		slog.Warn("account locked after repeated failed logins",
			"email", email,
			"lockouts", attempt.lockouts,
			"duration", lockDuration,
		)

		return escalated, true, lockDuration
	}

	return attempt.count, false, 0
}

// RecordSuccess clears failed-attempt tracking for an account.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	delete(lp.failedAttempts, email)
}

// cleanup periodically removes stale entries.
func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		lp.attemptsMu.Lock()
		for email, attempt := range lp.failedAttempts {
			if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
				delete(lp.failedAttempts, email)
			}
		}
		lp.attemptsMu.Unlock()
	}
}
