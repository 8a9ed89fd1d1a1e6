// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginProtection combines per-IP rate limiting with per-account lockout
// for the sign-in endpoint.
type LoginProtection struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	attempts map[string]*loginAttempt

	ipRate      rate.Limit
	ipBurst     int
	maxFailures int
	lockout     time.Duration
	window      time.Duration
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig tunes the protection thresholds.
type LoginProtectionConfig struct {
	// IPRateLimit is sign-in requests per second per IP.
	IPRateLimit float64
	// IPBurst is the burst size for the IP limiter.
	IPBurst int
	// MaxFailedAttempts locks the account once reached.
	MaxFailedAttempts int
	// LockoutDuration is the base lockout, doubling per repeat lockout.
	LockoutDuration time.Duration
	// AttemptWindow bounds how long failures count against an account.
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance and starts its
// cleanup loop.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	lp := &LoginProtection{
		limiters:    make(map[string]*rate.Limiter),
		attempts:    make(map[string]*loginAttempt),
		ipRate:      rate.Limit(cfg.IPRateLimit),
		ipBurst:     cfg.IPBurst,
		maxFailures: cfg.MaxFailedAttempts,
		lockout:     cfg.LockoutDuration,
		window:      cfg.AttemptWindow,
	}
	go lp.cleanupLoop()
	return lp
}

// AllowIP reports whether a sign-in attempt from this IP may proceed.
func (lp *LoginProtection) AllowIP(ip string) bool {
	lp.mu.Lock()
	limiter, ok := lp.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(lp.ipRate, lp.ipBurst)
		lp.limiters[ip] = limiter
	}
	lp.mu.Unlock()
	return limiter.Allow()
}

// IsLocked reports whether the account is currently locked out.
func (lp *LoginProtection) IsLocked(email string) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	a, ok := lp.attempts[email]
	return ok && time.Now().Before(a.lockedUntil)
}

// RecordFailure registers a failed sign-in and locks the account once
// the threshold is reached. Repeat lockouts double in length.
func (lp *LoginProtection) RecordFailure(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	a, ok := lp.attempts[email]
	if !ok || now.Sub(a.firstFailed) > lp.window {
		a = &loginAttempt{firstFailed: now}
		lp.attempts[email] = a
	}
	a.count++

	if a.count >= lp.maxFailures {
		duration := lp.lockout << a.lockouts
		a.lockedUntil = now.Add(duration)
		a.lockouts++
		a.count = 0
		a.firstFailed = now
	}
}

// RecordSuccess clears the failure state for an account.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.mu.Lock()
	delete(lp.attempts, email)
	lp.mu.Unlock()
}

func (lp *LoginProtection) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		lp.mu.Lock()
		for email, a := range lp.attempts {
			if now.After(a.lockedUntil) && now.Sub(a.firstFailed) > lp.window {
				delete(lp.attempts, email)
			}
		}
		// IP limiters are cheap; reset the map wholesale to bound growth.
		if len(lp.limiters) > 10000 {
			lp.limiters = make(map[string]*rate.Limiter)
		}
		lp.mu.Unlock()
	}
}
