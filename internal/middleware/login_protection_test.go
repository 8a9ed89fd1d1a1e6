// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"testing"
	"time"
)

func TestLoginProtection_AccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Hour,
	})

	email := "leader@example.com"
	if lp.IsLocked(email) {
		t.Fatal("account should start unlocked")
	}

	lp.RecordFailure(email)
	lp.RecordFailure(email)
	if lp.IsLocked(email) {
		t.Fatal("account should not lock before the threshold")
	}

	lp.RecordFailure(email)
	if !lp.IsLocked(email) {
		t.Fatal("account should lock at the threshold")
	}
}

func TestLoginProtection_SuccessClears(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 3})

	email := "leader@example.com"
	lp.RecordFailure(email)
	lp.RecordFailure(email)
	lp.RecordSuccess(email)

	lp.RecordFailure(email)
	lp.RecordFailure(email)
	if lp.IsLocked(email) {
		t.Error("success should have reset the failure count")
	}
}

func TestLoginProtection_IPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 0.001, // effectively no refill during the test
		IPBurst:     3,
	})

	ip := "203.0.113.9"
	for i := 0; i < 3; i++ {
		if !lp.AllowIP(ip) {
			t.Fatalf("request %d should be within burst", i+1)
		}
	}
	if lp.AllowIP(ip) {
		t.Error("request beyond burst should be limited")
	}
	if !lp.AllowIP("198.51.100.7") {
		t.Error("a different IP should not be limited")
	}
}
