// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	if !strings.Contains(s, Version) {
		t.Errorf("String() = %q, missing version %q", s, Version)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("String() = %q, missing commit %q", s, GitCommit)
	}
}

func TestDefaults(t *testing.T) {
	// Before ldflags injection the placeholders apply.
	if Version == "" || GitCommit == "" || BuildTime == "" {
		t.Error("version placeholders must not be empty")
	}
}
