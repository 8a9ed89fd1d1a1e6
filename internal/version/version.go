// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Injected at build time via ldflags, e.g.
//
//	go build -ldflags "-X github.com/pursuegen/pursue-go/internal/version.Version=v1.2.0"
var (
	Version   = "dev"     // Semantic version from git tags (e.g., "v1.2.0")
	GitCommit = "unknown" // Short git commit hash
	BuildTime = "unknown" // Build timestamp in RFC3339 format
)

// String returns the full version line printed by -version flags.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}
