// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

// Injected via ldflags at build time.
var (
	Version   = "dev"     // semantic version from git tags (e.g., "v1.2.3")
	GitCommit = "unknown" // short git commit hash
	BuildTime = "unknown" // build timestamp in RFC3339 format
)

// Info bundles the build metadata for logging and the health endpoint.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}
