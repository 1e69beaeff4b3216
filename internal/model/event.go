// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "log/slog"

// Event types. SUSPICIOUS marks events worth a moderator's attention even
// when their numeric level is below warning.
const (
	EventTypeInfo       = "INFO"
	EventTypeWarn       = "WARN"
	EventTypeSuspicious = "SUSPICIOUS"
)

// Event levels mirror the standard slog numeric severity scale so rows can
// be filtered with the same thresholds as process logs.
const (
	EventLevelInfo  = int64(slog.LevelInfo)
	EventLevelWarn  = int64(slog.LevelWarn)
	EventLevelError = int64(slog.LevelError)
)
