// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// LogSeverity mirrors the handful of severities internal/logger knows
// about; "OFF" disables logging entirely.
type LogSeverity string

const (
	TraceLogSeverity   LogSeverity = "TRACE"
	DebugLogSeverity   LogSeverity = "DEBUG"
	InfoLogSeverity    LogSeverity = "INFO"
	WarningLogSeverity LogSeverity = "WARNING"
	ErrorLogSeverity   LogSeverity = "ERROR"
	OffLogSeverity     LogSeverity = "OFF"
)

var validSeverities = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	level := LogSeverity(strings.ToUpper(string(text)))
	if !slices.Contains(validSeverities, string(level)) {
		return fmt.Errorf("invalid log severity: %s, must be one of %v", text, validSeverities)
	}
	*l = level
	return nil
}

// ResolvedPath is an absolute filesystem path. Symlinks in it are not
// resolved.
type ResolvedPath string

func (p *ResolvedPath) UnmarshalText(text []byte) error {
	if string(text) == "" {
		*p = ""
		return nil
	}
	resolved, err := ResolvePath(string(text))
	if err != nil {
		return err
	}
	*p = resolved
	return nil
}

// ResolvePath canonicalizes path, making it absolute. cmd/ calls this
// directly on command-line positional arguments (mount point, config file
// path) before they ever reach a flag/viper binding.
func ResolvePath(path string) (ResolvedPath, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", path, err)
	}
	return ResolvedPath(abs), nil
}

// MilliDuration is a config-file-friendly millisecond duration, used for
// lease durations (the MDS reply's lease.duration_ms, spec §4.3).
type MilliDuration int64

func (m *MilliDuration) UnmarshalText(text []byte) error {
	var v int64
	if _, err := fmt.Sscanf(string(text), "%d", &v); err != nil {
		return fmt.Errorf("invalid millisecond duration %q: %w", text, err)
	}
	if v < 0 {
		return fmt.Errorf("millisecond duration must be non-negative: %d", v)
	}
	*m = MilliDuration(v)
	return nil
}
