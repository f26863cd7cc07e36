// Copyright 2025 Google LLC
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

// Package logger provides the process-wide leveled logger used by
// internal/cache and cmd/. It is deliberately independent of the fragment
// tree / lease engine so that those packages never import cfg directly.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity levels, one notch finer than slog's builtin four so that trace
// level (very chatty trace-assimilation logging) can be turned on
// separately from debug.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(16)
)

var severityNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

// RotateConfig mirrors the lumberjack knobs held in cfg.LoggingConfig's
// LogRotate block (set from the config file; there are no flags for them).
type RotateConfig struct {
	MaxFileSizeMB   int
	BackupFileCount int
	Compress        bool
}

func DefaultRotateConfig() RotateConfig {
	return RotateConfig{MaxFileSizeMB: 512, BackupFileCount: 10, Compress: false}
}

type loggerFactory struct {
	file         *lumberjack.Logger
	asyncFile    *AsyncLogger
	sysWriter    io.Writer
	format       string
	level        slog.Level
	rotateConfig RotateConfig
	programLevel *slog.LevelVar
}

var defaultLoggerFactory = &loggerFactory{
	format:       "text",
	level:        LevelInfo,
	rotateConfig: DefaultRotateConfig(),
	programLevel: new(slog.LevelVar),
}

var defaultLogger = slog.New(
	defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, defaultLoggerFactory.programLevel, ""),
)

// createJsonOrTextHandler builds the slog.Handler for the configured
// format, writing severity under the name this repo's log scrapers expect
// ("severity", not slog's default "level").
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			a.Key = "severity"
			if name, ok := severityNames[a.Value.Any().(slog.Level)]; ok {
				a.Value = slog.StringValue(name)
			}
		case slog.MessageKey:
			if prefix != "" {
				a.Value = slog.StringValue(prefix + a.Value.String())
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replace}

	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// InitLogFile points the default logger at a rotated file instead of
// stderr. Called once during mount startup after cfg.Config is parsed.
func InitLogFile(filePath string, format string, level slog.Level, rotate RotateConfig) error {
	if filePath == "" {
		return nil
	}

	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotate.MaxFileSizeMB,
		MaxBackups: rotate.BackupFileCount,
		Compress:   rotate.Compress,
	}
	// Trace-assimilation and lease-renewal logging sits on the hot path
	// (spec §4.4/§4.3); route it through AsyncLogger so a slow disk under
	// log rotation never stalls the caller.
	async := NewAsyncLogger(lj, asyncLogBufferSize)

	if defaultLoggerFactory.asyncFile != nil {
		_ = defaultLoggerFactory.asyncFile.Close()
	}

	defaultLoggerFactory.file = lj
	defaultLoggerFactory.asyncFile = async
	defaultLoggerFactory.sysWriter = nil
	defaultLoggerFactory.format = format
	defaultLoggerFactory.level = level
	defaultLoggerFactory.rotateConfig = rotate
	defaultLoggerFactory.programLevel.Set(level)

	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(async, defaultLoggerFactory.programLevel, ""))

	return nil
}

// asyncLogBufferSize bounds how many pending log records InitLogFile's
// AsyncLogger buffers before it starts dropping them under sustained load.
const asyncLogBufferSize = 1024

// SetLogFormat switches between "text" and "json" for whatever sink is
// currently configured.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format

	var w io.Writer = os.Stderr
	if defaultLoggerFactory.asyncFile != nil {
		w = defaultLoggerFactory.asyncFile
	}

	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, defaultLoggerFactory.programLevel, ""))
}

// SetLevel changes the effective severity of the default logger without
// rebuilding its handler.
func SetLevel(level slog.Level) {
	defaultLoggerFactory.level = level
	defaultLoggerFactory.programLevel.Set(level)
}

// SLogger returns the process-wide *slog.Logger, for packages (such as
// internal/cache) that take a logger as an explicit dependency rather than
// calling the package-level Tracef/Debugf/... helpers.
func SLogger() *slog.Logger {
	return defaultLogger
}

func Tracef(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, format, args...) }

func logf(level slog.Level, format string, args ...any) {
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}
