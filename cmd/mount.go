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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goceph/cephfs-cache/cfg"
	"github.com/goceph/cephfs-cache/internal/logger"
	"github.com/goceph/cephfs-cache/internal/mds"
	"github.com/goceph/cephfs-cache/internal/telemetry"
	"github.com/goceph/cephfs-cache/internal/vfsshim"
)

// MountDeps are the external collaborators a real mount needs: a host VFS
// binding (internal/vfsshim.HostVFS) and an MDS request/reply transport
// (internal/mds.Client). Both are narrow collaborator contracts that
// internal/cache consumes but never implements (spec §1: "the generic VFS
// layer it plugs into" and the MDS wire protocol are out of scope for this
// module), so runMount asks for them via a constructor hook rather than
// building either itself.
type MountDeps struct {
	VFS     vfsshim.HostVFS
	MDS     mds.Client
	Metrics telemetry.MetricHandle
}

// NewMountDeps builds the collaborators for a real mount. The default
// implementation always fails: wiring a HostVFS to an actual kernel FUSE
// channel and an mds.Client to a live Ceph monitor session is deliberately
// left to whatever binary links this package in and knows how to reach
// the cluster. Override this var before calling Execute to mount for real;
// tests override it with fakes.
var NewMountDeps = func(ctx context.Context, c *cfg.Config, metricHandle telemetry.MetricHandle) (MountDeps, error) {
	return MountDeps{}, errors.New("cephfs-cache: no VFS/MDS transport wired; set cmd.NewMountDeps before calling Execute")
}

func severityToLevel(sev cfg.LogSeverity) slog.Level {
	switch sev {
	case cfg.TraceLogSeverity:
		return logger.LevelTrace
	case cfg.DebugLogSeverity:
		return logger.LevelDebug
	case cfg.InfoLogSeverity:
		return logger.LevelInfo
	case cfg.WarningLogSeverity:
		return logger.LevelWarn
	case cfg.ErrorLogSeverity:
		return logger.LevelError
	case cfg.OffLogSeverity:
		return logger.LevelOff
	default:
		return logger.LevelInfo
	}
}

func setupLogging(c *cfg.Config) error {
	rotate := logger.RotateConfig{
		MaxFileSizeMB:   c.Logging.LogRotate.MaxFileSizeMB,
		BackupFileCount: c.Logging.LogRotate.BackupFileCount,
		Compress:        c.Logging.LogRotate.Compress,
	}
	level := severityToLevel(c.Logging.Severity)

	if c.Logging.FilePath != "" {
		if err := logger.InitLogFile(string(c.Logging.FilePath), c.Logging.Format, level, rotate); err != nil {
			return fmt.Errorf("initializing log file: %w", err)
		}
	} else {
		logger.SetLogFormat(c.Logging.Format)
	}
	logger.SetLevel(level)
	return nil
}

// setupMetrics returns the handle runMount's collaborators should record
// operation counts and latencies against, plus a shutdown func to run on
// exit. Absent --metrics-enabled it hands back a NoopMetrics so callers
// never need to nil-check.
func setupMetrics(c *cfg.Config) (telemetry.MetricHandle, func(), error) {
	if !c.Metrics.Enabled {
		return telemetry.NoopMetrics{}, func() {}, nil
	}

	handle, mux, shutdown, err := telemetry.SetupPrometheusExporter()
	if err != nil {
		return nil, nil, fmt.Errorf("setting up prometheus exporter: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", c.Metrics.PrometheusPort),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()

	return handle, func() {
		_ = srv.Close()
		_ = shutdown()
	}, nil
}

// runMount is rootCmd's RunE body: it bootstraps logging and metrics from
// c, asks NewMountDeps for the VFS/MDS collaborators, and blocks until the
// process receives an interrupt or the mount's context is cancelled.
func runMount(ctx context.Context, c *cfg.Config) error {
	if err := setupLogging(c); err != nil {
		return err
	}

	metricHandle, shutdownMetrics, err := setupMetrics(c)
	if err != nil {
		return err
	}
	defer shutdownMetrics()

	if len(c.Monitors) == 0 {
		return errors.New("at least one monitor address is required (--monitors)")
	}

	logger.Infof("mounting cephfs at %s via monitors %s", c.MountPoint, strings.Join(c.Monitors, ","))

	deps, err := NewMountDeps(ctx, c, metricHandle)
	if err != nil {
		return err
	}
	_ = deps // the fill-inode / trace-assimilation loop driving these lives in the caller's FUSE dispatch, not here.

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("mounted; waiting for shutdown signal")
	<-ctx.Done()
	logger.Infof("shutting down")

	return nil
}
