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

// GENERATED CODE - DO NOT EDIT MANUALLY.

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the parsed form of every mount option this client accepts. It is
// bound from pflag flags and an optional YAML config file via viper; a flag
// set on the command line takes precedence over the config file. Environment
// variables are not bound.
type Config struct {
	Monitors []string `yaml:"monitors"`

	MountPoint ResolvedPath `yaml:"mount-point"`

	Debug DebugConfig `yaml:"debug"`

	Logging LoggingConfig `yaml:"logging"`

	Cache CacheConfig `yaml:"cache"`

	Metrics MetricsConfig `yaml:"metrics"`
}

type DebugConfig struct {
	// ExitOnInvariantViolation holds the --debug-invariants setting. No
	// code in this module reads it; invariant checking is not switched by it.
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`

	// LogMutex holds the --debug-mutex setting. No code in this module
	// reads it; no mutex hold times are measured or logged.
	LogMutex bool `yaml:"log-mutex"`
}

type LogRotateConfig struct {
	MaxFileSizeMB   int  `yaml:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count"`
	Compress        bool `yaml:"compress"`
}

type LoggingConfig struct {
	Severity  LogSeverity     `yaml:"severity"`
	Format    string          `yaml:"format"`
	FilePath  ResolvedPath    `yaml:"file-path"`
	LogRotate LogRotateConfig `yaml:"log-rotate"`
}

// CacheConfig holds the tunables for the Lease Engine (spec §4.3).
type CacheConfig struct {
	// InodeLeaseDuration holds a per-inode lease duration. It is checked
	// by ValidateConfig only; the Lease Engine takes each lease's duration
	// from the MDS reply and does not read this field.
	InodeLeaseDuration MilliDuration `yaml:"inode-lease-duration-ms"`

	// DentryLeaseDuration is the analogous setting for per-dentry leases,
	// likewise checked by ValidateConfig only.
	DentryLeaseDuration MilliDuration `yaml:"dentry-lease-duration-ms"`

	// CapReleaseDelaySecs holds a cap-release delay in seconds. It is
	// checked by ValidateConfig only; no cap-release worker reads it.
	CapReleaseDelaySecs int `yaml:"cap-release-delay-secs"`
}

type MetricsConfig struct {
	Enabled        bool `yaml:"enabled"`
	PrometheusPort int  `yaml:"prometheus-port"`
}

// BindFlags registers every flag this client accepts on flagSet and binds
// each to its viper key.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.StringSlice("monitors", nil, "Comma-separated list of MDS monitor addresses.")
	if err := viper.BindPFlag("monitors", flagSet.Lookup("monitors")); err != nil {
		return err
	}

	flagSet.Bool("debug-invariants", false, "Exit when internal cache invariants are violated.")
	if err := viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	flagSet.Bool("debug-mutex", false, "Log a warning when a cache mutex is held too long.")
	if err := viper.BindPFlag("debug.log-mutex", flagSet.Lookup("debug-mutex")); err != nil {
		return err
	}

	flagSet.String("log-severity", "INFO", "Minimum severity to log: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	if err := viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.String("log-format", "text", "Log format: text or json.")
	if err := viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.String("log-file", "", "Path to a log file; empty means log to stderr.")
	if err := viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.Int("inode-lease-duration-ms", 5000, "Default per-inode lease duration in milliseconds.")
	if err := viper.BindPFlag("cache.inode-lease-duration-ms", flagSet.Lookup("inode-lease-duration-ms")); err != nil {
		return err
	}

	flagSet.Int("dentry-lease-duration-ms", 5000, "Default per-dentry lease duration in milliseconds.")
	if err := viper.BindPFlag("cache.dentry-lease-duration-ms", flagSet.Lookup("dentry-lease-duration-ms")); err != nil {
		return err
	}

	flagSet.Int("cap-release-delay-secs", 5, "Seconds an unwanted cap may sit before release.")
	if err := viper.BindPFlag("cache.cap-release-delay-secs", flagSet.Lookup("cap-release-delay-secs")); err != nil {
		return err
	}

	flagSet.Bool("metrics-enabled", false, "Expose OpenTelemetry/Prometheus metrics.")
	if err := viper.BindPFlag("metrics.enabled", flagSet.Lookup("metrics-enabled")); err != nil {
		return err
	}

	flagSet.Int("metrics-prometheus-port", 9102, "Port to serve /metrics on, when metrics are enabled.")
	if err := viper.BindPFlag("metrics.prometheus-port", flagSet.Lookup("metrics-prometheus-port")); err != nil {
		return err
	}

	return nil
}
