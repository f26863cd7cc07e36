// Copyright 2024 Google Inc. All Rights Reserved.
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

import "fmt"

const (
	InodeLeaseDurationInvalidValueError  = "the value of inode-lease-duration-ms can't be negative"
	DentryLeaseDurationInvalidValueError = "the value of dentry-lease-duration-ms can't be negative"
	CapReleaseDelayInvalidValueError     = "the value of cap-release-delay-secs can't be negative"
)

func isValidLogRotateConfig(config *LogRotateConfig) error {
	if config.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidCacheConfig(c *CacheConfig) error {
	if c.InodeLeaseDuration < 0 {
		return fmt.Errorf(InodeLeaseDurationInvalidValueError)
	}
	if c.DentryLeaseDuration < 0 {
		return fmt.Errorf(DentryLeaseDurationInvalidValueError)
	}
	if c.CapReleaseDelaySecs < 0 {
		return fmt.Errorf(CapReleaseDelayInvalidValueError)
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	if err := isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err := isValidCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("error parsing cache config: %w", err)
	}

	if len(config.Monitors) == 0 {
		return fmt.Errorf("at least one monitor address must be configured")
	}

	return nil
}
