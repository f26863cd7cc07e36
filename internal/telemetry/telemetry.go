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

// Package telemetry exposes the metrics surface the cache core reports
// through: cap/lease hit-or-miss counters, trace assimilation latency, and
// an error counter keyed by the operation and the §6/§7 error kind.
package telemetry

import (
	"context"
	"time"
)

// Op names reported against MetricHandle. Kept as a closed set, mirroring
// the teacher's FSOpKey convention, so cardinality stays bounded.
const (
	OpTraceAssimilate = "trace_assimilate"
	OpInodeLeaseCheck  = "inode_lease_check"
	OpDentryLeaseCheck = "dentry_lease_check"
	OpCapCheck         = "cap_check"
	OpXattrGet         = "xattr_get"
	OpXattrList        = "xattr_list"
	OpXattrSet         = "xattr_set"
)

// MetricHandle is the metrics surface internal/cache depends on. Production
// code gets an OTel-backed implementation; a NoopMetrics is substituted
// when telemetry is disabled by cfg.
type MetricHandle interface {
	// OpsCount increments the processed-operation counter for op.
	OpsCount(ctx context.Context, op string, inc int64)
	// OpsLatency records how long op took.
	OpsLatency(ctx context.Context, op string, d time.Duration)
	// OpsErrorCount increments the error counter for op, tagged with the
	// §6 error kind string (e.g. "IO", "NotFound").
	OpsErrorCount(ctx context.Context, op string, errKind string, inc int64)
	// CacheHitCount records whether a lease/cap check was satisfied
	// locally (hit) or required consulting the MDS (miss).
	CacheHitCount(ctx context.Context, op string, hit bool, inc int64)
}
