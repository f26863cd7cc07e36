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

package cache

import (
	"context"

	"github.com/goceph/cephfs-cache/internal/telemetry"
)

// CapMask is the per-inode set of mode bits governing what local operations
// may bypass the MDS (spec §3 "Capability Engine"). It also doubles as the
// dentry/lease mask vocabulary (DN, ICONTENT) per spec §4.3.
type CapMask uint32

const (
	CapPIN      CapMask = 1 << iota // pin: inode exists, no content rights
	CapRD                           // read metadata
	CapRDCache                      // cache file content for reads
	CapWR                           // write metadata
	CapWRBuffer                     // buffer writes locally
	CapEXCL                         // exclusive: local is authoritative
	CapICONTENT                     // directory-content lease
	CapDN                           // dentry lease bit
)

// Has reports whether m contains every bit in want.
func (m CapMask) Has(want CapMask) bool {
	return m&want == want
}

// Any reports whether m contains any bit in want.
func (m CapMask) Any(want CapMask) bool {
	return m&want != 0
}

// FMode identifies which open-counter bucket a file descriptor belongs to.
type FMode int

const (
	FModeRead FMode = iota
	FModeWrite
	FModeReadWrite
	FModeLazy
)

// CapChecker is the collaborator the Capability Engine schedules work on
// when a cap check is warranted: releasing unwanted caps, or requesting a
// larger max_size grant. The MDS client owns the actual request; this core
// only decides *that* a check is warranted (spec §1 scope).
type CapChecker interface {
	ScheduleCapCheck(ctx context.Context, i *Inode)
}

// PutFmode decrements the open counter for mode; when it drops to zero for
// a live (non-snapshot) inode, a cap check is scheduled so unwanted caps can
// be released (spec §4.3 "Cap accounting").
func PutFmode(ctx context.Context, i *Inode, mode FMode, checker CapChecker) {
	i.Mu.Lock()
	defer i.Mu.Unlock()

	var atZero bool
	switch mode {
	case FModeRead:
		i.OpenByMode.Read--
		atZero = i.OpenByMode.Read == 0
	case FModeWrite:
		i.OpenByMode.Write--
		atZero = i.OpenByMode.Write == 0
	case FModeReadWrite:
		i.OpenByMode.ReadWrite--
		atZero = i.OpenByMode.ReadWrite == 0
	case FModeLazy:
		i.OpenByMode.Lazy--
		atZero = i.OpenByMode.Lazy == 0
	}

	if atZero && !i.Vino.IsSnapshot() && checker != nil {
		checker.ScheduleCapCheck(ctx, i)
	}
}

// MaybeScheduleSizeHintCheck implements spec §4.3's "Inode size-hint": on a
// local size change, if 2*newSize >= maxSize and 2*reportedSize < maxSize,
// schedule a cap check so the client can request a larger max_size grant.
// metrics (nil-safe, falls back to telemetry.NoopMetrics) records a cache
// hit when the local state already covers the size without consulting the
// MDS, and a miss when a cap check had to be scheduled.
func MaybeScheduleSizeHintCheck(ctx context.Context, i *Inode, checker CapChecker, metrics telemetry.MetricHandle) {
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}

	i.Mu.Lock()
	newSize, maxSize, reportedSize := i.Size, i.MaxSize, i.ReportedSize
	i.Mu.Unlock()

	if maxSize == 0 {
		metrics.CacheHitCount(ctx, telemetry.OpCapCheck, true, 1)
		return
	}

	needsCheck := 2*newSize >= maxSize && 2*reportedSize < maxSize
	metrics.CacheHitCount(ctx, telemetry.OpCapCheck, !needsCheck, 1)
	if needsCheck && checker != nil {
		checker.ScheduleCapCheck(ctx, i)
	}
}
