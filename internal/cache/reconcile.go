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
	"log/slog"
	"time"
)

// ReportedAttrs is the MDS-reported (size, mtime, atime, ctime,
// truncate_seq, time_warp_seq) tuple the reconciler merges against locally
// held values (spec §4.2).
type ReportedAttrs struct {
	TruncateSeq uint64
	Size        uint64
	TimeWarpSeq uint64
	Ctime       time.Time
	Mtime       time.Time
	Atime       time.Time
}

// ReconcileSize implements spec §4.2 step 1: if ts > i.truncate_seq, or
// (ts == i.truncate_seq && size_new > i.size), accept size_new, recompute
// blocks, update truncate_seq, and record reported_size. Otherwise keep the
// local size and leave reported_size untouched — a rejected update must not
// disturb the last-accepted value MaybeScheduleSizeHintCheck compares
// against. Must be called with i.Mu held; split out from ReconcileAttrs per
// SUPPLEMENTED FEATURES #1 so callers can reconcile size independently of a
// full attribute merge (mirroring ceph_fill_file_size, kernel/inode.c:328-336,
// which only assigns ci->i_reported_size inside the accepting branch).
func ReconcileSize(i *Inode, ts uint64, sizeNew uint64) {
	if ts > i.TruncateSeq || (ts == i.TruncateSeq && sizeNew > i.Size) {
		i.Size = sizeNew
		i.TruncateSeq = ts
		i.ReportedSize = sizeNew
		i.recomputeBlocks()
	}
}

// ReconcileTimes implements spec §4.2 step 2: the timestamp policy by held
// caps. issued is the mask currently in force on i (spec §4.2's "currently
// issued caps I"). Must be called with i.Mu held; split out from
// ReconcileAttrs per SUPPLEMENTED FEATURES #1 (mirroring ceph_fill_file_time).
func ReconcileTimes(ctx context.Context, i *Inode, issued CapMask, tw uint64, attrs ReportedAttrs, logger *slog.Logger) {
	switch {
	case issued.Has(CapEXCL):
		// Local is authoritative. Accept ctime only if strictly newer.
		if attrs.Ctime.After(i.Ctime) {
			i.Ctime = attrs.Ctime
		}
		if tw > i.TimeWarpSeq && logger != nil {
			logger.WarnContext(ctx, "mds reported newer time_warp_seq while EXCL held",
				"ino", i.Vino.Ino, "local_tw", i.TimeWarpSeq, "mds_tw", tw)
		}

	case issued.Any(CapWR | CapWRBuffer):
		switch {
		case tw > i.TimeWarpSeq:
			i.Ctime, i.Mtime, i.Atime = attrs.Ctime, attrs.Mtime, attrs.Atime
			i.TimeWarpSeq = tw
		case tw == i.TimeWarpSeq:
			if attrs.Ctime.After(i.Ctime) {
				i.Ctime = attrs.Ctime
			}
			if attrs.Mtime.After(i.Mtime) {
				i.Mtime = attrs.Mtime
			}
			if attrs.Atime.After(i.Atime) {
				i.Atime = attrs.Atime
			}
		default:
			if logger != nil {
				logger.WarnContext(ctx, "time_warp_seq decreased from mds under write caps",
					"ino", i.Vino.Ino, "local_tw", i.TimeWarpSeq, "mds_tw", tw)
			}
		}

	default:
		if tw >= i.TimeWarpSeq {
			i.Ctime, i.Mtime, i.Atime = attrs.Ctime, attrs.Mtime, attrs.Atime
			i.TimeWarpSeq = tw
		} else if logger != nil {
			logger.WarnContext(ctx, "time_warp_seq decreased from mds",
				"ino", i.Vino.Ino, "local_tw", i.TimeWarpSeq, "mds_tw", tw)
		}
	}
}

// ReconcileAttrs merges a full ReportedAttrs tuple, calling ReconcileSize
// then ReconcileTimes under i.Mu (spec §4.2).
func ReconcileAttrs(ctx context.Context, i *Inode, issued CapMask, attrs ReportedAttrs, logger *slog.Logger) {
	i.Mu.Lock()
	defer i.Mu.Unlock()

	ReconcileSize(i, attrs.TruncateSeq, attrs.Size)
	ReconcileTimes(ctx, i, issued, attrs.TimeWarpSeq, attrs, logger)
}
