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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconcileSize_AcceptsHigherTruncateSeq(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.TruncateSeq = 1
	i.Size = 100
	i.Mu.Unlock()

	i.Mu.Lock()
	ReconcileSize(i, 2, 50)
	i.Mu.Unlock()

	assert.Equal(t, uint64(50), i.Size)
	assert.Equal(t, uint64(2), i.TruncateSeq)
}

func TestReconcileSize_AcceptsLargerSizeAtSameSeq(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.TruncateSeq = 1
	i.Size = 100
	i.Mu.Unlock()

	i.Mu.Lock()
	ReconcileSize(i, 1, 200)
	i.Mu.Unlock()

	assert.Equal(t, uint64(200), i.Size)
}

func TestReconcileSize_KeepsLocalSizeUnderEXCLWhenMDSSeqNotNewer(t *testing.T) {
	// Spec scenario "EXCL cap keeps old size/truncate_seq": an MDS reply
	// carrying the same (or stale) truncate_seq and a smaller size must not
	// overwrite what the client already holds locally.
	i := newTestInode()
	i.Mu.Lock()
	i.TruncateSeq = 5
	i.Size = 1000
	i.ReportedSize = 1000
	i.Mu.Unlock()

	i.Mu.Lock()
	ReconcileSize(i, 5, 10)
	i.Mu.Unlock()

	assert.Equal(t, uint64(1000), i.Size)
	assert.Equal(t, uint64(5), i.TruncateSeq)
	assert.Equal(t, uint64(1000), i.ReportedSize, "a rejected update must not overwrite reported_size either")
}

func TestReconcileTimes_EXCLAcceptsOnlyNewerCtime(t *testing.T) {
	i := newTestInode()
	base := time.Unix(1000, 0)
	i.Mu.Lock()
	i.Ctime = base
	i.Mtime = base
	i.Atime = base
	i.TimeWarpSeq = 3
	i.Mu.Unlock()

	older := ReportedAttrs{Ctime: base.Add(-time.Hour), Mtime: base.Add(time.Hour), Atime: base.Add(time.Hour)}
	i.Mu.Lock()
	ReconcileTimes(context.Background(), i, CapEXCL, 2, older, nil)
	i.Mu.Unlock()

	assert.Equal(t, base, i.Ctime)
	assert.Equal(t, base, i.Mtime, "under EXCL only ctime is ever considered")
}

func TestReconcileTimes_WRAdoptsNewerTimeWarpSeqWholesale(t *testing.T) {
	i := newTestInode()
	base := time.Unix(1000, 0)
	i.Mu.Lock()
	i.Ctime, i.Mtime, i.Atime = base, base, base
	i.TimeWarpSeq = 1
	i.Mu.Unlock()

	newer := base.Add(time.Hour)
	attrs := ReportedAttrs{Ctime: newer, Mtime: newer, Atime: newer}

	i.Mu.Lock()
	ReconcileTimes(context.Background(), i, CapWR, 2, attrs, nil)
	i.Mu.Unlock()

	assert.Equal(t, newer, i.Mtime)
	assert.Equal(t, uint64(2), i.TimeWarpSeq)
}

func TestReconcileTimes_WRSameSeqDecreasedMtimeStaysUnchanged(t *testing.T) {
	// Spec scenario: WR cap + decreased mtime with the same time_warp_seq
	// must leave the local value unchanged (only strictly-newer wins).
	i := newTestInode()
	base := time.Unix(2000, 0)
	i.Mu.Lock()
	i.Ctime, i.Mtime, i.Atime = base, base, base
	i.TimeWarpSeq = 4
	i.Mu.Unlock()

	attrs := ReportedAttrs{Ctime: base, Mtime: base.Add(-time.Hour), Atime: base}

	i.Mu.Lock()
	ReconcileTimes(context.Background(), i, CapWR, 4, attrs, nil)
	i.Mu.Unlock()

	assert.Equal(t, base, i.Mtime)
}

func TestReconcileTimes_NoCapsAcceptsAnyNonDecreasingSeq(t *testing.T) {
	i := newTestInode()
	base := time.Unix(1000, 0)
	i.Mu.Lock()
	i.Ctime, i.Mtime, i.Atime = base, base, base
	i.TimeWarpSeq = 1
	i.Mu.Unlock()

	newer := base.Add(time.Minute)
	attrs := ReportedAttrs{Ctime: newer, Mtime: newer, Atime: newer}

	i.Mu.Lock()
	ReconcileTimes(context.Background(), i, 0, 1, attrs, nil)
	i.Mu.Unlock()

	assert.Equal(t, newer, i.Mtime)
}

func TestReconcileAttrs_MergesSizeAndTimesUnderLock(t *testing.T) {
	i := newTestInode()
	attrs := ReportedAttrs{
		TruncateSeq: 1,
		Size:        500,
		TimeWarpSeq: 1,
		Ctime:       time.Unix(10, 0),
		Mtime:       time.Unix(10, 0),
		Atime:       time.Unix(10, 0),
	}

	ReconcileAttrs(context.Background(), i, 0, attrs, nil)

	i.Mu.Lock()
	defer i.Mu.Unlock()
	assert.Equal(t, uint64(500), i.Size)
	assert.Equal(t, uint64(1), i.TimeWarpSeq)
}
