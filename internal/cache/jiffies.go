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
	"time"

	"github.com/goceph/cephfs-cache/internal/clock"
)

// JiffiesFromTime converts t to the same tick unit as jiffiesNow(), so that
// lease TTL arithmetic (spec §4.3) can be driven by an internal/clock.Clock
// in tests instead of reading the platform clock directly.
func JiffiesFromTime(t time.Time) int64 {
	return t.UnixNano() / (int64(time.Second) / clockTicksPerSecond())
}

// JiffiesNow reads c's current time and converts it to jiffies. Production
// callers pass clock.RealClock{}; tests pass a clock.SimulatedClock so
// lease TTL expiry (spec §4.3) is deterministic instead of depending on
// wall-clock sleeps.
func JiffiesNow(c clock.Clock) int64 {
	return JiffiesFromTime(c.Now())
}

// MillisToJiffies converts a millisecond duration (as carried by the
// decoded lease.duration_ms field) to jiffies: duration_ms * HZ/1000 (spec
// §4.3 "update_inode_lease").
func MillisToJiffies(ms int64) int64 {
	return ms * clockTicksPerSecond() / 1000
}
