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

//go:build linux

package cache

import "golang.org/x/sys/unix"

// userHZ is glibc's fixed sysconf(_SC_CLK_TCK) value on Linux: 100,
// regardless of the kernel's internal HZ. Lease TTL arithmetic in spec
// §4.3 ("duration_ms * HZ/1000") uses this user-space tick rate.
const userHZ = 100

// jiffiesNow reads the process's raw clock-tick counter via times(2), the
// same primitive the kernel-side driver this core is modeled on uses for
// "jiffies".
func jiffiesNow() int64 {
	var tms unix.Tms
	ticks, err := unix.Times(&tms)
	if err != nil {
		return 0
	}
	return int64(ticks)
}

func clockTicksPerSecond() int64 {
	return userHZ
}
