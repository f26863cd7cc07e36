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

//go:build !linux

package cache

import "time"

const userHZ = 100

// jiffiesNow falls back to a wall-clock-derived tick count off Linux, where
// times(2) is not available.
func jiffiesNow() int64 {
	return time.Now().UnixNano() / (int64(time.Second) / userHZ)
}

func clockTicksPerSecond() int64 {
	return userHZ
}
