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

// Package clock abstracts time so that lease TTL and timestamp-monotonicity
// logic in internal/cache can be driven deterministically from tests.
package clock

import "time"

// Clock is the source of truth for "now" used anywhere a lease TTL or
// attribute timestamp is computed. Production code uses RealClock; tests
// use SimulatedClock so TTL expiry and session-generation races are
// reproducible.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
