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
	"fmt"
	"log"
)

// lookupCount implements reference counting for cache records: destroy is
// called when the count hits zero, with errors logged but otherwise
// ignored. External synchronization is required (the owning record's Mu).
type lookupCount struct {
	count   uint64
	destroy func() error
}

func (lc *lookupCount) Inc() {
	lc.count++
}

func (lc *lookupCount) Dec(n uint64) (destroyed bool) {
	if n > lc.count {
		panic(fmt.Sprintf(
			"n is greater than lookup count: %v vs. %v",
			n,
			lc.count))
	}

	lc.count -= n

	if lc.count == 0 && lc.destroy != nil {
		if err := lc.destroy(); err != nil {
			log.Printf("cache: error destroying record: %v", err)
		}
		destroyed = true
	}

	return
}

// Count returns the current lookup count, for tests and invariant checks.
func (lc *lookupCount) Count() uint64 {
	return lc.count
}
