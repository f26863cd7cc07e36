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

import "sync"

// Session represents one MDS session: its generation/TTL pair governing
// lease validity, and the two FIFOs of leases it owns, most-recently-touched
// at the tail (spec §3 "Session").
type Session struct {
	mu sync.Mutex

	// MDSID identifies which MDS rank this session talks to.
	MDSID int

	// CapGen increments each time the session reconnects; caps/leases bound
	// to an older generation are invalid (spec GLOSSARY "Session generation").
	CapGen uint64

	// CapTTL is the jiffies deadline after which the session itself, and
	// therefore every lease bound to it, is considered inactive.
	CapTTL int64

	inodeLeases  List[*Inode]
	dentryLeases List[*Dentry]
}

// NewSession constructs a Session at generation 0.
func NewSession(mdsID int) *Session {
	return &Session{MDSID: mdsID}
}

// Active reports whether the session is still usable at the given jiffies
// time, i.e. jiffies < session.cap_ttl (spec §4.3 inode_lease_valid clause
// 4).
func (s *Session) Active(jiffies int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return jiffies < s.CapTTL
}

// Bump increments CapGen, invalidating every outstanding lease bound to the
// previous generation without walking the FIFOs (lease validity is checked
// lazily against CapGen at use time, spec §4.3).
func (s *Session) Bump(newTTL int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CapGen++
	s.CapTTL = newTTL
}

func (s *Session) touchInodeLease(n Node[*Inode]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inodeLeases.MoveToTail(n)
}

func (s *Session) pushInodeLease(i *Inode) Node[*Inode] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inodeLeases.PushTail(i)
}

func (s *Session) removeInodeLease(n Node[*Inode]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inodeLeases.Remove(n)
}

func (s *Session) touchDentryLease(n Node[*Dentry]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dentryLeases.MoveToTail(n)
}

func (s *Session) pushDentryLease(d *Dentry) Node[*Dentry] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dentryLeases.PushTail(d)
}

func (s *Session) removeDentryLease(n Node[*Dentry]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dentryLeases.Remove(n)
}
