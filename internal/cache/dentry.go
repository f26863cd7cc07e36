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

// dentryLease is the per-dentry lease side record (spec §3 "Dentry").
type dentryLease struct {
	session *Session
	gen     uint64
	ttl     int64
	node    Node[*Dentry]
	linked  bool

	// dTime records the parent inode's version at the moment an empty-mask
	// reply arrived, so an implicit directory-wide (ICONTENT) lease can
	// later be recognized as covering this dentry (spec §4.3
	// "update_dentry_lease").
	dTime uint64
}

// Dentry binds a name to a parent inode (or to no inode, for a negative
// dentry) and carries its own lease (spec §3 "Dentry").
type Dentry struct {
	mu sync.Mutex

	Parent *Inode
	Name   string

	// Inode is nil for a negative dentry.
	Inode *Inode

	lease dentryLease
}

// NewDentry constructs a negative dentry for (parent, name).
func NewDentry(parent *Inode, name string) *Dentry {
	return &Dentry{Parent: parent, Name: name}
}

// IsNegative reports whether the dentry currently has no bound inode.
func (d *Dentry) IsNegative() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Inode == nil
}

// Bind attaches in to the dentry, replacing any previous binding.
func (d *Dentry) Bind(in *Inode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Inode = in
}

// Unbind clears the dentry's inode, making it negative.
func (d *Dentry) Unbind() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Inode = nil
}
