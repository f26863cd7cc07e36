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

// Package cache implements the client-side metadata cache: the fragment
// tree, inode/dentry records, capability and lease engine, and the trace
// assimilator that reconciles them against MDS replies.
package cache

import "fmt"

// NOSNAP denotes the live, unsnapshotted view of an inode.
const NOSNAP uint64 = ^uint64(0)

// SNAPDIR denotes the synthesized ".snap" directory of a real directory.
const SNAPDIR uint64 = ^uint64(0) - 1

// VersionedIno identifies an inode, possibly under a particular snapshot.
type VersionedIno struct {
	Ino  uint64
	Snap uint64
}

func (v VersionedIno) String() string {
	switch v.Snap {
	case NOSNAP:
		return fmt.Sprintf("%d.head", v.Ino)
	case SNAPDIR:
		return fmt.Sprintf("%d.snapdir", v.Ino)
	default:
		return fmt.Sprintf("%d.%d", v.Ino, v.Snap)
	}
}

// IsSnapshot reports whether v refers to a snapshotted view rather than the
// live file or the synthesized snapdir.
func (v VersionedIno) IsSnapshot() bool {
	return v.Snap != NOSNAP && v.Snap != SNAPDIR
}
