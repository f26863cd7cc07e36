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

import "context"

// AttrValid selects which fields of an Attr a SetAttr call changes,
// mirroring the original's ia_valid bitmask (original_source/kernel/inode.c
// ceph_setattr).
type AttrValid uint32

const (
	AttrUID AttrValid = 1 << iota
	AttrGID
	AttrMode
	AttrSize
	AttrAtime
	AttrMtime
)

// Attr carries the subset of fields a SetAttr call wants to change; which
// fields are meaningful is selected by the Valid mask.
type Attr struct {
	Valid AttrValid
	UID   uint32
	GID   uint32
	Mode  uint32
	Size  uint64
}

// AttrCommitter applies one validated kind of attribute change to the MDS,
// scoped down from the full MDS client contract (spec §1 external
// collaborator).
type AttrCommitter interface {
	CommitChown(ctx context.Context, i *Inode, uid, gid uint32) error
	CommitChmod(ctx context.Context, i *Inode, mode uint32) error
	CommitTime(ctx context.Context, i *Inode) error
	CommitSize(ctx context.Context, i *Inode, size uint64) error
}

// SetAttr implements the spec §9 open-question decision: unlike the
// original (where each `ia_valid` branch's `err =` overwrites the previous
// one, so only the last attempted kind's result is ever returned), every
// requested attribute kind is attempted and the *first* failure is
// returned, not the last. Writes to a snapshot inode are rejected up front
// with ReadOnly (spec §6).
func SetAttr(ctx context.Context, i *Inode, attr Attr, committer AttrCommitter) error {
	if i.Vino.IsSnapshot() {
		return newError(ReadOnly, "SetAttr", nil)
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if attr.Valid&(AttrUID|AttrGID) != 0 {
		record(committer.CommitChown(ctx, i, attr.UID, attr.GID))
	}
	if attr.Valid&AttrMode != 0 {
		record(committer.CommitChmod(ctx, i, attr.Mode))
	}
	if attr.Valid&(AttrAtime|AttrMtime) != 0 {
		record(committer.CommitTime(ctx, i))
	}
	if attr.Valid&AttrSize != 0 {
		record(committer.CommitSize(ctx, i, attr.Size))
	}

	return firstErr
}
