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

// Package vfsshim names the narrow collaborator contract internal/cache
// expects from a host VFS (spec §6): allocating/destroying inodes, hashing
// and unhashing dentries, materialising a unique dentry-to-inode binding,
// and flushing pages on truncate. No implementation lives here, matching
// fuseutil.FileSystem's pattern of a closed operation-table interface for
// an external collaborator (spec §1, out of scope: "the generic VFS layer
// it plugs into").
package vfsshim

import "context"

// DentryHandle is an opaque reference to a host dentry object, returned by
// Instantiate/FindAlias and passed back into Hash/Unhash/Delete/Move.
type DentryHandle interface{}

// InodeHandle is an opaque reference to a host inode object, returned by
// AllocateInode.
type InodeHandle interface{}

// HostVFS is the contract this cache core consumes from the generic VFS
// layer it is embedded in.
type HostVFS interface {
	// AllocateInode reserves a host-side inode object for vino, to be
	// populated by the cache's fill-inode path.
	AllocateInode(ctx context.Context, ino, snap uint64) (InodeHandle, error)

	// DestroyInode releases a host-side inode object on last cache
	// reference drop.
	DestroyInode(ctx context.Context, h InodeHandle) error

	// Hash/Unhash control whether a dentry participates in the host's
	// name lookup path.
	Hash(ctx context.Context, d DentryHandle)
	Unhash(ctx context.Context, d DentryHandle)

	// Delete removes a dentry from the host dcache, e.g. when a trace
	// reply shows a stale binding (spec §4.4 step 5/7).
	Delete(ctx context.Context, d DentryHandle)

	// Move relinks a dentry from its current name/parent to a new one,
	// used by the rename step of trace assimilation (spec §4.4 step 6).
	Move(ctx context.Context, from, to DentryHandle) error

	// Instantiate binds a dentry to an inode, including the negative case
	// when inode is nil (spec §4.4 step 5).
	Instantiate(ctx context.Context, d DentryHandle, inode InodeHandle) error

	// FindAlias returns an existing dentry alias for inode if the host
	// dcache already has one, so the splice step (spec §4.5) can prefer
	// it over the caller's dentry.
	FindAlias(ctx context.Context, inode InodeHandle) (DentryHandle, bool)

	// MaterialiseUnique implements the "materialise unique" primitive
	// spec §4.5 describes: given an inode, returns either d itself now
	// bound to the inode, or an existing alias to prefer instead.
	MaterialiseUnique(ctx context.Context, d DentryHandle, inode InodeHandle) (result DentryHandle, isAlias bool, err error)

	// AllocateRoot returns the dentry for the filesystem root, created on
	// first mount if necessary (spec §4.4 "Setup").
	AllocateRoot(ctx context.Context) (DentryHandle, error)

	// TruncatePages flushes the host page cache for inode down to size,
	// used by the Pending Truncate Worker (spec §4.6).
	TruncatePages(ctx context.Context, inode InodeHandle, size uint64) error

	// WritebackAndWait blocks until any dirty pages for inode have been
	// written back, used before honoring an MDS-directed truncate.
	WritebackAndWait(ctx context.Context, inode InodeHandle) error
}
