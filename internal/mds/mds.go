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

// Package mds names the decoded shapes and collaborator contract this
// cache core consumes from an MDS client (spec §6). Transport, framing,
// retry, and session establishment are out of scope (spec §1); this
// package only carries the already-decoded reply fields the Trace
// Assimilator and Capability & Lease Engine depend on.
package mds

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestID correlates an outstanding request with its eventual reply,
// minted by the MDS client collaborator.
type RequestID uuid.UUID

// NewRequestID mints a fresh correlation id.
func NewRequestID() RequestID {
	return RequestID(uuid.New())
}

func (r RequestID) String() string {
	return uuid.UUID(r).String()
}

// Layout is the decoded on-wire striping layout (spec §6 inode_info.layout).
type Layout struct {
	StripeUnit  uint32
	StripeCount uint32
	ObjectSize  uint32
}

// FragSplit is one entry of inode_info.fragtree.splits[] (spec §6):
// the FragId being split and its split_by value.
type FragSplit struct {
	Frag   uint32
	SplitBy uint
}

// InodeInfo is the decoded per-inode payload embedded in a trace or
// readdir reply (spec §6 "inode_info").
type InodeInfo struct {
	Version     uint64
	Ino         uint64
	Snap        uint64
	Mode        uint32
	Uid         uint32
	Gid         uint32
	Nlink       uint32
	Rdev        uint64
	Layout      Layout
	TruncateSeq uint64
	TimeWarpSeq uint64
	Size        uint64
	MaxSize     uint64
	Mtime       time.Time
	Atime       time.Time
	Ctime       time.Time
	Rctime      time.Time
	Files       uint64
	Subdirs     uint64
	RFiles      uint64
	RSubdirs    uint64
	RBytes      uint64
	FragTree    []FragSplit
	Symlink     string
	IsDir       bool
	XattrBlob   []byte
}

// MaxDirfragRep bounds dirfrag.dist, mirroring the wire format's fixed
// replica-list cap (spec §6 "dirfrag").
const MaxDirfragRep = 4

// Dirfrag is the decoded per-dirfrag delegation payload (spec §6
// "dirfrag").
type Dirfrag struct {
	Frag  uint32
	Auth  int
	NDist int
	Dist  [MaxDirfragRep]int
}

// Lease is the decoded per-record lease grant (spec §6 "lease").
type Lease struct {
	Mask       uint32
	DurationMs int64
}

// ReplyInfo is the decoded trace (and, for readdir, listing) payload of
// an MDS reply (spec §6 "reply_info"): parallel arrays describing the
// inode/dentry chain from the filesystem root to the operation target.
type ReplyInfo struct {
	TraceIn         []InodeInfo
	TraceILease     []Lease
	TraceDName      []string
	TraceDLease     []Lease
	TraceDir        []Dirfrag
	TraceNumI       int
	TraceNumD       int
	TraceSnapdirpos int

	// Set only when the request this reply answers was a rename: the
	// dentry being moved from (spec §4.4 step 6).
	OldDentryName   string
	OldDentryParent uint64
	HasOldDentry    bool

	// Set only when the request pre-supplied a target dentry to prefer
	// (spec §4.4 step 4).
	LastDentryName string
	HasLastDentry  bool

	// Readdir listing, populated only for readdir replies (spec §4.7).
	DirIn     []InodeInfo
	DirDName  []string
	DirDLease []Lease
	DirILease []Lease
	DirNr     int
	DirDir    *Dirfrag
}

// Client is the narrow collaborator contract the cache core consumes
// from the MDS request/response transport (spec §6 "MDS client"): issuing
// requests and releasing leases. Request framing, retry, and session
// management live entirely in the collaborator's implementation.
type Client interface {
	// IssueRequest sends op (an opaque, collaborator-defined request
	// value) and blocks for its decoded reply.
	IssueRequest(ctx context.Context, op any) (ReplyInfo, error)

	// LeaseRelease tells the MDS the client is dropping the named lease
	// bits early, e.g. before dispatching an xattr Set/Remove (spec §4.8).
	LeaseRelease(ctx context.Context, ino uint64, dentryName string, mask uint32) error
}
