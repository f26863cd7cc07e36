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
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/goceph/cephfs-cache/internal/mds"
	"github.com/goceph/cephfs-cache/internal/telemetry"
)

// TraceHost is the narrow slice of the host VFS and request-scoped state
// the Trace Assimilator needs (spec §4.4, §6), scoped down from
// vfsshim.HostVFS the same way splice.go's HostDentryOps is: a per-call
// collaborator contract rather than the full mount-wide interface.
type TraceHost interface {
	HostDentryOps

	// LookupDentry hashes name and looks it up under parent.
	LookupDentry(ctx context.Context, parent *Inode, name string) (*Dentry, bool)

	// NewNegativeDentry allocates an unattached dentry for (parent, name).
	NewNegativeDentry(ctx context.Context, parent *Inode, name string) *Dentry

	// DeleteDentry drops a stale binding from the host dcache.
	DeleteDentry(ctx context.Context, d *Dentry)

	// InstantiateNegative marks d as a confirmed negative lookup.
	InstantiateNegative(ctx context.Context, d *Dentry)

	// TryLockDir attempts the host's i_mutex for parent's directory
	// (spec §5: owned by the host VFS, acquired here only via try-lock).
	// ok is false if already held elsewhere; unlock is nil in that case.
	TryLockDir(ctx context.Context, parent *Inode) (unlock func(), ok bool)

	// GetOrCreateInode fetches the cached Inode for vino, creating one on
	// first reference (spec §3 Lifecycles "Inode").
	GetOrCreateInode(ctx context.Context, vino VersionedIno) (inode *Inode, created bool, err error)

	// GetOrCreateSnapDir returns the synthesized ".snap" directory inode
	// for a real directory inode (spec §4.4 step 11, GLOSSARY "SnapDir").
	GetOrCreateSnapDir(ctx context.Context, dir *Inode) (*Inode, error)

	// PreSuppliedDentry returns the caller's r_last_dentry for the final
	// trace step, if the originating request supplied one (spec §4.4 step
	// 4). ok is false if none was supplied.
	PreSuppliedDentry(ctx context.Context) (*Dentry, bool)

	// OldDentry returns the caller's r_old_dentry for a rename reply
	// (spec §4.4 step 6). ok is false for a non-rename reply.
	OldDentry(ctx context.Context) (*Dentry, bool)

	// MoveDentry relinks from onto to's name/parent (spec §4.4 step 6).
	MoveDentry(ctx context.Context, from, to *Dentry) error
}

// vinoOf converts a decoded inode_info identity pair into a VersionedIno.
func vinoOf(info mds.InodeInfo) VersionedIno {
	return VersionedIno{Ino: info.Ino, Snap: info.Snap}
}

// Assimilate implements spec §4.4 "Trace Assimilator": walks a decoded MDS
// reply from the filesystem root to the operation target, creating or
// updating Inode and Dentry records, performing the rename step if present,
// attaching inodes to dentries via Splice, and renewing both inode and
// dentry leases along the way. metrics (nil-safe, falls back to
// telemetry.NoopMetrics) counts the operation and, on failure, the §6/§7
// error kind returned.
func Assimilate(ctx context.Context, host TraceHost, reply mds.ReplyInfo, session *Session, reqStartedJiffies int64, logger *slog.Logger, metrics telemetry.MetricHandle) error {
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}
	metrics.OpsCount(ctx, telemetry.OpTraceAssimilate, 1)

	if reply.TraceNumI == 0 {
		// MDS returned no trace; nothing to do (spec §4.4 "Setup", §8
		// boundary behavior).
		return nil
	}

	parent, _, err := host.GetOrCreateInode(ctx, vinoOf(reply.TraceIn[0]))
	if err != nil {
		return recordAssimilateErr(ctx, metrics, newError(OutOfMemory, "Assimilate", err))
	}
	if err := fillInode(ctx, parent, reply.TraceIn[0], dirfragAt(reply.TraceDir, 0), logger); err != nil {
		return recordAssimilateErr(ctx, metrics, err)
	}

	for d := 0; d < reply.TraceNumD; d++ {
		// Step 1: parent lock, falling back to no-directory-mutex mode on
		// try-lock failure (spec §4.4 step 1, §7 "Mutex try-lock failure").
		unlock, gotLock := host.TryLockDir(ctx, parent)
		noDirMutex := !gotLock

		// Step 2: renew the parent inode's lease; note the granted mask.
		ilease := leaseAt(reply.TraceILease, d)
		effMask := UpdateInodeLease(parent, LeaseInfo{Mask: CapMask(ilease.Mask), DurationMs: ilease.DurationMs}, session, reqStartedJiffies)
		haveICONTENT := effMask.Has(CapICONTENT)

		// Step 3: decide dentry-lease availability.
		dlease := leaseAt(reply.TraceDLease, d)
		haveLease := haveICONTENT || CapMask(dlease.Mask).Has(CapDN)

		name := reply.TraceDName[d]
		isLast := d == reply.TraceNumD-1

		// Step 4: dentry lookup, honoring a pre-supplied target dentry on
		// the final step.
		target, found := host.LookupDentry(ctx, parent, name)
		if !found && isLast {
			if pre, ok := host.PreSuppliedDentry(ctx); ok && pre.Parent == parent && pre.Name == name {
				target = pre
				found = true
			}
		}
		if !found {
			target = host.NewNegativeDentry(ctx, parent, name)
		}

		// Step 5: null dentry (negative reply) — no inode follows this
		// dentry in the trace.
		if d+1 == reply.TraceNumI {
			if !target.IsNegative() {
				host.DeleteDentry(ctx, target)
				target = host.NewNegativeDentry(ctx, parent, name)
			}
			host.InstantiateNegative(ctx, target)
			if haveLease && !host.IsHashed(target) {
				host.Hash(ctx, target)
			}
			if haveLease {
				UpdateDentryLease(target, LeaseInfo{Mask: CapMask(dlease.Mask), DurationMs: dlease.DurationMs}, session, reqStartedJiffies, parentVersion(parent), nil)
			}
			if gotLock {
				unlock()
			}
			return nil
		}

		// Step 6: rename — relink the old dentry onto the new name and
		// continue the walk with it.
		if isLast {
			if old, ok := host.OldDentry(ctx); ok {
				if err := host.MoveDentry(ctx, old, target); err != nil {
					if gotLock {
						unlock()
					}
					return recordAssimilateErr(ctx, metrics, err)
				}
				target = old
			}
		}

		// Step 7: attach the next inode.
		nextInfo := reply.TraceIn[d+1]
		nextVino := vinoOf(nextInfo)
		if existing := target.Inode; existing != nil && existing.Vino != nextVino {
			host.DeleteDentry(ctx, target)
			target = host.NewNegativeDentry(ctx, parent, name)
		}
		next, _, err := host.GetOrCreateInode(ctx, nextVino)
		if err != nil {
			if gotLock {
				unlock()
			}
			return recordAssimilateErr(ctx, metrics, newError(OutOfMemory, "Assimilate", err))
		}

		attached := target
		if !noDirMutex {
			attached, _, err = Splice(ctx, host, target, next, haveLease)
			if err != nil {
				if gotLock {
					unlock()
				}
				return recordAssimilateErr(ctx, metrics, err)
			}
		} else {
			// No-directory-mutex mode: skip relinking and bind target
			// to next directly. Splice is not called, so the host dcache
			// is not searched for an existing alias.
			attached.Bind(next)
		}

		// Step 8: renew the dentry lease.
		if haveLease {
			UpdateDentryLease(attached, LeaseInfo{Mask: CapMask(dlease.Mask), DurationMs: dlease.DurationMs}, session, reqStartedJiffies, parentVersion(parent), nil)
		}

		// Step 9: release the parent mutex.
		if gotLock {
			unlock()
		}

		// Step 10: fill the newly attached inode.
		if err := fillInode(ctx, next, nextInfo, dirfragAt(reply.TraceDir, d+1), logger); err != nil {
			host.DeleteDentry(ctx, attached)
			return recordAssimilateErr(ctx, metrics, err)
		}

		// Step 11: snapshot divergence.
		if d == reply.TraceNumI-reply.TraceSnapdirpos-1 {
			snapDir, err := host.GetOrCreateSnapDir(ctx, next)
			if err != nil {
				return recordAssimilateErr(ctx, metrics, newError(OutOfMemory, "Assimilate", err))
			}
			parent = snapDir
			continue
		}

		parent = next
	}

	return nil
}

// recordAssimilateErr tags err's §6/§7 kind against metrics before
// returning it unchanged, so a failed trace walk is observable without
// every call site re-deriving the kind string itself.
func recordAssimilateErr(ctx context.Context, metrics telemetry.MetricHandle, err error) error {
	kind := "Unknown"
	var cacheErr *Error
	if errors.As(err, &cacheErr) {
		kind = cacheErr.Kind.String()
	}
	metrics.OpsErrorCount(ctx, telemetry.OpTraceAssimilate, kind, 1)
	return err
}

func dirfragAt(dirs []mds.Dirfrag, i int) *mds.Dirfrag {
	if i < 0 || i >= len(dirs) {
		return nil
	}
	return &dirs[i]
}

func leaseAt(leases []mds.Lease, i int) mds.Lease {
	if i < 0 || i >= len(leases) {
		return mds.Lease{}
	}
	return leases[i]
}

func parentVersion(i *Inode) uint64 {
	i.Mu.Lock()
	defer i.Mu.Unlock()
	return i.Version
}

// fillInode implements spec §4.4's "Fill-inode contract": if the reply
// carries the same non-zero version already recorded, skip the attribute
// update but still merge fragment-tree splits and dirfrag delegation info.
// Otherwise update identity attributes, reconcile timestamps/size, the
// xattr blob (reallocated only when its length changes), directory stats,
// the write-once symlink target, and bump the monotonic version.
func fillInode(ctx context.Context, i *Inode, info mds.InodeInfo, dirfrag *mds.Dirfrag, logger *slog.Logger) error {
	i.Mu.Lock()
	skipAttrs := info.Version > 0 && info.Version == i.Version
	if !skipAttrs {
		i.Mode, i.Uid, i.Gid, i.Nlink, i.Rdev = info.Mode, info.Uid, info.Gid, info.Nlink, info.Rdev
		i.LayoutInfo = Layout{StripeUnit: info.Layout.StripeUnit, StripeCount: info.Layout.StripeCount, ObjectSize: info.Layout.ObjectSize}
		i.IsDir = info.IsDir

		issued := i.IssuedMask()
		attrs := ReportedAttrs{
			TruncateSeq: info.TruncateSeq,
			Size:        info.Size,
			TimeWarpSeq: info.TimeWarpSeq,
			Ctime:       info.Ctime,
			Mtime:       info.Mtime,
			Atime:       info.Atime,
		}
		ReconcileSize(i, attrs.TruncateSeq, attrs.Size)
		ReconcileTimes(ctx, i, issued, attrs.TimeWarpSeq, attrs, logger)
		i.MaxSize = info.MaxSize

		if len(info.XattrBlob) != len(i.XattrBlob) {
			i.XattrBlob = make([]byte, len(info.XattrBlob))
		}
		copy(i.XattrBlob, info.XattrBlob)

		if info.IsDir {
			i.Dir = DirStats{
				Files:    info.Files,
				Subdirs:  info.Subdirs,
				RFiles:   info.RFiles,
				RSubdirs: info.RSubdirs,
				RBytes:   info.RBytes,
				RCtime:   info.Rctime,
			}
		}

		i.Version = info.Version
	}
	i.Mu.Unlock()

	if info.Symlink != "" {
		if uint64(len(info.Symlink)) != info.Size {
			return newError(IO, "fillInode", nil)
		}
		if _, already := i.SymlinkTarget(); !already {
			i.SetSymlinkTarget(info.Symlink)
		}
	}

	if err := mergeFragSplits(i, info.FragTree); err != nil {
		// Fragment-node allocation failure degrades delegation accuracy
		// but never aborts the trace walk (spec §5, §7).
		if logger != nil {
			logger.WarnContext(ctx, "fragtree merge incomplete", "ino", i.Vino.Ino, "err", err)
		}
	}
	if dirfrag != nil {
		if err := mergeDirfrag(i, *dirfrag); err != nil && logger != nil {
			logger.WarnContext(ctx, "dirfrag merge incomplete", "ino", i.Vino.Ino, "err", err)
		}
	}

	return nil
}

func mergeFragSplits(i *Inode, splits []mds.FragSplit) error {
	i.fragMu.Lock()
	defer i.fragMu.Unlock()
	for _, s := range splits {
		n, err := i.Frag.GetOrCreate(FragId(s.Frag))
		if err != nil {
			return err
		}
		n.SplitBy = s.SplitBy
	}
	return nil
}

func mergeDirfrag(i *Inode, df mds.Dirfrag) error {
	i.fragMu.Lock()
	defer i.fragMu.Unlock()
	n, err := i.Frag.GetOrCreate(FragId(df.Frag))
	if err != nil {
		return err
	}
	n.AuthMDS = df.Auth
	n.Dist = append(n.Dist[:0], df.Dist[:df.NDist]...)
	return nil
}

// Prepopulate implements spec §4.7 "Read-dir Prepopulate": given a readdir
// reply's entries, apply the same lookup/retry-lookup/splice/fill-inode
// pattern as the trace assimilator to each, optionally under a synthesized
// snapdir parent. Entries are processed with bounded concurrency (at most
// maxConcurrent fill-ins in flight); a fill-inode failure is logged and
// skipped rather than aborting the whole listing (spec §4.7 "Skip entries
// whose fill-inode fails").
func Prepopulate(ctx context.Context, host TraceHost, parent *Inode, reply mds.ReplyInfo, session *Session, reqStartedJiffies int64, maxConcurrent int, logger *slog.Logger, metrics telemetry.MetricHandle) error {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}
	metrics.OpsCount(ctx, telemetry.OpTraceAssimilate, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for idx := 0; idx < reply.DirNr; idx++ {
		idx := idx
		g.Go(func() error {
			prepopulateOne(gctx, host, parent, reply, idx, session, reqStartedJiffies, logger, metrics)
			return nil
		})
	}

	return g.Wait()
}

func prepopulateOne(ctx context.Context, host TraceHost, parent *Inode, reply mds.ReplyInfo, idx int, session *Session, reqStartedJiffies int64, logger *slog.Logger, metrics telemetry.MetricHandle) {
	name := reply.DirDName[idx]
	info := reply.DirIn[idx]
	vino := vinoOf(info)

	target, found := host.LookupDentry(ctx, parent, name)
	if found && target.Inode != nil && target.Inode.Vino != vino {
		host.DeleteDentry(ctx, target)
		found = false
	}
	if !found {
		target = host.NewNegativeDentry(ctx, parent, name)
	}

	next, _, err := host.GetOrCreateInode(ctx, vino)
	if err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "prepopulate: inode allocation failed", "name", name, "err", err)
		}
		metrics.OpsErrorCount(ctx, telemetry.OpTraceAssimilate, OutOfMemory.String(), 1)
		return
	}

	dlease := leaseAt(reply.DirDLease, idx)
	haveLease := CapMask(dlease.Mask).Has(CapDN)

	attached, _, err := Splice(ctx, host, target, next, haveLease)
	if err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "prepopulate: splice failed", "name", name, "err", err)
		}
		kind := "Unknown"
		var cacheErr *Error
		if errors.As(err, &cacheErr) {
			kind = cacheErr.Kind.String()
		}
		metrics.OpsErrorCount(ctx, telemetry.OpTraceAssimilate, kind, 1)
		return
	}

	if haveLease {
		UpdateDentryLease(attached, LeaseInfo{Mask: CapMask(dlease.Mask), DurationMs: dlease.DurationMs}, session, reqStartedJiffies, parentVersion(parent), nil)
	}

	ilease := leaseAt(reply.DirILease, idx)
	UpdateInodeLease(next, LeaseInfo{Mask: CapMask(ilease.Mask), DurationMs: ilease.DurationMs}, session, reqStartedJiffies)

	if err := fillInode(ctx, next, info, reply.DirDir, logger); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "prepopulate: fill-inode failed", "name", name, "err", err)
		}
		host.DeleteDentry(ctx, attached)
	}
}
