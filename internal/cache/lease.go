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

	"github.com/goceph/cephfs-cache/internal/telemetry"
)

// LeaseInfo is the decoded lease field of an MDS reply (spec §6
// "lease = { mask, duration_ms }").
type LeaseInfo struct {
	Mask       CapMask
	DurationMs int64
}

// UpdateInodeLease implements spec §4.3 "update_inode_lease": computes
// ttl = reqStartedJiffies + duration_ms*HZ/1000 and accepts the new lease
// iff there is no existing TTL, or newTTL >= existingTTL, or the session
// generation has rolled; and either there is no current session or it is
// the same session. On accept, writes (ttl, gen, mask), moves the record to
// the session's inode_leases tail, and takes an inode reference on first
// attach. Returns the effective mask, 0 if not accepted.
func UpdateInodeLease(i *Inode, info LeaseInfo, session *Session, reqStartedJiffies int64) CapMask {
	i.Mu.Lock()
	defer i.Mu.Unlock()

	l := &i.lease
	newTTL := reqStartedJiffies + MillisToJiffies(info.DurationMs)

	sameOrNoSession := l.session == nil || l.session == session
	genRolled := l.session != nil && session != nil && l.gen != session.CapGen
	accept := sameOrNoSession && (!l.linked || newTTL >= l.ttl || genRolled)

	if !accept {
		return 0
	}

	firstAttach := !l.linked
	l.session = session
	l.gen = session.CapGen
	l.ttl = newTTL
	l.mask = info.Mask

	if firstAttach {
		i.IncLookupCount()
		l.node = session.pushInodeLease(i)
		l.linked = true
	} else {
		session.touchInodeLease(l.node)
	}

	return l.mask
}

// InodeLeaseValid implements spec §4.3 "inode_lease_valid": have = lease
// mask, folded with ICONTENT if requested and any cap on this inode
// includes EXCL (ICONTENT also implies DN, RD and RDCache); valid iff the session
// is still active at nowJiffies and bound to the same generation as the
// lease, and (have & mask) == mask. Records a cache hit/miss against
// metrics (nil-safe) so the Lease Engine's local-answer rate is observable.
func InodeLeaseValid(ctx context.Context, i *Inode, mask CapMask, nowJiffies int64, metrics telemetry.MetricHandle) bool {
	i.Mu.Lock()
	valid := func() bool {
		l := &i.lease
		if !l.linked || l.session == nil {
			return false
		}

		have := l.mask
		if mask.Any(CapICONTENT) && i.IssuedMask().Has(CapEXCL) {
			have |= CapICONTENT
		}
		if have.Any(CapICONTENT) {
			have |= CapICONTENT | CapDN | CapRD | CapRDCache
		}

		sessionLive := l.session.CapGen == l.gen && nowJiffies < l.session.CapTTL
		return sessionLive && nowJiffies < l.ttl && have.Has(mask)
	}()
	i.Mu.Unlock()

	if metrics != nil {
		metrics.CacheHitCount(ctx, telemetry.OpInodeLeaseCheck, valid, 1)
	}
	return valid
}

// UpdateDentryLease implements spec §4.3 "update_dentry_lease". If info
// carries an empty mask, the parent inode's current version is recorded as
// the dentry's d_time so an implicit directory-wide lease can later cover
// it. Otherwise the lease is installed or refreshed: the existing record is
// reused if the session matches, or a new one is allocated on first attach
// (taking a host dentry reference via the caller-supplied onFirstAttach). A
// lease from the same session is never replaced by an older one.
func UpdateDentryLease(d *Dentry, info LeaseInfo, session *Session, reqStartedJiffies int64, parentVersion uint64, onFirstAttach func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	l := &d.lease

	if info.Mask == 0 {
		l.dTime = parentVersion
		return
	}

	newTTL := reqStartedJiffies + MillisToJiffies(info.DurationMs)

	if l.linked && l.session == session && newTTL < l.ttl {
		// Never replace a newer lease with an older one from the same session.
		return
	}

	firstAttach := !l.linked
	l.session = session
	l.gen = session.CapGen
	l.ttl = newTTL

	if firstAttach {
		if onFirstAttach != nil {
			onFirstAttach()
		}
		l.node = session.pushDentryLease(d)
		l.linked = true
	} else {
		session.touchDentryLease(l.node)
	}
}

// DentryLeaseValid reports whether d's own lease (not an implicit
// directory-wide one) is still live at nowJiffies. Records a cache
// hit/miss against metrics (nil-safe).
func DentryLeaseValid(ctx context.Context, d *Dentry, nowJiffies int64, metrics telemetry.MetricHandle) bool {
	d.mu.Lock()
	valid := func() bool {
		l := &d.lease
		if !l.linked || l.session == nil {
			return false
		}
		return l.session.CapGen == l.gen && nowJiffies < l.session.CapTTL && nowJiffies < l.ttl
	}()
	d.mu.Unlock()

	if metrics != nil {
		metrics.CacheHitCount(ctx, telemetry.OpDentryLeaseCheck, valid, 1)
	}
	return valid
}

// DentryHasImplicitLease reports whether the parent inode's directory-wide
// ICONTENT lease, still valid at nowJiffies, covers d via its recorded
// d_time matching the parent's current version.
func DentryHasImplicitLease(ctx context.Context, d *Dentry, parent *Inode, nowJiffies int64, metrics telemetry.MetricHandle) bool {
	if !InodeLeaseValid(ctx, parent, CapICONTENT, nowJiffies, metrics) {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	parent.Mu.Lock()
	parentVersion := parent.Version
	parent.Mu.Unlock()

	return d.lease.dTime == parentVersion
}
