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

// PageTruncator is the host VFS hook the Pending Truncate Worker drives,
// scoped down from vfsshim.HostVFS (spec §4.6).
type PageTruncator interface {
	TruncatePages(ctx context.Context, i *Inode, size uint64) error
}

// SetVmtruncateTo implements spec §4.6 "set_vmtruncate_to": called by cap
// processing when the MDS commits a new size smaller than what the page
// cache holds. Records the target under i.Mu so ApplyPending can later
// consume it atomically (spec invariant 8).
func SetVmtruncateTo(i *Inode, to uint64) {
	i.Mu.Lock()
	defer i.Mu.Unlock()
	i.PendingTruncateTo = int64(to)
}

// ApplyPending implements spec §4.6 "apply_pending": atomically reads and
// clears pending_truncate_to, truncates pages to that value, and if
// wrbuffer_ref == 0, schedules a cap check so unused write caps can be
// returned. Must be called under the inode's write mutex (the caller's
// responsibility per spec §4.6; here that is i.Mu itself, since this core
// has no separate write mutex type).
func ApplyPending(ctx context.Context, i *Inode, pages PageTruncator, checker CapChecker) error {
	i.Mu.Lock()
	to := i.PendingTruncateTo
	if to < 0 {
		i.Mu.Unlock()
		return nil
	}
	i.PendingTruncateTo = -1
	wrBufferRef := i.Refs.WrBuffer
	i.Mu.Unlock()

	if err := pages.TruncatePages(ctx, i, uint64(to)); err != nil {
		return newError(IO, "ApplyPending", err)
	}

	if wrBufferRef == 0 && checker != nil {
		checker.ScheduleCapCheck(ctx, i)
	}
	return nil
}
