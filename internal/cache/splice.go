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

// HostDentryOps is the narrow slice of vfsshim.HostVFS the Dentry Splice
// step needs: the "materialise unique" primitive and dentry
// hash/rehash, scoped down from the full collaborator contract so splice.go
// can be tested with a minimal fake.
type HostDentryOps interface {
	// MaterialiseUnique binds d to in, or returns an existing alias to
	// prefer instead (spec §4.5).
	MaterialiseUnique(ctx context.Context, d *Dentry, in *Inode) (result *Dentry, isAlias bool, err error)
	Hash(ctx context.Context, d *Dentry)
	Unhash(ctx context.Context, d *Dentry)
	IsHashed(d *Dentry) bool
}

// Splice implements spec §4.5 "splice(dn, in, prehash)": unhash dn if
// hashed; ask the host to materialise a unique binding to in. If the host
// returns an existing alias, drop dn and adopt the alias (re-initializing
// its lease side record); if prehash was requested and the result is
// unhashed, rehash it. On error, prehash is cleared so the caller does not
// rehash a broken binding. Returns the dentry now bound to in (either dn or
// the alias) and the possibly-cleared prehash flag.
func Splice(ctx context.Context, host HostDentryOps, dn *Dentry, in *Inode, prehash bool) (*Dentry, bool, error) {
	if host.IsHashed(dn) {
		host.Unhash(ctx, dn)
	}

	result, isAlias, err := host.MaterialiseUnique(ctx, dn, in)
	if err != nil {
		return dn, false, err
	}

	final := dn
	if isAlias {
		final = result
		final.lease = dentryLease{}
	} else {
		final.Bind(in)
	}

	if prehash && !host.IsHashed(final) {
		host.Hash(ctx, final)
	}

	return final, prehash, nil
}
