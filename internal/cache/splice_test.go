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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHostDentryOps struct {
	hashed map[*Dentry]bool
	alias  *Dentry
	err    error
}

func newFakeHostDentryOps() *fakeHostDentryOps {
	return &fakeHostDentryOps{hashed: map[*Dentry]bool{}}
}

func (f *fakeHostDentryOps) MaterialiseUnique(ctx context.Context, d *Dentry, in *Inode) (*Dentry, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.alias != nil {
		return f.alias, true, nil
	}
	return d, false, nil
}

func (f *fakeHostDentryOps) Hash(ctx context.Context, d *Dentry)   { f.hashed[d] = true }
func (f *fakeHostDentryOps) Unhash(ctx context.Context, d *Dentry) { f.hashed[d] = false }
func (f *fakeHostDentryOps) IsHashed(d *Dentry) bool               { return f.hashed[d] }

func TestSplice_BindsDentryWhenNoAlias(t *testing.T) {
	host := newFakeHostDentryOps()
	dn := NewDentry(newTestInode(), "child")
	in := NewInode(VersionedIno{Ino: 10, Snap: NOSNAP}, nil)

	final, prehashed, err := Splice(context.Background(), host, dn, in, true)

	require.NoError(t, err)
	assert.Same(t, dn, final)
	assert.Same(t, in, final.Inode)
	assert.True(t, prehashed)
	assert.True(t, host.IsHashed(final))
}

func TestSplice_PrefersExistingAliasAndResetsLease(t *testing.T) {
	host := newFakeHostDentryOps()
	alias := NewDentry(newTestInode(), "existing")
	alias.lease.dTime = 99
	alias.lease.linked = true
	host.alias = alias

	dn := NewDentry(newTestInode(), "child")
	in := NewInode(VersionedIno{Ino: 10, Snap: NOSNAP}, nil)

	final, _, err := Splice(context.Background(), host, dn, in, false)

	require.NoError(t, err)
	assert.Same(t, alias, final)
	assert.False(t, final.lease.linked, "adopting an alias reinitializes its lease side record")
}

func TestSplice_UnhashesAlreadyHashedDentryBeforeMaterialising(t *testing.T) {
	host := newFakeHostDentryOps()
	dn := NewDentry(newTestInode(), "child")
	host.hashed[dn] = true

	_, _, err := Splice(context.Background(), host, dn, newTestInode(), false)

	require.NoError(t, err)
	assert.False(t, host.hashed[dn])
}

func TestSplice_ClearsPrehashOnError(t *testing.T) {
	host := newFakeHostDentryOps()
	host.err = errors.New("mds failure")
	dn := NewDentry(newTestInode(), "child")

	final, prehashed, err := Splice(context.Background(), host, dn, newTestInode(), true)

	require.Error(t, err)
	assert.Same(t, dn, final)
	assert.False(t, prehashed, "prehash must be cleared so the caller does not rehash a broken binding")
}
