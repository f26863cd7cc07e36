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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXattrBlob_EncodeDecodeRoundTrip(t *testing.T) {
	entries := []XattrEntry{
		{Name: "user.a", Value: []byte("1")},
		{Name: "user.b", Value: []byte("hello world")},
	}

	blob := EncodeXattrBlob(entries)
	decoded, err := DecodeXattrBlob(blob)

	require.NoError(t, err)
	assert.Equal(t, entries, decoded)
}

func TestDecodeXattrBlob_EmptyBlobIsNoEntries(t *testing.T) {
	decoded, err := DecodeXattrBlob(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeXattrBlob_TruncatedBlobIsIOError(t *testing.T) {
	blob := EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("1")}})
	truncated := blob[:len(blob)-2]

	_, err := DecodeXattrBlob(truncated)

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, IO, cacheErr.Kind)
}

// getXattrValue measures name's length with a size-0 probe, then fetches it
// into an exactly-sized buffer, mirroring the real GetXattr/getxattr(2)
// two-call convention.
func getXattrValue(t *testing.T, i *Inode, name string) []byte {
	t.Helper()
	n, err := GetXattr(i, name, nil)
	require.NoError(t, err)
	buf := make([]byte, n)
	n2, err := GetXattr(i, name, buf)
	require.NoError(t, err)
	return buf[:n2]
}

func TestGetXattr_RealXattrFound(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("v")}})
	i.Mu.Unlock()

	assert.Equal(t, []byte("v"), getXattrValue(t, i, "user.a"))
}

func TestGetXattr_MissingRealXattrIsNoData(t *testing.T) {
	i := newTestInode()
	_, err := GetXattr(i, "user.missing", nil)

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, NoData, cacheErr.Kind)
}

func TestGetXattr_VirtualXattrOnNonDirIsNotFound(t *testing.T) {
	i := newTestInode()
	_, err := GetXattr(i, vxattrDirFiles, nil)

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, NotFound, cacheErr.Kind)
}

func TestGetXattr_VirtualXattrOnDirReturnsRsubdirsNotSubdirs(t *testing.T) {
	i := newTestInode()
	i.IsDir = true
	i.Mu.Lock()
	i.Dir = DirStats{Subdirs: 2, RSubdirs: 7}
	i.Mu.Unlock()

	assert.Equal(t, "7", string(getXattrValue(t, i, vxattrDirRsubdirs)))
}

func TestGetXattr_VirtualXattrRctimeFormatsSecondsAndNanos(t *testing.T) {
	i := newTestInode()
	i.IsDir = true
	i.Mu.Lock()
	i.Dir = DirStats{RCtime: time.Unix(5, 123)}
	i.Mu.Unlock()

	assert.Equal(t, "5.000000123", string(getXattrValue(t, i, vxattrDirRctime)))
}

func TestGetXattr_SizeZeroMeasuresWithoutCopying(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("hello")}})
	i.Mu.Unlock()

	n, err := GetXattr(i, "user.a", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestGetXattr_BufferTooSmallIsRange(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("hello")}})
	i.Mu.Unlock()

	_, err := GetXattr(i, "user.a", make([]byte, 1))

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, Range, cacheErr.Kind)
}

func TestListXattr_SizeZeroMeasuresIncludingVirtualNamesForDir(t *testing.T) {
	i := newTestInode()
	i.IsDir = true
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("v")}})
	i.Mu.Unlock()

	need, err := ListXattr(i, nil)
	require.NoError(t, err)

	want := len("user.a") + 1
	for _, n := range virtualXattrNames {
		want += len(n) + 1
	}
	assert.Equal(t, want, need)
}

func TestListXattr_SizeZeroForNonDirExcludesVirtualNames(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("v")}})
	i.Mu.Unlock()

	need, err := ListXattr(i, nil)
	require.NoError(t, err)
	assert.Equal(t, len("user.a")+1, need)
}

func TestListXattr_BufferTooSmallIsRange(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("v")}})
	i.Mu.Unlock()

	_, err := ListXattr(i, make([]byte, 1))

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, Range, cacheErr.Kind)
}

func TestListXattr_WritesNULTerminatedNames(t *testing.T) {
	i := newTestInode()
	i.Mu.Lock()
	i.XattrBlob = EncodeXattrBlob([]XattrEntry{{Name: "user.a", Value: []byte("v")}})
	i.Mu.Unlock()

	buf := make([]byte, 16)
	n, err := ListXattr(i, buf)

	require.NoError(t, err)
	assert.Equal(t, "user.a\x00", string(buf[:n]))
}

func TestSetXattr_RejectsNonUserPrefix(t *testing.T) {
	i := newTestInode()
	err := SetXattr(i, "security.selinux", []byte("x"))

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, NotSupported, cacheErr.Kind)
}

func TestSetXattr_RejectsVirtualName(t *testing.T) {
	i := newTestInode()
	err := SetXattr(i, vxattrDirFiles, []byte("1"))

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, NotSupported, cacheErr.Kind)
}

func TestSetXattr_AddsNewThenReplacesExisting(t *testing.T) {
	i := newTestInode()
	require.NoError(t, SetXattr(i, "user.a", []byte("1")))
	require.NoError(t, SetXattr(i, "user.a", []byte("2")))

	assert.Equal(t, []byte("2"), getXattrValue(t, i, "user.a"))
}

func TestRemoveXattr_RemovesExisting(t *testing.T) {
	i := newTestInode()
	require.NoError(t, SetXattr(i, "user.a", []byte("1")))

	require.NoError(t, RemoveXattr(i, "user.a"))

	_, err := GetXattr(i, "user.a", nil)
	require.Error(t, err)
}

func TestRemoveXattr_MissingIsNoData(t *testing.T) {
	i := newTestInode()
	err := RemoveXattr(i, "user.missing")

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, NoData, cacheErr.Kind)
}

func TestRemoveXattr_RejectsNonUserPrefix(t *testing.T) {
	i := newTestInode()
	err := RemoveXattr(i, "trusted.foo")

	require.Error(t, err)
	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, NotSupported, cacheErr.Kind)
}
