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
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// XattrEntry is one decoded (name, value) pair from an xattr blob.
type XattrEntry struct {
	Name  string
	Value []byte
}

// DecodeXattrBlob decodes spec §4.8's wire form: u32 count, repeated
// {u32 nlen, bytes name, u32 vlen, bytes value}. Returns IO if the blob is
// truncated or otherwise malformed (spec §7 "Xattr blob malformed").
func DecodeXattrBlob(blob []byte) ([]XattrEntry, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	r := bytes.NewReader(blob)

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, newError(IO, "DecodeXattrBlob", err)
	}

	entries := make([]XattrEntry, 0, count)
	for idx := uint32(0); idx < count; idx++ {
		name, err := readLenPrefixed(r)
		if err != nil {
			return nil, newError(IO, "DecodeXattrBlob", fmt.Errorf("entry %d name: %w", idx, err))
		}
		value, err := readLenPrefixed(r)
		if err != nil {
			return nil, newError(IO, "DecodeXattrBlob", fmt.Errorf("entry %d value: %w", idx, err))
		}
		entries = append(entries, XattrEntry{Name: string(name), Value: value})
	}
	return entries, nil
}

func readLenPrefixed(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n > 0 {
		m, err := r.Read(buf)
		if err != nil {
			return nil, err
		}
		if m != len(buf) {
			return nil, fmt.Errorf("short read: %d of %d bytes", m, n)
		}
	}
	return buf, nil
}

// EncodeXattrBlob is the inverse of DecodeXattrBlob; encode-then-decode is
// identity (spec §8 round-trip property).
func EncodeXattrBlob(entries []XattrEntry) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, binary.BigEndian, uint32(len(e.Name)))
		buf.WriteString(e.Name)
		binary.Write(&buf, binary.BigEndian, uint32(len(e.Value)))
		buf.Write(e.Value)
	}
	return buf.Bytes()
}

// Virtual xattr names (spec §4.8), in the table order listxattr must emit
// them.
const (
	vxattrDirEntries  = "user.ceph.dir.entries"
	vxattrDirFiles    = "user.ceph.dir.files"
	vxattrDirSubdirs  = "user.ceph.dir.subdirs"
	vxattrDirRentries = "user.ceph.dir.rentries"
	vxattrDirRfiles   = "user.ceph.dir.rfiles"
	vxattrDirRsubdirs = "user.ceph.dir.rsubdirs"
	vxattrDirRbytes   = "user.ceph.dir.rbytes"
	vxattrDirRctime   = "user.ceph.dir.rctime"
)

var virtualXattrNames = []string{
	vxattrDirEntries,
	vxattrDirFiles,
	vxattrDirSubdirs,
	vxattrDirRentries,
	vxattrDirRfiles,
	vxattrDirRsubdirs,
	vxattrDirRbytes,
	vxattrDirRctime,
}

// formatVirtualXattr renders a virtual xattr's value from a directory's
// cached stats (spec §4.8 "Virtual xattrs"). ok is false if name is not a
// virtual xattr; whether the inode is a directory is checked by the caller.
//
// rsubdirs is implemented correctly here (returns RSubdirs, not Subdirs) —
// see DESIGN.md for why the original's apparent swap is not reproduced.
func formatVirtualXattr(name string, d DirStats) (string, bool) {
	switch name {
	case vxattrDirEntries:
		return fmt.Sprintf("%d", d.Files+d.Subdirs), true
	case vxattrDirFiles:
		return fmt.Sprintf("%d", d.Files), true
	case vxattrDirSubdirs:
		return fmt.Sprintf("%d", d.Subdirs), true
	case vxattrDirRentries:
		return fmt.Sprintf("%d", d.RFiles+d.RSubdirs), true
	case vxattrDirRfiles:
		return fmt.Sprintf("%d", d.RFiles), true
	case vxattrDirRsubdirs:
		return fmt.Sprintf("%d", d.RSubdirs), true
	case vxattrDirRbytes:
		return fmt.Sprintf("%d", d.RBytes), true
	case vxattrDirRctime:
		return fmt.Sprintf("%d.%09d", d.RCtime.Unix(), d.RCtime.Nanosecond()), true
	default:
		return "", false
	}
}

// GetXattr implements spec §4.8 "Get": if name matches a virtual xattr, it
// is formatted from i's cached directory stats (NotFound if i is not a
// directory); otherwise the real xattr blob is linearly scanned, returning
// NoData if absent or IO if the blob is malformed. In either case the
// result is subject to the same size/Range contract as ListXattr: buf's
// length of 0 measures the value without copying it, a non-zero buf
// shorter than the value returns Range, and otherwise the value is copied
// into buf and its length returned (spec §4.8 "Get", §8 boundary behavior:
// "getxattr with size == 0 returns required length; with size < len
// returns Range").
func GetXattr(i *Inode, name string, buf []byte) (int, error) {
	i.Mu.Lock()
	defer i.Mu.Unlock()

	var value []byte
	if v, ok := formatVirtualXattr(name, i.Dir); ok {
		if !i.IsDir {
			return 0, newError(NotFound, "GetXattr", nil)
		}
		value = []byte(v)
	} else {
		entries, err := DecodeXattrBlob(i.XattrBlob)
		if err != nil {
			return 0, err
		}
		found := false
		for _, e := range entries {
			if e.Name == name {
				value = e.Value
				found = true
				break
			}
		}
		if !found {
			return 0, newError(NoData, "GetXattr", nil)
		}
	}

	if len(buf) == 0 {
		return len(value), nil
	}
	if len(buf) < len(value) {
		return 0, newError(Range, "GetXattr", nil)
	}
	return copy(buf, value), nil
}

// ListXattr implements spec §4.8 "List": enumerates real xattr names, and
// for directories appends all virtual names, applying the size==0 (return
// required length) / size<need (Range) contract. Per spec §9's resolved
// open question, the measurement path (size==0) always includes virtual
// xattr name lengths for directories, matching the write path.
func ListXattr(i *Inode, buf []byte) (int, error) {
	i.Mu.Lock()
	defer i.Mu.Unlock()

	entries, err := DecodeXattrBlob(i.XattrBlob)
	if err != nil {
		return 0, err
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if i.IsDir {
		names = append(names, virtualXattrNames...)
	}

	need := 0
	for _, n := range names {
		need += len(n) + 1 // NUL terminator
	}

	if len(buf) == 0 {
		return need, nil
	}
	if len(buf) < need {
		return 0, newError(Range, "ListXattr", nil)
	}

	off := 0
	for _, n := range names {
		off += copy(buf[off:], n)
		buf[off] = 0
		off++
	}
	return need, nil
}

// SetXattr implements spec §4.8 "Set": only user.-prefixed names are
// permitted; virtual xattrs cannot be set. The caller is responsible for
// releasing the inode lease and dispatching the MDS request (external
// collaborator, spec §1); this function only validates and updates the
// local blob optimistically.
func SetXattr(i *Inode, name string, value []byte) error {
	if !strings.HasPrefix(name, "user.") {
		return newError(NotSupported, "SetXattr", nil)
	}
	for _, v := range virtualXattrNames {
		if name == v {
			return newError(NotSupported, "SetXattr", nil)
		}
	}

	i.Mu.Lock()
	defer i.Mu.Unlock()

	entries, err := DecodeXattrBlob(i.XattrBlob)
	if err != nil {
		return err
	}
	replaced := false
	for idx := range entries {
		if entries[idx].Name == name {
			entries[idx].Value = value
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, XattrEntry{Name: name, Value: value})
	}
	i.XattrBlob = EncodeXattrBlob(entries)
	return nil
}

// RemoveXattr implements spec §4.8 "Remove": only user.-prefixed real
// xattrs can be removed.
func RemoveXattr(i *Inode, name string) error {
	if !strings.HasPrefix(name, "user.") {
		return newError(NotSupported, "RemoveXattr", nil)
	}

	i.Mu.Lock()
	defer i.Mu.Unlock()

	entries, err := DecodeXattrBlob(i.XattrBlob)
	if err != nil {
		return err
	}
	out := entries[:0]
	found := false
	for _, e := range entries {
		if e.Name == name {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return newError(NoData, "RemoveXattr", nil)
	}
	i.XattrBlob = EncodeXattrBlob(out)
	return nil
}
