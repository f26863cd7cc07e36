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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootFrag_IsRoot(t *testing.T) {
	assert.True(t, RootFrag.IsRoot())
	assert.Equal(t, uint(0), RootFrag.Bits())
	assert.Equal(t, uint32(0), RootFrag.Value())
}

func TestFragId_ContainsEverythingAtRoot(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x00ffffff, 0x00800000} {
		assert.True(t, RootFrag.Contains(v), "root frag should contain every value, got false for %#x", v)
	}
}

// Values passed to Contains/Child live in FragId's 24-bit value domain (spec
// §3 "FragId encoding"), so test values stay within that range.

func TestFragId_ChildPartitionsNamespace(t *testing.T) {
	c0 := RootFrag.Child(1, 0)
	c1 := RootFrag.Child(1, 1)

	assert.Equal(t, uint(1), c0.Bits())
	assert.False(t, c0.IsRoot())

	assert.True(t, c0.Contains(0x00000000))
	assert.False(t, c0.Contains(0x00800000))

	assert.True(t, c1.Contains(0x00800000))
	assert.False(t, c1.Contains(0x00000000))
}

func TestFragId_ChildFourWaySplit(t *testing.T) {
	children := []FragId{
		RootFrag.Child(2, 0),
		RootFrag.Child(2, 1),
		RootFrag.Child(2, 2),
		RootFrag.Child(2, 3),
	}

	values := []uint32{0x00000000, 0x00400000, 0x00800000, 0x00c00000}
	for i, v := range values {
		for j, c := range children {
			if i == j {
				assert.True(t, c.Contains(v), "child %d should contain %#x", j, v)
			} else {
				assert.False(t, c.Contains(v), "child %d should not contain %#x", j, v)
			}
		}
	}
}

func TestFragId_String(t *testing.T) {
	assert.Equal(t, "0/00000000", RootFrag.String())
}

func TestMakeFragId_PanicsOnBitsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { MakeFragId(25, 0) })
}

func TestFragId_Child_PanicsOnOverflow(t *testing.T) {
	f := MakeFragId(20, 0)
	assert.Panics(t, func() { f.Child(8, 0) })
}
