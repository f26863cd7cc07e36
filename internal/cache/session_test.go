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
	"github.com/stretchr/testify/require"
)

func TestNewSession_StartsAtGenerationZero(t *testing.T) {
	s := NewSession(1)
	assert.Equal(t, uint64(0), s.CapGen)
	assert.Equal(t, 1, s.MDSID)
}

func TestSession_Active(t *testing.T) {
	s := NewSession(1)
	s.Bump(100)

	assert.True(t, s.Active(50))
	assert.False(t, s.Active(100))
	assert.False(t, s.Active(150))
}

func TestSession_BumpIncrementsGeneration(t *testing.T) {
	s := NewSession(1)
	require.Equal(t, uint64(0), s.CapGen)

	s.Bump(10)
	assert.Equal(t, uint64(1), s.CapGen)

	s.Bump(20)
	assert.Equal(t, uint64(2), s.CapGen)
}

func TestSession_InodeLeaseFIFOTouchOrder(t *testing.T) {
	s := NewSession(1)
	a := NewInode(VersionedIno{Ino: 1, Snap: NOSNAP}, nil)
	b := NewInode(VersionedIno{Ino: 2, Snap: NOSNAP}, nil)

	na := s.pushInodeLease(a)
	s.pushInodeLease(b)
	require.Equal(t, 2, s.inodeLeases.Len())

	assert.Same(t, a, s.inodeLeases.PeekHead())

	s.touchInodeLease(na)
	assert.Same(t, b, s.inodeLeases.PeekHead(), "touching a moves it to the tail")
}
