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

func TestList_NewIsEmpty(t *testing.T) {
	var l List[int]
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Len())
}

func TestList_PushTailAndPopHead(t *testing.T) {
	var l List[int]
	l.PushTail(4)
	l.PushTail(5)
	l.PushTail(6)
	require.Equal(t, 3, l.Len())

	assert.Equal(t, 4, l.PopHead())
	assert.Equal(t, 5, l.PopHead())
	assert.Equal(t, 6, l.PopHead())
	assert.True(t, l.IsEmpty())
}

func TestList_PopHeadEmptyPanics(t *testing.T) {
	var l List[int]
	assert.Panics(t, func() { l.PopHead() })
}

func TestList_PeekHeadEmptyPanics(t *testing.T) {
	var l List[int]
	assert.Panics(t, func() { l.PeekHead() })
}

func TestList_PeekHeadDoesNotRemove(t *testing.T) {
	var l List[int]
	l.PushTail(4)
	require.Equal(t, 4, l.PeekHead())
	assert.Equal(t, 1, l.Len())
}

func TestList_MoveToTailReordersWithoutResizing(t *testing.T) {
	var l List[int]
	n4 := l.PushTail(4)
	l.PushTail(5)
	l.PushTail(6)
	require.Equal(t, 3, l.Len())

	l.MoveToTail(n4)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 5, l.PopHead())
	assert.Equal(t, 6, l.PopHead())
	assert.Equal(t, 4, l.PopHead())
}

func TestList_RemoveMidList(t *testing.T) {
	var l List[int]
	l.PushTail(4)
	n5 := l.PushTail(5)
	l.PushTail(6)

	l.Remove(n5)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 4, l.PopHead())
	assert.Equal(t, 6, l.PopHead())
}

func TestList_RemoveNotLinkedIsNoop(t *testing.T) {
	var l List[int]
	n := l.PushTail(4)
	l.Remove(n)
	require.Equal(t, 0, l.Len())

	l.Remove(n)
	assert.Equal(t, 0, l.Len())
}

func TestNode_LinkedReflectsListMembership(t *testing.T) {
	var l List[int]
	n := l.PushTail(4)
	assert.True(t, n.Linked())

	l.Remove(n)
	assert.False(t, n.Linked())
}

func TestNode_ValueSurvivesRemoval(t *testing.T) {
	var l List[int]
	n := l.PushTail(4)
	l.Remove(n)
	assert.Equal(t, 4, n.Value())
}
