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

// listNode is one link of a List. Embedding it in a lease record (by value)
// lets the list splice a record in or out in O(1) without a separate map
// from value to node, the way common.Queue's node[T] does for push/pop --
// generalized here to support mid-list removal and move-to-tail, which a
// session's lease FIFO needs on every touch (spec §3 "Session").
type listNode[T any] struct {
	prev, next *listNode[T]
	value      T
	linked     bool
}

// List is a doubly-linked FIFO supporting O(1) push-to-tail, pop-from-head,
// and move-to-tail of an already-linked node. It generalizes
// common.Queue[T] (push/pop only) because the Lease Engine must move a
// touched lease to the tail of its session's list without removing and
// re-adding it (spec §4.3, invariant 5).
type List[T any] struct {
	head, tail *listNode[T]
	size       int
}

// Node is an opaque handle returned by PushTail, passed back to MoveToTail
// and Remove. The zero Node is not linked into any List.
type Node[T any] struct {
	n *listNode[T]
}

// Linked reports whether n currently belongs to a List.
func (n Node[T]) Linked() bool {
	return n.n != nil && n.n.linked
}

// Value returns the value stored at n. Valid even if n is not Linked.
func (n Node[T]) Value() T {
	return n.n.value
}

// PushTail appends value and returns a handle for later MoveToTail/Remove.
func (l *List[T]) PushTail(value T) Node[T] {
	n := &listNode[T]{value: value, linked: true}
	l.linkTail(n)
	return Node[T]{n}
}

func (l *List[T]) linkTail(n *listNode[T]) {
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	n.linked = true
	l.size++
}

func (l *List[T]) unlink(n *listNode[T]) {
	if !n.linked {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	n.linked = false
	l.size--
}

// MoveToTail relinks n, already a member of l, to the tail, implementing
// the "touching a lease moves it to the tail" invariant (spec §3 invariant
// 5). If n is not currently linked, it is linked as if by PushTail.
func (l *List[T]) MoveToTail(n Node[T]) {
	if n.n.linked {
		l.unlink(n.n)
	}
	l.linkTail(n.n)
}

// Remove unlinks n from l. A no-op if n is not linked.
func (l *List[T]) Remove(n Node[T]) {
	l.unlink(n.n)
}

// PopHead removes and returns the value at the head of the list.
// Panics if the list is empty.
func (l *List[T]) PopHead() T {
	if l.head == nil {
		panic("llist: PopHead called on an empty list")
	}
	n := l.head
	l.unlink(n)
	return n.value
}

// PeekHead returns the value at the head without removing it.
// Panics if the list is empty.
func (l *List[T]) PeekHead() T {
	if l.head == nil {
		panic("llist: PeekHead called on an empty list")
	}
	return l.head.value
}

// IsEmpty reports whether the list has no linked nodes.
func (l *List[T]) IsEmpty() bool {
	return l.size == 0
}

// Len reports the number of linked nodes.
func (l *List[T]) Len() int {
	return l.size
}
