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

import "fmt"

// ErrorKind is the closed error-kind surface the core reports to the host
// VFS (spec §6/§7). Callers should compare with errors.Is against the
// sentinel values below rather than switching on ErrorKind directly, since
// every returned error is wrapped with additional context via fmt.Errorf.
type ErrorKind int

const (
	NotFound ErrorKind = iota + 1
	ReadOnly
	NotSupported
	NoData
	Range
	IO
	OutOfMemory
	Invalid
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case ReadOnly:
		return "ReadOnly"
	case NotSupported:
		return "NotSupported"
	case NoData:
		return "NoData"
	case Range:
		return "Range"
	case IO:
		return "IO"
	case OutOfMemory:
		return "OutOfMemory"
	case Invalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Error pairs an ErrorKind with the operation that produced it, following
// the teacher's convention of wrapping GCS errors with operation context
// rather than returning bare sentinels.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so callers can
// do errors.Is(err, cache.ErrNotFound) by constructing a bare &Error{Kind: ...}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinel kinds for use with errors.Is, e.g. errors.Is(err, cache.ErrNotFound).
var (
	ErrNotFound     = &Error{Kind: NotFound}
	ErrReadOnly     = &Error{Kind: ReadOnly}
	ErrNotSupported = &Error{Kind: NotSupported}
	ErrNoData       = &Error{Kind: NoData}
	ErrRange        = &Error{Kind: Range}
	ErrIO           = &Error{Kind: IO}
	ErrOutOfMemory  = &Error{Kind: OutOfMemory}
	ErrInvalid      = &Error{Kind: Invalid}
)
