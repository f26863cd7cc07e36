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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKindOnly(t *testing.T) {
	err := newError(NotFound, "GetXattr", fmt.Errorf("boom"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrRange))
}

func TestError_UnwrapReturnsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("underlying")
	err := newError(IO, "DecodeXattrBlob", wrapped)

	assert.Same(t, wrapped, errors.Unwrap(err))
}

func TestError_UnwrapNilWhenNoUnderlyingError(t *testing.T) {
	err := newError(NotFound, "GetXattr", nil)
	assert.Nil(t, errors.Unwrap(err))
}

func TestErrorKind_String(t *testing.T) {
	cases := map[ErrorKind]string{
		NotFound:     "NotFound",
		ReadOnly:     "ReadOnly",
		NotSupported: "NotSupported",
		NoData:       "NoData",
		Range:        "Range",
		IO:           "IO",
		OutOfMemory:  "OutOfMemory",
		Invalid:      "Invalid",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestError_ErrorMessageIncludesOp(t *testing.T) {
	err := newError(Range, "ListXattr", nil)
	assert.Contains(t, err.Error(), "ListXattr")
	assert.Contains(t, err.Error(), "Range")
}
