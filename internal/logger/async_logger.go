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

package logger

import (
	"fmt"
	"io"
	"os"
)

// AsyncLogger decouples log writers (trace assimilation, lease renewal, the
// cap engine) from the latency of the underlying sink (typically a rotated
// file) by buffering writes on a channel drained by a single goroutine.
type AsyncLogger struct {
	out    io.WriteCloser
	msgs   chan []byte
	done   chan struct{}
	closed chan struct{}
}

// NewAsyncLogger wraps out with a buffered channel of the given capacity.
// When the buffer is full, writes are dropped rather than blocking the
// caller, with a warning to stderr.
func NewAsyncLogger(out io.WriteCloser, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		out:    out,
		msgs:   make(chan []byte, bufferSize),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}

	go l.run()

	return l
}

func (l *AsyncLogger) run() {
	defer close(l.closed)

	for {
		select {
		case b, ok := <-l.msgs:
			if !ok {
				return
			}
			_, _ = l.out.Write(b)
		case <-l.done:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case b := <-l.msgs:
					_, _ = l.out.Write(b)
				default:
					return
				}
			}
		}
	}
}

// Write implements io.Writer. p is copied so the caller's buffer can be
// reused immediately.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	b := make([]byte, len(p))
	copy(b, p)

	select {
	case l.msgs <- b:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}

	return len(p), nil
}

// Close stops the background writer after draining pending messages and
// closes the underlying sink.
func (l *AsyncLogger) Close() error {
	close(l.done)
	<-l.closed

	return l.out.Close()
}
