/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package linkage

// Status is the outcome of one AbstractIo operation.
type Status uint8

const (
	// StatusOk means the operation completed; consult the returned count.
	StatusOk Status = iota
	// StatusBug means the operation was called in an invalid state.
	StatusBug
	// StatusError means the underlying transport failed; the Linkage closes.
	StatusError
	// StatusJammed means the kernel or TLS engine refused more output.
	StatusJammed
	// StatusClosed means the peer closed the connection (EOF or close_notify).
	StatusClosed
	// StatusWantRead means the caller must re-arm read interest and retry.
	StatusWantRead
	// StatusWantWrite means the caller must re-arm write interest and retry.
	StatusWantWrite
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusBug:
		return "bug"
	case StatusError:
		return "error"
	case StatusJammed:
		return "jammed"
	case StatusClosed:
		return "closed"
	case StatusWantRead:
		return "want_read"
	case StatusWantWrite:
		return "want_write"
	default:
		return "unknown"
	}
}

// Action is an immediate action an AbstractIo asks its Linkage to perform
// right after attach.
type Action uint8

const (
	// ActionNone means the connection is already usable (accepted plain socket).
	ActionNone Action = iota
	// ActionConnect means a non-blocking connect is in progress.
	ActionConnect
	// ActionAccept means a TLS server handshake must run before Open.
	ActionAccept
)
