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

import (
	"context"
	"os"
)

// bgListenCtx is used for the handful of net.ListenConfig.Listen calls made
// once at Listen time; there is nothing to cancel, so context.Background is
// correct rather than threading EasyServer's lifecycle context through it.
func bgListenCtx() context.Context {
	return context.Background()
}

// removeStaleSocket best-effort unlinks a leftover Unix socket file from a
// previous, uncleanly-terminated process so bind can reuse the path.
func removeStaleSocket(path string) error {
	return os.Remove(path)
}

// chmodSocket applies the file-based Unix socket permissions required by
// §4.1's listen_unix contract (0600 privileged, 0666 shared).
func chmodSocket(path string, mode uint32) error {
	return os.Chmod(path, os.FileMode(mode))
}
