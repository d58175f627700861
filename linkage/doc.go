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

// Package linkage implements EasyServer, an embeddable TCP/TLS server and
// client engine built on a fixed pool of reactor goroutines.
//
// A small number of reactors each run an event loop over their own attached
// connections (Linkages), driven by a buffered command channel rather than
// a raw poller: every Linkage owns one blocking reader goroutine that feeds
// parsed reads back to its reactor as a command. This keeps the "serialized
// callbacks per reactor, no locks on the hot path" guarantee of the original
// design while mapping naturally onto goroutines and channels instead of
// epoll and condition variables.
//
// Incoming and outgoing connections share one Channel identifier space.
// EasyServer owns channel allocation, cross-reactor routing of Send and
// Disconnect, and an optional bounded worker pool for message dispatch.
package linkage
