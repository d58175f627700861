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

import "github.com/yiyuanzhong/flinter-sub000/certificates"

// OutgoingInfo is the immutable metadata EasyServer keeps for an outgoing
// channel so it can be reconnected after its Linkage dies. It is removed
// only by Forget.
type OutgoingInfo struct {
	Host    string
	Port    int
	TLS     certificates.TLSConfig // nil for plain TCP
	Reactor uint32

	handler  EasyHandler
	factory  EasyHandlerFactory
	borrowed bool
}

// Handler returns the EasyHandler to use for a (re)connect: the borrowed
// instance if one was supplied, or a freshly produced one otherwise.
func (o *OutgoingInfo) Handler(channel Channel) EasyHandler {
	if o.borrowed {
		return o.handler
	}
	return o.factory(channel)
}
