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

import "sync"

// ioContext is the per-reactor registry described by the data model: the
// authoritative channel->Linkage map for connections owned by one reactor,
// plus the outgoing-reconnect metadata and factory-owned-handler bookkeeping
// that survive a Linkage's death. One mutex guards all three maps; it must
// never be held while calling into a Linkage, to avoid deadlocking against
// the reactor goroutine that owns that Linkage.
type ioContext struct {
	mu        sync.Mutex
	alloc     *channelAllocator
	linkages  map[Channel]*Linkage
	outgoing  map[Channel]*OutgoingInfo
	ownedHdls map[Channel]EasyHandler
}

func newIoContext(reactorIndex, slots uint32) *ioContext {
	return &ioContext{
		alloc:     newChannelAllocator(reactorIndex, slots),
		linkages:  make(map[Channel]*Linkage),
		outgoing:  make(map[Channel]*OutgoingInfo),
		ownedHdls: make(map[Channel]EasyHandler),
	}
}

func (c *ioContext) allocate(outgoing bool) Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alloc.next(outgoing)
}

func (c *ioContext) attach(ch Channel, l *Linkage) {
	c.mu.Lock()
	c.linkages[ch] = l
	c.mu.Unlock()
}

func (c *ioContext) lookup(ch Channel) (*Linkage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.linkages[ch]
	return l, ok
}

func (c *ioContext) detach(ch Channel) {
	c.mu.Lock()
	delete(c.linkages, ch)
	c.mu.Unlock()
}

func (c *ioContext) setOutgoing(ch Channel, info *OutgoingInfo) {
	c.mu.Lock()
	c.outgoing[ch] = info
	c.mu.Unlock()
}

func (c *ioContext) getOutgoing(ch Channel) (*OutgoingInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.outgoing[ch]
	return info, ok
}

// forget removes OutgoingInfo for ch. If no live Linkage remains either, the
// owned handler (if any) is dropped and returned for shutdown by the caller.
func (c *ioContext) forget(ch Channel) (owned EasyHandler, hadInfo bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, hadInfo = c.outgoing[ch]
	delete(c.outgoing, ch)
	if _, live := c.linkages[ch]; !live {
		owned = c.ownedHdls[ch]
		delete(c.ownedHdls, ch)
	}
	return owned, hadInfo
}

func (c *ioContext) setOwnedHandler(ch Channel, h EasyHandler) {
	c.mu.Lock()
	c.ownedHdls[ch] = h
	c.mu.Unlock()
}

// snapshot returns the channels currently attached, for the health-check
// timer and admin introspection to iterate without holding the mutex.
func (c *ioContext) snapshot() []*Linkage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Linkage, 0, len(c.linkages))
	for _, l := range c.linkages {
		out = append(out, l)
	}
	return out
}

// drain empties all three maps, returning every live Linkage and owned
// handler so shutdown can dispose of them outside the lock.
func (c *ioContext) drain() ([]*Linkage, []EasyHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	linkages := make([]*Linkage, 0, len(c.linkages))
	for _, l := range c.linkages {
		linkages = append(linkages, l)
	}
	handlers := make([]EasyHandler, 0, len(c.ownedHdls))
	for _, h := range c.ownedHdls {
		handlers = append(handlers, h)
	}
	c.linkages = make(map[Channel]*Linkage)
	c.outgoing = make(map[Channel]*OutgoingInfo)
	c.ownedHdls = make(map[Channel]EasyHandler)
	return linkages, handlers
}
