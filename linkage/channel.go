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

// Channel is an opaque identifier for a logical connection. The high bit
// marks an outgoing channel (1) versus an incoming one (0); the remaining
// 63 bits encode a reactor index in the low bits and a per-reactor
// monotonic counter above it, so the reactor owning a channel is always
// computable from the identifier alone.
type Channel uint64

// InvalidChannel is the reserved zero value; no allocation ever returns it.
const InvalidChannel Channel = 0

// channelHighBit marks an outgoing channel.
const channelHighBit Channel = 1 << 63

// IsOutgoing reports whether c was allocated for an outgoing connection.
func (c Channel) IsOutgoing() bool {
	return c&channelHighBit != 0
}

// IsValid reports whether c is not the reserved invalid value.
func (c Channel) IsValid() bool {
	return c != InvalidChannel
}

// reactorIndex returns the index, in [0, slots), of the reactor that owns c.
func (c Channel) reactorIndex(slots uint32) uint32 {
	return uint32((c &^ channelHighBit) % Channel(slots))
}

// allocator hands out Channel values for one reactor. slots is the total
// reactor count fixed at EasyServer.Initialize; each allocation advances the
// counter by slots so that counter%slots stays constant across the
// allocator's lifetime and equals this reactor's index.
type channelAllocator struct {
	index   uint32
	slots   uint32
	counter uint64
}

func newChannelAllocator(index, slots uint32) *channelAllocator {
	return &channelAllocator{index: index, slots: slots, counter: uint64(index)}
}

// next allocates the next channel for this reactor, tagging it outgoing
// when requested. The counter is advanced before use, so the first
// allocation for any reactor is already non-zero.
func (a *channelAllocator) next(outgoing bool) Channel {
	a.counter += uint64(a.slots)
	c := Channel(a.counter)
	if outgoing {
		c |= channelHighBit
	}
	return c
}
