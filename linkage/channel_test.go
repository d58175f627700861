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
 */

package linkage

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("channelAllocator", func() {
	It("never hands out the reserved invalid channel", func() {
		a := newChannelAllocator(0, 4)
		for i := 0; i < 100; i++ {
			Expect(a.next(false).IsValid()).To(BeTrue())
		}
	})

	It("tags outgoing channels with the high bit and nothing else", func() {
		a := newChannelAllocator(0, 1)
		in := a.next(false)
		out := a.next(true)

		Expect(in.IsOutgoing()).To(BeFalse())
		Expect(out.IsOutgoing()).To(BeTrue())
		Expect(out &^ channelHighBit).To(Equal(in + 1))
	})

	It("always resolves back to the reactor index it was allocated under", func() {
		const slots = 8
		allocators := make([]*channelAllocator, slots)
		for i := range allocators {
			allocators[i] = newChannelAllocator(uint32(i), slots)
		}

		for _, a := range allocators {
			for i := 0; i < 20; i++ {
				c := a.next(i%2 == 0)
				Expect(c.reactorIndex(slots)).To(Equal(a.index))
			}
		}
	})

	It("never repeats a value across a reactor's lifetime", func() {
		a := newChannelAllocator(0, 1)
		seen := make(map[Channel]bool)
		for i := 0; i < 1000; i++ {
			c := a.next(i%3 == 0)
			Expect(seen[c]).To(BeFalse())
			seen[c] = true
		}
	})
})
