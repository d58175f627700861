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

import "sync/atomic"

// ChannelSnapshot is a point-in-time, read-only view of one live Linkage,
// returned by EasyServer.Channels for the admin introspection surface.
type ChannelSnapshot struct {
	Channel  Channel
	State    LinkState
	Outgoing bool
	Local    string
	Peer     string
}

// Stats is a point-in-time aggregate view of the running EasyServer.
type Stats struct {
	Reactors        int
	Workers         int
	ActiveChannels  int
	IncomingLive    int32 // currently open incoming connections, the value MaximumIncomingConnections caps
	IncomingAccepts int32 // cumulative incoming connections accepted over the server's lifetime
}

// Channels snapshots every live Linkage across all reactors. The IoContext
// mutex is held only long enough to copy each reactor's map, never while
// formatting the result, so this never contends with the reactor hot path
// for more than a few map lookups at a time.
func (s *EasyServer) Channels() []ChannelSnapshot {
	s.mu.Lock()
	reactors := append([]*reactor(nil), s.reactors...)
	s.mu.Unlock()

	out := make([]ChannelSnapshot, 0)
	for _, r := range reactors {
		for _, l := range r.ioctx.snapshot() {
			snap := ChannelSnapshot{
				Channel:  l.Channel(),
				State:    l.State(),
				Outgoing: l.IsOutgoing(),
			}
			if addr := l.LocalAddr(); addr != nil {
				snap.Local = addr.String()
			}
			if addr := l.RemoteAddr(); addr != nil {
				snap.Peer = addr.String()
			}
			out = append(out, snap)
		}
	}
	return out
}

// Stats aggregates reactor/worker counts and connection totals.
func (s *EasyServer) Stats() Stats {
	s.mu.Lock()
	reactors := len(s.reactors)
	workers := 0
	if s.opts != nil {
		workers = s.opts.Workers
	}
	s.mu.Unlock()

	return Stats{
		Reactors:        reactors,
		Workers:         workers,
		ActiveChannels:  len(s.Channels()),
		IncomingLive:    atomic.LoadInt32(&s.incomingLive),
		IncomingAccepts: atomic.LoadInt32(&s.incomingTotal),
	}
}
