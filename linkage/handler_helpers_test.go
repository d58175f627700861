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

package linkage_test

import (
	"crypto/tls"
	"encoding/binary"
	"net"
	"sync"

	"github.com/yiyuanzhong/flinter-sub000/certificates"
	"github.com/yiyuanzhong/flinter-sub000/linkage"
)

// lengthPrefixed frames every message as a 4-byte big-endian length header
// followed by the payload, the simplest possible GetMessageLength contract.
func lengthPrefixed(buffered []byte) int {
	if len(buffered) < 4 {
		return 0
	}
	n := int(binary.BigEndian.Uint32(buffered[:4]))
	if len(buffered) < 4+n {
		return 0
	}
	return 4 + n
}

func frame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// echoHandler echoes every frame it receives back verbatim and records every
// lifecycle callback it observes, guarded by a mutex since OnMessage may run
// on a job worker while the test goroutine reads the recorded state.
type echoHandler struct {
	mu sync.Mutex

	srv *linkage.EasyServer

	connected    bool
	disconnected bool
	received     [][]byte
	errs         []error
}

func newEchoHandler(srv *linkage.EasyServer) *echoHandler {
	return &echoHandler{srv: srv}
}

func (h *echoHandler) GetMessageLength(_ linkage.Channel, buffered []byte) int {
	return lengthPrefixed(buffered)
}

func (h *echoHandler) OnMessage(channel linkage.Channel, payload []byte) int {
	h.mu.Lock()
	body := payload[4:]
	h.received = append(h.received, append([]byte(nil), body...))
	h.mu.Unlock()

	_ = h.srv.Send(channel, frame(body))
	return 1
}

func (h *echoHandler) OnConnected(_ linkage.Channel, _, _ net.Addr) bool {
	h.mu.Lock()
	h.connected = true
	h.mu.Unlock()
	return true
}

func (h *echoHandler) OnDisconnected(_ linkage.Channel) {
	h.mu.Lock()
	h.disconnected = true
	h.mu.Unlock()
}

func (h *echoHandler) OnError(_ linkage.Channel, _ bool, err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *echoHandler) messageCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func (h *echoHandler) lastMessage() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.received) == 0 {
		return nil
	}
	return h.received[len(h.received)-1]
}

func (h *echoHandler) isConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

func (h *echoHandler) isDisconnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disconnected
}

// silentHandler never replies; it is used by the timeout scenario where the
// point is that the server evicts the connection on its own.
type silentHandler struct {
	mu           sync.Mutex
	disconnected bool
}

func (h *silentHandler) GetMessageLength(_ linkage.Channel, buffered []byte) int {
	return lengthPrefixed(buffered)
}

func (h *silentHandler) OnMessage(_ linkage.Channel, _ []byte) int { return 1 }

func (h *silentHandler) OnConnected(_ linkage.Channel, _, _ net.Addr) bool { return true }

func (h *silentHandler) OnDisconnected(_ linkage.Channel) {
	h.mu.Lock()
	h.disconnected = true
	h.mu.Unlock()
}

func (h *silentHandler) OnError(_ linkage.Channel, _ bool, _ error) {}

func (h *silentHandler) isDisconnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disconnected
}

// recordingHandler only records received frames; unlike echoHandler it never
// replies, so two recordingHandler/echoHandler peers don't bounce a message
// back and forth forever.
type recordingHandler struct {
	mu        sync.Mutex
	connected int
	received  [][]byte
}

func (h *recordingHandler) GetMessageLength(_ linkage.Channel, buffered []byte) int {
	return lengthPrefixed(buffered)
}

func (h *recordingHandler) OnMessage(_ linkage.Channel, payload []byte) int {
	h.mu.Lock()
	h.received = append(h.received, append([]byte(nil), payload[4:]...))
	h.mu.Unlock()
	return 1
}

func (h *recordingHandler) OnConnected(_ linkage.Channel, _, _ net.Addr) bool {
	h.mu.Lock()
	h.connected++
	h.mu.Unlock()
	return true
}

func (h *recordingHandler) OnDisconnected(_ linkage.Channel) {}
func (h *recordingHandler) OnError(_ linkage.Channel, _ bool, _ error) {}

func (h *recordingHandler) messageCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func (h *recordingHandler) connectCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// dialFramed opens a plain TCP connection to addr; callers write framed
// messages on it with frame().
func dialFramed(addr string) (net.Conn, error) {
	return net.Dial("tcp4", addr)
}

// tlsDial opens a TLS client connection to addr using cfg's client-side
// *tls.Config, built with an empty server name.
func tlsDial(addr string, cfg certificates.TLSConfig) (net.Conn, error) {
	return tls.Dial("tcp4", addr, cfg.TlsConfig(""))
}
