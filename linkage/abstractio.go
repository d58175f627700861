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

import "net"

// PeerIdentity describes the certificate presented by a TLS peer. It is the
// zero value ({}) for plain connections and for TLS connections where the
// peer presented no certificate.
type PeerIdentity struct {
	Subject      string
	Issuer       string
	SerialNumber string
}

// IsEmpty reports whether no peer certificate was captured.
func (p PeerIdentity) IsEmpty() bool {
	return p == PeerIdentity{}
}

// AbstractIo abstracts byte-level I/O for one connection behind a uniform
// status/next-action protocol, so Linkage drives a plain socket and a TLS
// session identically. Implementations: plainIo wraps a net.Conn directly;
// tlsIo wraps a *tls.Conn and drives its handshake explicitly instead of
// hiding it inside the first Read/Write call.
type AbstractIo interface {
	// Initialize is called once at attach time. It returns the immediate
	// action the Linkage must perform before the connection is usable.
	Initialize() (action Action)

	// Read fills buf with newly available bytes.
	Read(buf []byte) (status Status, n int)
	// Write sends buf. It blocks until every byte is accepted by the
	// underlying connection or an error/deadline aborts the write. A write
	// that stops part-way is reported as StatusOk with the partial count n;
	// any other status carries n == 0.
	Write(buf []byte) (status Status, n int)

	// Accept drives a server-side TLS handshake; a no-op returning StatusOk
	// for plain sockets.
	Accept() Status
	// Connect drives a client-side TLS handshake; a no-op returning StatusOk
	// for plain sockets, whose connection is already dialed before attach.
	Connect() Status
	// Shutdown half-closes the write side: close_notify plus FIN for TLS,
	// FIN for plain TCP. It is a single call; it does not wait for or
	// observe the peer's own close.
	Shutdown() Status

	// PeerIdentity returns the remote certificate identity, populated only
	// once a TLS handshake has completed.
	PeerIdentity() PeerIdentity

	// LocalAddr and RemoteAddr expose the underlying socket addresses.
	LocalAddr() net.Addr
	RemoteAddr() net.Addr

	// Close releases the underlying file descriptor unconditionally.
	Close() error
}
