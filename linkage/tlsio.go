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
	"crypto/tls"
	"net"
)

// tlsIo is the AbstractIo backend for a *tls.Conn. Go's tls.Conn already
// serializes its own handshake and renegotiation state internally, so
// Accept/Connect drive Handshake() directly rather than reimplementing a
// WantRead/WantWrite state machine: each Linkage runs its blocking reads on
// a dedicated per-connection goroutine (see reactor.go), so a blocking
// Handshake call there never stalls the reactor loop.
type tlsIo struct {
	conn     *tls.Conn
	outgoing bool
	identity PeerIdentity
}

func newTlsIo(conn *tls.Conn, outgoing bool) *tlsIo {
	return &tlsIo{conn: conn, outgoing: outgoing}
}

func (t *tlsIo) Initialize() Action {
	if t.outgoing {
		return ActionConnect
	}
	return ActionAccept
}

func (t *tlsIo) Read(buf []byte) (Status, int) {
	n, err := t.conn.Read(buf)
	if n > 0 {
		return StatusOk, n
	}
	return classifyIoError(err), 0
}

func (t *tlsIo) Write(buf []byte) (Status, int) {
	n, err := t.conn.Write(buf)
	if err == nil {
		return StatusOk, n
	}
	if n > 0 {
		return StatusOk, n
	}
	return classifyIoError(err), 0
}

func (t *tlsIo) Accept() Status {
	return t.handshake()
}

func (t *tlsIo) Connect() Status {
	return t.handshake()
}

func (t *tlsIo) handshake() Status {
	if err := t.conn.Handshake(); err != nil {
		return classifyIoError(err)
	}
	t.captureIdentity()
	return StatusOk
}

func (t *tlsIo) captureIdentity() {
	st := t.conn.ConnectionState()
	if len(st.PeerCertificates) == 0 {
		return
	}
	cert := st.PeerCertificates[0]
	t.identity = PeerIdentity{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
	}
}

func (t *tlsIo) Shutdown() Status {
	if err := t.conn.CloseWrite(); err != nil {
		return StatusError
	}
	return StatusOk
}

func (t *tlsIo) PeerIdentity() PeerIdentity {
	return t.identity
}

func (t *tlsIo) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *tlsIo) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

func (t *tlsIo) Close() error {
	return t.conn.Close()
}
