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
	"errors"
	"io"
	"net"
)

// plainIo is the AbstractIo backend for a non-TLS net.Conn.
type plainIo struct {
	conn     net.Conn
	outgoing bool
}

func newPlainIo(conn net.Conn, outgoing bool) *plainIo {
	return &plainIo{conn: conn, outgoing: outgoing}
}

func (p *plainIo) Initialize() Action {
	if p.outgoing {
		return ActionConnect
	}
	return ActionNone
}

func (p *plainIo) Read(buf []byte) (Status, int) {
	n, err := p.conn.Read(buf)
	if n > 0 && err == nil {
		return StatusOk, n
	}
	if n > 0 && err != nil {
		return StatusOk, n
	}
	return classifyIoError(err), 0
}

func (p *plainIo) Write(buf []byte) (Status, int) {
	n, err := p.conn.Write(buf)
	if err == nil {
		return StatusOk, n
	}
	if n > 0 {
		return StatusOk, n
	}
	return classifyIoError(err), 0
}

func (p *plainIo) Accept() Status {
	return StatusOk
}

func (p *plainIo) Connect() Status {
	return StatusOk
}

func (p *plainIo) Shutdown() Status {
	type closeWriter interface {
		CloseWrite() error
	}
	if cw, ok := p.conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			return StatusError
		}
		return StatusOk
	}
	return StatusOk
}

func (p *plainIo) PeerIdentity() PeerIdentity {
	return PeerIdentity{}
}

func (p *plainIo) LocalAddr() net.Addr {
	return p.conn.LocalAddr()
}

func (p *plainIo) RemoteAddr() net.Addr {
	return p.conn.RemoteAddr()
}

func (p *plainIo) Close() error {
	return p.conn.Close()
}

// classifyIoError maps a net.Conn error into the AbstractIo status taxonomy.
func classifyIoError(err error) Status {
	if err == nil {
		return StatusOk
	}
	if errors.Is(err, io.EOF) {
		return StatusClosed
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return StatusJammed
	}
	return StatusError
}
