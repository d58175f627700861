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
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/yiyuanzhong/flinter-sub000/certificates"
)

// bindKind distinguishes the socket families a Listener can be created for.
type bindKind uint8

const (
	bindTCP4 bindKind = iota
	bindTCP6
	bindUnix
)

// listenSpec describes one listening socket before it is opened: address
// family, bind target, optional TLS and the handler/factory new connections
// are attached to.
type listenSpec struct {
	kind       bindKind
	addr       string
	loopback   bool
	unixFile   bool
	privileged bool

	tls certificates.TLSConfig

	handler  EasyHandler
	factory  EasyHandlerFactory
	borrowed bool
	route    RouteHandler
}

// listener accepts connections on one listening socket and, in
// attachAccepted, wraps each one in a Linkage attached to whichever reactor
// the listener is registered against. A single listener may be attached to more
// than one reactor round-robin, spreading accept load across the pool.
type listener struct {
	spec     listenSpec
	ln       net.Listener
	srv      *EasyServer
	reactors []*reactor
	next     uint32

	closed int32
	quit   chan struct{}
}

func newListener(spec listenSpec, ln net.Listener, srv *EasyServer) *listener {
	return &listener{
		spec: spec,
		ln:   ln,
		srv:  srv,
		quit: make(chan struct{}),
	}
}

// attach registers r as one of the reactors this listener distributes
// accepted connections to.
func (li *listener) attach(r *reactor) {
	li.reactors = append(li.reactors, r)
}

// pick returns the next reactor in round-robin order.
func (li *listener) pick() *reactor {
	n := atomic.AddUint32(&li.next, 1)
	return li.reactors[int(n-1)%len(li.reactors)]
}

// start launches the accept loop on its own goroutine. Per §4.4 the listener
// accepts a single connection per readable event to keep fairness with other
// listeners sharing reactors; net.Listener.Accept blocks instead of
// signalling readiness, so this loop simply accepts continuously and relies
// on the per-reactor dispatch below to spread the resulting Linkages out.
func (li *listener) start() {
	go li.loop()
}

func (li *listener) loop() {
	for {
		conn, err := li.ln.Accept()
		if err != nil {
			select {
			case <-li.quit:
				return
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}
		li.handleAccepted(conn)
	}
}

func (li *listener) handleAccepted(conn net.Conn) {
	if !li.srv.admitIncoming() {
		_ = conn.Close()
		return
	}

	r := li.pick()
	r.post(func() {
		li.attachAccepted(r, conn)
	})
}

func (li *listener) attachAccepted(r *reactor, conn net.Conn) {
	var io AbstractIo
	if li.spec.tls != nil {
		cfg := li.spec.tls.TlsConfig("")
		li.srv.tickets.Apply(cfg)
		io = newTlsIo(tls.Server(conn, cfg), false)
	} else {
		io = newPlainIo(conn, false)
	}

	ch := r.ioctx.allocate(false)

	var h EasyHandler
	switch {
	case li.spec.route != nil:
		h = newRoutingHandler(li.spec.route)
		r.ioctx.setOwnedHandler(ch, h)
	case li.spec.borrowed:
		h = li.spec.handler
	default:
		h = li.spec.factory(ch)
		r.ioctx.setOwnedHandler(ch, h)
	}

	timeouts := li.srv.incomingTimeouts()
	lk := newLinkage(ch, io, h, false, timeouts, li.srv)
	r.attachLinkage(ch, lk)
}

func (li *listener) Close() error {
	if !atomic.CompareAndSwapInt32(&li.closed, 0, 1) {
		return nil
	}
	close(li.quit)
	return li.ln.Close()
}

// listenTCP opens a non-blocking, close-on-exec listening TCP socket on
// port, bound to the loopback address when loopback is true and to the
// wildcard address otherwise. network selects the IPv4 ("tcp4") or IPv6
// ("tcp6") family.
func listenTCP(network string, port int, loopback bool) (net.Listener, error) {
	host := "0.0.0.0"
	if network == "tcp6" {
		host = "::"
	}
	if loopback {
		if network == "tcp6" {
			host = "::1"
		} else {
			host = "127.0.0.1"
		}
	}

	lc := net.ListenConfig{Control: listenControl}
	return lc.Listen(bgListenCtx(), network, net.JoinHostPort(host, strconv.Itoa(port)))
}

// listenUnix binds a Unix domain socket at path. When path starts with "@"
// the socket is created in the Linux abstract namespace (leading NUL, no file on
// disk); file-based sockets are chmod'd 0600 when privileged is requested,
// 0666 otherwise, matching §4.1's listen_unix contract. An existing stale
// socket file is removed first on a best-effort basis.
func listenUnix(path string, privileged bool) (net.Listener, error) {
	abstract := strings.HasPrefix(path, "@")
	if !abstract {
		_ = removeStaleSocket(path)
	}

	addr := path
	if abstract {
		addr = "\x00" + path[1:]
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(bgListenCtx(), "unix", addr)
	if err != nil {
		return nil, err
	}

	if !abstract {
		mode := uint32(0666)
		if privileged {
			mode = 0600
		}
		_ = chmodSocket(path, mode)
	}

	return ln, nil
}
