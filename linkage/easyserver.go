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
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yiyuanzhong/flinter-sub000/certificates"
	libctx "github.com/yiyuanzhong/flinter-sub000/context"
	"github.com/yiyuanzhong/flinter-sub000/errors/pool"
	"github.com/yiyuanzhong/flinter-sub000/ioutils/mapCloser"
	lcfg "github.com/yiyuanzhong/flinter-sub000/linkage/config"
	liblog "github.com/yiyuanzhong/flinter-sub000/logger"
)

// closerFunc adapts a plain shutdown routine to io.Closer so it can be
// registered with the mapCloser.Closer aggregating EasyServer's teardown.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// EasyServer is the public façade described by spec §4.7: it owns every
// reactor and the optional worker pool, allocates and routes Channels, and
// exposes the thread-safe Send/Disconnect/Forget/RegisterTimer/Shutdown
// operations a handler or any other goroutine may call at any time once
// Initialize has returned.
type EasyServer struct {
	mu          sync.Mutex
	initialized bool
	opts        *lcfg.Options
	log         liblog.Logger

	ctx    libctx.Config[uint8]
	cancel context.CancelFunc
	closer mapCloser.Closer

	reactors []*reactor
	jobs     *jobQueue
	resolver *Resolver
	tickets  *TicketKeyring

	pending []listenSpec

	// incomingLive is the number of currently open incoming connections,
	// incremented by admitIncoming and decremented as each one closes; it is
	// what MaximumIncomingConnections actually caps. incomingTotal only ever
	// grows and is reported as the cumulative Stats.IncomingAccepts counter.
	incomingLive  int32
	incomingTotal int32
	nextReactor   uint32

	shuttingDown atomic.Bool
}

// New returns an unconfigured EasyServer. Call Listen/ListenTLS/ListenUnix as
// many times as needed, then Initialize to start the reactor and worker
// pools; Listen after Initialize is a programming error per §4.7.
func New() *EasyServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &EasyServer{
		ctx:     libctx.New[uint8](ctx),
		cancel:  cancel,
		closer:  mapCloser.New(ctx),
		tickets: NewTicketKeyring(),
	}
}

// WithLogger attaches a structured logger. Initialization and job-worker
// start/stop are logged through it at Info level; per-connection events
// (accept, close, handshake failure, timeout eviction) are not logged.
// Safe to call before Initialize only.
func (s *EasyServer) WithLogger(l liblog.Logger) *EasyServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = l
	return s
}

func (s *EasyServer) info(msg string, args ...interface{}) {
	if s.log != nil {
		s.log.Info(msg, nil, args...)
	}
}

// ---------------------------------------------------------------------
// Listen
// ---------------------------------------------------------------------

// Listen opens a non-blocking, close-on-exec IPv4 listening socket on port
// and registers handler for every accepted connection. Must be called
// before Initialize.
func (s *EasyServer) Listen(port int, loopbackOnly bool, handler EasyHandler) error {
	return s.listen(listenSpec{kind: bindTCP4, addr: strconv.Itoa(port), loopback: loopbackOnly, handler: handler, borrowed: true})
}

// ListenFactory is Listen for a per-connection EasyHandlerFactory; the
// produced handler is owned by the channel's IoContext.
func (s *EasyServer) ListenFactory(port int, loopbackOnly bool, factory EasyHandlerFactory) error {
	return s.listen(listenSpec{kind: bindTCP4, addr: strconv.Itoa(port), loopback: loopbackOnly, factory: factory})
}

// ListenTLS is Listen with a required TLS configuration (ssl_listen in §4.1).
func (s *EasyServer) ListenTLS(port int, loopbackOnly bool, handler EasyHandler, tlsCfg certificates.TLSConfig) error {
	return s.listen(listenSpec{kind: bindTCP4, addr: strconv.Itoa(port), loopback: loopbackOnly, handler: handler, borrowed: true, tls: tlsCfg})
}

// ListenTLSFactory combines ListenTLS and ListenFactory.
func (s *EasyServer) ListenTLSFactory(port int, loopbackOnly bool, factory EasyHandlerFactory, tlsCfg certificates.TLSConfig) error {
	return s.listen(listenSpec{kind: bindTCP4, addr: strconv.Itoa(port), loopback: loopbackOnly, factory: factory, tls: tlsCfg})
}

// ListenUnix binds a Unix domain socket at path; privileged selects 0600
// permissions over the shared 0666 default for file-based sockets (ignored
// for Linux abstract-namespace paths, which start with "@").
func (s *EasyServer) ListenUnix(path string, privileged bool, handler EasyHandler) error {
	return s.listen(listenSpec{kind: bindUnix, addr: path, privileged: privileged, handler: handler, borrowed: true})
}

// ListenUnixFactory is ListenUnix for a factory.
func (s *EasyServer) ListenUnixFactory(path string, privileged bool, factory EasyHandlerFactory) error {
	return s.listen(listenSpec{kind: bindUnix, addr: path, privileged: privileged, factory: factory})
}

// ListenRoute attaches a RouteHandler instead of a fixed handler/factory: the
// handler for each accepted connection is picked from its first bytes, per
// §4.4's async router hint.
func (s *EasyServer) ListenRoute(port int, loopbackOnly bool, route RouteHandler) error {
	return s.listen(listenSpec{kind: bindTCP4, addr: strconv.Itoa(port), loopback: loopbackOnly, route: route})
}

// ListenTLSRoute combines ListenRoute and ListenTLS.
func (s *EasyServer) ListenTLSRoute(port int, loopbackOnly bool, route RouteHandler, tlsCfg certificates.TLSConfig) error {
	return s.listen(listenSpec{kind: bindTCP4, addr: strconv.Itoa(port), loopback: loopbackOnly, route: route, tls: tlsCfg})
}

func (s *EasyServer) listen(spec listenSpec) error {
	if spec.handler == nil && spec.factory == nil && spec.route == nil {
		return ErrorNilHandler.Error(nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return ErrorAlreadyInitialized.Error(nil)
	}

	if err := s.probeListenSocket(spec); err != nil {
		return ErrorListenFailed.Error(err)
	}

	s.pending = append(s.pending, spec)
	return nil
}

// probeListenSocket validates that the bind succeeds right away (fail fast,
// per §7's configuration-error taxonomy) without yet starting an accept
// loop; the probe socket is immediately closed so SO_REUSEADDR lets the real
// listener rebind it at Initialize time, once reactors exist to attach it to.
func (s *EasyServer) probeListenSocket(spec listenSpec) error {
	ln, err := s.openRealListenSocket(spec)
	if err != nil {
		return err
	}
	return ln.Close()
}

// ---------------------------------------------------------------------
// Initialize
// ---------------------------------------------------------------------

// Initialize creates the fixed pool of reactor goroutines (opts.Slots) and
// the job-worker pool (opts.Workers, 0 meaning inline dispatch), then opens
// every socket registered by a prior Listen call and starts its accept loop.
// Slots is fixed for the remaining lifetime of the EasyServer.
func (s *EasyServer) Initialize(opts *lcfg.Options) error {
	if opts == nil {
		return ErrorParamsEmpty.Error(nil)
	}

	o := opts.Options()
	if err := o.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return ErrorAlreadyInitialized.Error(nil)
	}

	s.opts = o
	s.resolver = NewResolver(o.ResolverTTL)

	s.reactors = make([]*reactor, o.Slots)
	for i := range s.reactors {
		r := newReactor(uint32(i), o.Slots, s)
		s.reactors[i] = r
		s.closer.Add(closerFunc(func() error { r.stop(); return nil }))
		r.start()
	}

	if o.Workers > 0 {
		capacity := o.JobQueueCapacity
		if capacity <= 0 {
			capacity = 4096
		}
		s.jobs = newJobQueue(capacity, o.Workers, s.jobLifecycle)
		s.closer.Add(closerFunc(func() error { s.jobs.shutdown(); return nil }))
	}

	for _, spec := range s.pending {
		if err := s.startListener(spec); err != nil {
			return err
		}
	}
	s.pending = nil

	s.initialized = true
	s.info("easyserver initialized", "slots", o.Slots, "workers", o.Workers)
	return nil
}

func (s *EasyServer) jobLifecycle(idx uint32, starting bool) {
	// Hook point for EasyHandler implementations that also satisfy
	// jobLifecycleHandler; the reference design has no registry of handler
	// instances independent of a channel, so this is a log-only hook.
	if starting {
		s.info("job worker started", "worker", idx)
	} else {
		s.info("job worker stopped", "worker", idx)
	}
}

func (s *EasyServer) startListener(spec listenSpec) error {
	ln, err := s.openRealListenSocket(spec)
	if err != nil {
		return ErrorListenFailed.Error(err)
	}

	li := newListener(spec, ln, s)
	for _, r := range s.reactors {
		li.attach(r)
	}
	s.closer.Add(li)
	li.start()
	return nil
}

func (s *EasyServer) openRealListenSocket(spec listenSpec) (net.Listener, error) {
	switch spec.kind {
	case bindTCP4:
		port, _ := strconv.Atoi(spec.addr)
		return listenTCP("tcp4", port, spec.loopback)
	case bindTCP6:
		port, _ := strconv.Atoi(spec.addr)
		return listenTCP("tcp6", port, spec.loopback)
	default:
		return listenUnix(spec.addr, spec.privileged)
	}
}

// RotateTicketKey loads a fresh TLS session-ticket key into rotation; every
// TLS listener picks it up on its next accepted connection.
func (s *EasyServer) RotateTicketKey(raw []byte) error {
	return s.tickets.Rotate(raw)
}

// ---------------------------------------------------------------------
// Outgoing connections
// ---------------------------------------------------------------------

// ConnectTCP4 allocates an outgoing Channel bound to host:port and records
// the metadata needed to (re)connect it; per §3's lifecycle rules the actual
// socket is not opened until the first Send targeting this channel.
// preferredReactor selects a specific reactor index, or -1 to round-robin.
func (s *EasyServer) ConnectTCP4(host string, port int, handler EasyHandler, tlsCfg certificates.TLSConfig, preferredReactor int) (Channel, error) {
	if handler == nil {
		return InvalidChannel, ErrorNilHandler.Error(nil)
	}
	return s.connect(host, port, tlsCfg, preferredReactor, &OutgoingInfo{handler: handler, borrowed: true})
}

// ConnectTCP4Factory is ConnectTCP4 for a per-connection factory; the
// produced handler is owned by the channel's IoContext.
func (s *EasyServer) ConnectTCP4Factory(host string, port int, factory EasyHandlerFactory, tlsCfg certificates.TLSConfig, preferredReactor int) (Channel, error) {
	if factory == nil {
		return InvalidChannel, ErrorNilHandler.Error(nil)
	}
	return s.connect(host, port, tlsCfg, preferredReactor, &OutgoingInfo{factory: factory})
}

func (s *EasyServer) connect(host string, port int, tlsCfg certificates.TLSConfig, preferredReactor int, info *OutgoingInfo) (Channel, error) {
	r, err := s.pickReactor(preferredReactor)
	if err != nil {
		return InvalidChannel, err
	}

	ch := r.ioctx.allocate(true)
	info.Host = host
	info.Port = port
	info.TLS = tlsCfg
	info.Reactor = r.index
	r.ioctx.setOutgoing(ch, info)
	return ch, nil
}

func (s *EasyServer) pickReactor(preferred int) (*reactor, error) {
	s.mu.Lock()
	slots := len(s.reactors)
	s.mu.Unlock()
	if slots == 0 {
		return nil, ErrorNotInitialized.Error(nil)
	}
	if preferred >= 0 {
		if preferred >= slots {
			return nil, ErrorInvalidSlots.Error(nil)
		}
		return s.reactors[preferred], nil
	}
	n := atomic.AddUint32(&s.nextReactor, 1)
	return s.reactors[int(n-1)%slots], nil
}

func (s *EasyServer) reactorFor(ch Channel) (*reactor, error) {
	s.mu.Lock()
	slots := len(s.reactors)
	s.mu.Unlock()
	if slots == 0 {
		return nil, ErrorNotInitialized.Error(nil)
	}
	return s.reactors[ch.reactorIndex(uint32(slots))], nil
}

// reconnectAndSend runs on a helper goroutine: it resolves and dials host:port
// fresh, then posts the outcome back to r so the new Linkage is attached (and
// payload flushed) or the failure reported, all on the reactor goroutine.
func (s *EasyServer) reconnectAndSend(r *reactor, ch Channel, info *OutgoingInfo, payload []byte) {
	go func() {
		conn, err := s.dialOutgoing(info)
		r.post(func() {
			if _, stillWanted := r.ioctx.getOutgoing(ch); !stillWanted {
				if conn != nil {
					_ = conn.Close()
				}
				return
			}
			if err != nil {
				info.Handler(ch).OnError(ch, false, err)
				return
			}

			handler := info.Handler(ch)
			if !info.borrowed {
				r.ioctx.setOwnedHandler(ch, handler)
			}

			var io AbstractIo
			if info.TLS != nil {
				io = newTlsIo(tls.Client(conn, info.TLS.TlsConfig(info.Host)), true)
			} else {
				io = newPlainIo(conn, true)
			}

			lk := newLinkage(ch, io, handler, true, s.outgoingTimeouts(), s)
			r.attachLinkage(ch, lk)
			lk.Send(payload)
		})
	}()
}

func (s *EasyServer) dialOutgoing(info *OutgoingInfo) (net.Conn, error) {
	timeout := s.outgoingTimeouts().Connect
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	addrs := []string{info.Host}
	if s.resolver != nil && net.ParseIP(info.Host) == nil {
		resolved, err := s.resolver.Candidates(ctx, info.Host)
		if err != nil {
			return nil, ErrorResolveFailed.Error(err)
		}
		addrs = resolved
	}

	// Every candidate address is tried in order; failures are collected in a
	// pool rather than discarded so the final error reports every attempt,
	// not just the last one.
	failures := pool.New()
	var d net.Dialer
	for _, addr := range addrs {
		conn, err := d.DialContext(ctx, "tcp4", net.JoinHostPort(addr, strconv.Itoa(info.Port)))
		if err == nil {
			return conn, nil
		}
		failures.Add(err)
		if s.resolver != nil {
			s.resolver.Invalidate(info.Host, addr, s.outgoingTimeouts().Connect)
		}
	}
	return nil, ErrorConnectFailed.Error(failures.Error())
}

// ---------------------------------------------------------------------
// Send / Disconnect / Forget / RegisterTimer
// ---------------------------------------------------------------------

// Send queues payload for channel. It is thread-safe; if channel's Linkage
// has died but its OutgoingInfo still exists, Send transparently reconnects
// before delivering the bytes (§8 property 3).
func (s *EasyServer) Send(channel Channel, payload []byte) error {
	r, err := s.reactorFor(channel)
	if err != nil {
		return err
	}

	body := append([]byte(nil), payload...)
	r.post(func() {
		if lk, ok := r.ioctx.lookup(channel); ok {
			lk.Send(body)
			return
		}
		if !channel.IsOutgoing() {
			return
		}
		info, ok := r.ioctx.getOutgoing(channel)
		if !ok {
			return
		}
		s.reconnectAndSend(r, channel, info, body)
	})
	return nil
}

// Disconnect is thread-safe; finishWrite=false drops any unsent bytes
// immediately, finishWrite=true drains the send buffer first.
func (s *EasyServer) Disconnect(channel Channel, finishWrite bool) error {
	r, err := s.reactorFor(channel)
	if err != nil {
		return err
	}
	r.post(func() {
		if lk, ok := r.ioctx.lookup(channel); ok {
			lk.Disconnect(finishWrite)
		}
	})
	return nil
}

// Forget removes channel's OutgoingInfo; a live connection is unaffected and
// runs to its natural close. Calling Forget twice is a no-op the second time.
func (s *EasyServer) Forget(channel Channel) error {
	r, err := s.reactorFor(channel)
	if err != nil {
		return err
	}
	r.ioctx.forget(channel)
	return nil
}

// RegisterTimer schedules job on an internal reactor goroutine, once after
// the given delay (repeat=false) or repeatedly at that period (repeat=true).
func (s *EasyServer) RegisterTimer(after time.Duration, repeat bool, job func()) error {
	r, err := s.pickReactor(0)
	if err != nil {
		return err
	}
	r.registerTimer(after, repeat, job)
	return nil
}

// ---------------------------------------------------------------------
// Limits & timeouts
// ---------------------------------------------------------------------

func (s *EasyServer) admitIncoming() bool {
	s.mu.Lock()
	max := s.opts.MaximumIncomingConnections
	s.mu.Unlock()
	if max == 0 {
		atomic.AddInt32(&s.incomingLive, 1)
		atomic.AddInt32(&s.incomingTotal, 1)
		return true
	}
	for {
		cur := atomic.LoadInt32(&s.incomingLive)
		if uint32(cur) >= max {
			return false
		}
		if atomic.CompareAndSwapInt32(&s.incomingLive, cur, cur+1) {
			atomic.AddInt32(&s.incomingTotal, 1)
			return true
		}
	}
}

// releaseIncoming decrements the live incoming-connection count once an
// accepted Linkage closes, so MaximumIncomingConnections caps concurrency
// rather than the lifetime total of accepted connections.
func (s *EasyServer) releaseIncoming() {
	atomic.AddInt32(&s.incomingLive, -1)
}

func (s *EasyServer) incomingTimeouts() Timeouts {
	s.mu.Lock()
	o := s.opts
	s.mu.Unlock()
	if o == nil {
		return Timeouts{}
	}
	return Timeouts{Receive: o.IncomingReceiveTimeout, Send: o.IncomingSendTimeout, Idle: o.IncomingIdleTimeout}
}

func (s *EasyServer) outgoingTimeouts() Timeouts {
	s.mu.Lock()
	o := s.opts
	s.mu.Unlock()
	if o == nil {
		return Timeouts{}
	}
	return Timeouts{Receive: o.OutgoingReceiveTimeout, Send: o.OutgoingSendTimeout, Idle: o.OutgoingIdleTimeout, Connect: o.OutgoingConnectTimeout}
}

// ---------------------------------------------------------------------
// Shutdown
// ---------------------------------------------------------------------

// Shutdown is idempotent: it stops every listener and reactor, drains and
// joins the worker pool, destroys every remaining Linkage and OutgoingInfo,
// and only then returns. Channel allocation counters are left untouched, so
// this EasyServer never reissues a channel value it has already handed out.
func (s *EasyServer) Shutdown() error {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return nil
	}

	for _, r := range s.reactors {
		linkages, _ := r.ioctx.drain()
		for _, lk := range linkages {
			r.post(func(l *Linkage) func() {
				return func() { l.Disconnect(false) }
			}(lk))
		}
	}

	// Close before cancel: cancelling first would let the closer's own
	// monitor goroutine run the close, and this call would return before
	// the reactors and workers have stopped.
	err := s.closer.Close()
	s.cancel()
	return err
}
