// Package dispatcher implements the server side of the protocol (C3):
// it drains the transport socket, decodes requests, calls the backing
// Session, and replies — while tracking which addresses are live
// clients and fanning out SessionEvents to all of them.
package dispatcher

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/muzzman/daemon/internal/backend"
	"github.com/muzzman/daemon/internal/store"
	"github.com/muzzman/daemon/internal/transport"
	"github.com/muzzman/daemon/internal/wire"
)

// ClientTTL is how long a client's silence is tolerated before its
// record is evicted and it stops receiving events (spec.md §4.3).
const ClientTTL = 3 * time.Second

// clientSweepInterval is how often the client table's background
// sweep runs; it need not match ClientTTL exactly, only be smaller.
const clientSweepInterval = 500 * time.Millisecond

// maxConcurrentWaits bounds how many ElementWait calls may be parked
// in the background worker pool at once (spec.md §4.3, §9 Open
// Question 3: ElementWait must not block the dispatcher loop).
const maxConcurrentWaits = 64

// Dispatcher owns the daemon side of the wire protocol.
type Dispatcher struct {
	sock    *transport.Socket
	backend backend.Session

	clients *store.TTLStore[string, *net.UDPAddr]

	waitCtx    context.Context
	waitCancel context.CancelFunc
	waitGroup  *errgroup.Group
	waitSem    *semaphore.Weighted

	unsubscribe func()
}

// New constructs a Dispatcher bound to sock, serving b.
func New(sock *transport.Socket, b backend.Session) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(ctx)
	_ = gCtx // waits run under the shared d.waitCtx (cancelled by Close), not gCtx

	d := &Dispatcher{
		sock:       sock,
		backend:    b,
		clients:    store.New[string, *net.UDPAddr](clientSweepInterval),
		waitCtx:    ctx,
		waitCancel: cancel,
		waitGroup:  g,
		waitSem:    semaphore.NewWeighted(maxConcurrentWaits),
	}
	d.clients.OnEvict(func(_ string, addr *net.UDPAddr) {
		sock.ForgetPeer(addr)
	})
	d.unsubscribe = b.Subscribe(d.onEvent)
	return d
}

// Close stops background work: the client-table sweep and any
// in-flight ElementWait goroutines.
func (d *Dispatcher) Close() {
	d.unsubscribe()
	d.clients.Close()
	d.waitCancel()
	_ = d.waitGroup.Wait()
}

// Serve reads and handles datagrams until ctx is cancelled or the
// socket errors.
func (d *Dispatcher) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := d.sock.ReadMessages()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("dispatcher: socket read error", "error", err)
			continue
		}
		for _, msg := range msgs {
			d.handleDatagram(msg.From, msg.Data)
		}
	}
}

func (d *Dispatcher) handleDatagram(from *net.UDPAddr, data []byte) {
	d.clients.Set(from.String(), from, ClientTTL)

	for _, pkt := range wire.DecodeAll(data) {
		if pkt.Request == nil {
			continue // only clients send requests; ignore anything else
		}
		d.handleRequest(from, *pkt.Request)
	}
}

func (d *Dispatcher) handleRequest(from *net.UDPAddr, req wire.Request) {
	if req.Op == wire.OpTick {
		return // keep-alive only; never answered (spec.md §4.1)
	}

	if req.Op == wire.OpElementWait {
		d.dispatchElementWaitAsync(from, req)
		return
	}

	result, sessErr := dispatch(d.backend, req.Op, req.Args)
	d.reply(from, req, result, sessErr)
}

// dispatchElementWaitAsync offloads a blocking ElementWait call to the
// worker pool so the main read loop is never stalled by it (resolves
// spec.md §9 Open Question 3); the response is sent later, still
// carrying the original request id.
func (d *Dispatcher) dispatchElementWaitAsync(from *net.UDPAddr, req wire.Request) {
	if err := d.waitSem.Acquire(d.waitCtx, 1); err != nil {
		d.reply(from, req, wire.Result{}, wire.ErrServerTimeOut())
		return
	}
	d.waitGroup.Go(func() error {
		defer d.waitSem.Release(1)
		err := d.backend.ElementWait(d.waitCtx, req.Args.Element)
		var sessErr *wire.SessionError
		if err != nil {
			sessErr = toSessionError(err)
		}
		d.reply(from, req, wire.Result{}, sessErr)
		return nil
	})
}

func (d *Dispatcher) reply(to *net.UDPAddr, req wire.Request, result wire.Result, sessErr *wire.SessionError) {
	resp := wire.Response{RequestID: req.RequestID, Op: req.Op, Result: result, Err: sessErr}
	if err := d.sock.Send(to, wire.EncodeResponse(resp)); err != nil {
		slog.Warn("dispatcher: failed to send response", "peer", to, "error", err)
	}
}

// onEvent is the backend.Subscribe callback: broadcast ev to every
// currently-live client address (spec.md §4.3 event fan-out).
func (d *Dispatcher) onEvent(ev wire.SessionEvent) {
	buf := wire.EncodeEvent(wire.Event{Event: ev})

	var addrs []*net.UDPAddr
	d.clients.ForEach(func(_ string, addr *net.UDPAddr) bool {
		addrs = append(addrs, addr)
		return true
	})

	var wg sync.WaitGroup
	for _, addr := range addrs {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.sock.Send(addr, buf); err != nil {
				slog.Debug("dispatcher: event send failed", "peer", addr, "error", err)
			}
		}()
	}
	wg.Wait()
}
