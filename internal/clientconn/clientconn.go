// Package clientconn implements the client side of the protocol (C4):
// request/response correlation over the transport socket, a
// background keep-alive Tick, and a channel of server-initiated
// SessionEvents.
package clientconn

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muzzman/daemon/internal/transport"
	"github.com/muzzman/daemon/internal/wire"
)

// TickInterval is how often the keep-alive goroutine sends an
// OpTick, well inside the dispatcher's client TTL (spec.md §4.3).
const TickInterval = time.Second

// DefaultCallTimeout is used by Call when the caller's context carries
// no deadline.
const DefaultCallTimeout = 3 * time.Second

// eventBacklog bounds how many undelivered events are buffered before
// the oldest is dropped; a slow consumer must not stall the read loop.
const eventBacklog = 256

// Conn is one client's connection to the daemon.
type Conn struct {
	sock   *transport.Socket
	remote *net.UDPAddr

	nextID  atomic.Uint64
	pending sync.Map // wire.ID128 -> chan wire.Response

	events chan wire.SessionEvent

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Dial opens a loopback UDP socket and connects it to the daemon at
// remoteAddr, starting the read and keep-alive loops.
func Dial(remoteAddr string) (*Conn, error) {
	sock, err := transport.Listen("127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("clientconn: %w", err)
	}
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		sock.Close()
		return nil, fmt.Errorf("clientconn: resolve %q: %w", remoteAddr, err)
	}

	c := &Conn{
		sock:   sock,
		remote: remote,
		events: make(chan wire.SessionEvent, eventBacklog),
		stopCh: make(chan struct{}),
	}
	c.nextID.Store(1) // id 0 is reserved for server events (spec.md §4.1)

	c.wg.Add(2)
	go c.readLoop()
	go c.keepAliveLoop()
	return c, nil
}

// Close stops the background loops and releases the socket. Any Call
// still waiting for a response returns a "connection closed" error.
func (c *Conn) Close() error {
	close(c.stopCh)
	err := c.sock.Close()
	c.wg.Wait()
	return err
}

// Events returns the channel of server-initiated SessionEvents.
func (c *Conn) Events() <-chan wire.SessionEvent {
	return c.events
}

// Call sends op/args as a Request and blocks for the matching
// Response, honoring ctx's deadline (or DefaultCallTimeout if ctx
// carries none).
func (c *Conn) Call(ctx context.Context, op wire.Op, args wire.Args) (wire.Result, *wire.SessionError, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	reqID := wire.ID128{Lo: c.nextID.Add(1) - 1}
	ch := make(chan wire.Response, 1)
	c.pending.Store(reqID, ch)
	defer c.pending.Delete(reqID)

	req := wire.Request{RequestID: reqID, Op: op, Args: args}
	if err := c.sock.Send(c.remote, wire.EncodeRequest(req)); err != nil {
		return wire.Result{}, nil, fmt.Errorf("clientconn: send: %w", err)
	}

	select {
	case resp := <-ch:
		return resp.Result, resp.Err, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return wire.Result{}, wire.ErrServerTimeOut(), nil
		}
		return wire.Result{}, nil, ctx.Err()
	case <-c.stopCh:
		return wire.Result{}, nil, fmt.Errorf("clientconn: connection closed")
	}
}

func (c *Conn) readLoop() {
	defer c.wg.Done()
	for {
		msgs, err := c.sock.ReadMessages()
		if err != nil {
			select {
			case <-c.stopCh:
				return
			default:
				continue
			}
		}
		for _, msg := range msgs {
			for _, pkt := range wire.DecodeAll(msg.Data) {
				c.dispatchIncoming(pkt)
			}
		}
	}
}

func (c *Conn) dispatchIncoming(pkt wire.Packet) {
	switch {
	case pkt.Response != nil:
		if ch, ok := c.pending.Load(pkt.Response.RequestID); ok {
			ch.(chan wire.Response) <- *pkt.Response
		}
	case pkt.Event != nil:
		select {
		case c.events <- pkt.Event.Event:
		default:
			// Backlog full: drop the oldest rather than block the read
			// loop, then push the new one.
			select {
			case <-c.events:
			default:
			}
			select {
			case c.events <- pkt.Event.Event:
			default:
			}
		}
	}
}

func (c *Conn) keepAliveLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tick := wire.Request{RequestID: wire.ZeroID, Op: wire.OpTick}
			_ = c.sock.Send(c.remote, wire.EncodeRequest(tick))
		case <-c.stopCh:
			return
		}
	}
}
