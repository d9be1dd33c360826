package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muzzman/daemon/internal/backend"
	"github.com/muzzman/daemon/internal/transport"
	"github.com/muzzman/daemon/internal/wire"
)

// newServer spins up a Dispatcher over a loopback socket and starts
// serving on a background goroutine; the caller must cancel ctx to
// stop it.
func newServer(t *testing.T) (*Dispatcher, *transport.Socket, func()) {
	t.Helper()
	sock, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)

	d := New(sock, backend.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Serve(ctx) }()

	return d, sock, func() {
		cancel()
		d.Close()
		sock.Close()
	}
}

func newClient(t *testing.T) *transport.Socket {
	t.Helper()
	sock, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	return sock
}

func recvResponse(t *testing.T, client *transport.Socket, timeout time.Duration) wire.Response {
	t.Helper()
	done := make(chan wire.Response, 1)
	go func() {
		for {
			msgs, err := client.ReadMessages()
			if err != nil {
				return
			}
			for _, msg := range msgs {
				for _, pkt := range wire.DecodeAll(msg.Data) {
					if pkt.Response != nil {
						done <- *pkt.Response
						return
					}
				}
			}
		}
	}()
	select {
	case resp := <-done:
		return resp
	case <-time.After(timeout):
		t.Fatal("timed out waiting for response")
		return wire.Response{}
	}
}

func TestDispatcherGetDefaultLocationRoundTrip(t *testing.T) {
	_, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	reqID := wire.ID128{Lo: 1}
	req := wire.Request{RequestID: reqID, Op: wire.OpGetDefaultLocation}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req)))

	resp := recvResponse(t, client, 2*time.Second)
	require.Equal(t, reqID, resp.RequestID)
	require.Nil(t, resp.Err)
}

func TestDispatcherCreateElement(t *testing.T) {
	_, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	defLoc := wire.LocationID{Path: []uint64{0}}
	reqID := wire.ID128{Lo: 2}
	req := wire.Request{
		RequestID: reqID,
		Op:        wire.OpCreateElement,
		Args:      wire.Args{Location: defLoc, Str: "my-download"},
	}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req)))

	resp := recvResponse(t, client, 2*time.Second)
	require.Nil(t, resp.Err)
	require.Equal(t, defLoc, resp.Result.Element.Location)
}

func TestDispatcherTickNeverAnswered(t *testing.T) {
	_, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	req := wire.Request{RequestID: wire.ID128{Lo: 3}, Op: wire.OpTick}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req)))

	// Follow with a real request; if Tick were (wrongly) answered, this
	// response would queue up behind it but still eventually resolve,
	// so instead we just confirm the *expected* response has the second
	// request's id, not the tick's.
	req2 := wire.Request{RequestID: wire.ID128{Lo: 4}, Op: wire.OpGetDefaultLocation}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req2)))

	resp := recvResponse(t, client, 2*time.Second)
	require.Equal(t, wire.ID128{Lo: 4}, resp.RequestID)
}

func TestDispatcherRunActionOnMissingModuleReturnsNotFound(t *testing.T) {
	_, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	req := wire.Request{RequestID: wire.ID128{Lo: 5}, Op: wire.OpRunAction, Args: wire.Args{
		Module: wire.ModuleID{Hi: 1},
		Str:    "nope",
	}}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req)))

	resp := recvResponse(t, client, 2*time.Second)
	require.NotNil(t, resp.Err)
	require.Equal(t, wire.ErrKindNotFound, resp.Err.Kind)
}

func TestDispatcherElementWaitOffloadsAndReplies(t *testing.T) {
	d, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	defLoc := wire.LocationID{Path: []uint64{0}}
	el, err := d.backend.CreateElement(defLoc, "waits-for-me")
	require.NoError(t, err)

	req := wire.Request{RequestID: wire.ID128{Lo: 6}, Op: wire.OpElementWait, Args: wire.Args{Element: el}}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req)))

	// The dispatcher's read loop must stay responsive while the wait is
	// parked in the background; prove it by sending and getting an
	// unrelated reply before unblocking the wait.
	probe := wire.Request{RequestID: wire.ID128{Lo: 7}, Op: wire.OpGetDefaultLocation}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(probe)))
	probeResp := recvResponse(t, client, 2*time.Second)
	require.Equal(t, wire.ID128{Lo: 7}, probeResp.RequestID)

	require.NoError(t, d.backend.SetElementProperty(el, backend.PropStatuses, backend.PropValue{Strs: []string{"running", "done"}}))

	waitResp := recvResponse(t, client, 2*time.Second)
	require.Equal(t, wire.ID128{Lo: 6}, waitResp.RequestID)
	require.Nil(t, waitResp.Err)
}

func TestDispatcherBroadcastsEventsToLiveClients(t *testing.T) {
	_, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	// A Tick registers this client's address in the TTL table without
	// provoking a reply.
	tick := wire.Request{RequestID: wire.ID128{Lo: 8}, Op: wire.OpTick}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(tick)))
	time.Sleep(50 * time.Millisecond)

	defLoc := wire.LocationID{Path: []uint64{0}}
	req := wire.Request{
		RequestID: wire.ID128{Lo: 9},
		Op:        wire.OpCreateLocation,
		Args:      wire.Args{Location: defLoc, Str: "child"},
	}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(req)))

	deadline := time.After(2 * time.Second)
	sawCreate := false
	sawResponse := false
	for !sawCreate || !sawResponse {
		select {
		case <-deadline:
			t.Fatalf("did not observe both response and event; response=%v event=%v", sawResponse, sawCreate)
		default:
		}
		msgs, err := client.ReadMessages()
		require.NoError(t, err)
		for _, msg := range msgs {
			for _, pkt := range wire.DecodeAll(msg.Data) {
				if pkt.Response != nil && pkt.Response.RequestID == (wire.ID128{Lo: 9}) {
					sawResponse = true
				}
				if pkt.Event != nil && pkt.Event.Event.Kind == wire.EventLocationCreated {
					sawCreate = true
				}
			}
		}
	}
}

func TestDispatcherClientExpiresAfterTTL(t *testing.T) {
	d, serverSock, stop := newServer(t)
	defer stop()
	client := newClient(t)
	defer client.Close()

	tick := wire.Request{RequestID: wire.ID128{Lo: 10}, Op: wire.OpTick}
	require.NoError(t, client.Send(serverSock.LocalAddr(), wire.EncodeRequest(tick)))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, d.clients.Len())

	time.Sleep(ClientTTL + 2*clientSweepInterval)
	require.Equal(t, 0, d.clients.Len())
}
