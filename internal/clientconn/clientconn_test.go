package clientconn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muzzman/daemon/internal/backend"
	"github.com/muzzman/daemon/internal/dispatcher"
	"github.com/muzzman/daemon/internal/transport"
	"github.com/muzzman/daemon/internal/wire"
)

func startDaemon(t *testing.T) (*dispatcher.Dispatcher, string, func()) {
	t.Helper()
	sock, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	d := dispatcher.New(sock, backend.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Serve(ctx) }()
	return d, sock.LocalAddr().String(), func() {
		cancel()
		d.Close()
		sock.Close()
	}
}

func TestCallRoundTrip(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	res, sessErr, err := c.Call(context.Background(), wire.OpGetDefaultLocation, wire.Args{})
	require.NoError(t, err)
	require.Nil(t, sessErr)
	require.Equal(t, []uint64{0}, res.Location.Path)
}

func TestCallCreateElement(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	def := wire.LocationID{Path: []uint64{0}}
	res, sessErr, err := c.Call(context.Background(), wire.OpCreateElement, wire.Args{Location: def, Str: "x"})
	require.NoError(t, err)
	require.Nil(t, sessErr)
	require.True(t, res.Element.Location.Equal(def))
}

func TestCallTimesOutWhenNoResponse(t *testing.T) {
	// No daemon listening at all: nothing will ever answer.
	sock, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	unreachable := sock.LocalAddr().String()
	sock.Close() // now guaranteed nobody is listening there

	c, err := Dial(unreachable)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, sessErr, err := c.Call(ctx, wire.OpGetDefaultLocation, wire.Args{})
	require.NoError(t, err)
	require.NotNil(t, sessErr)
	require.Equal(t, wire.ErrKindServerTimeOut, sessErr.Kind)
}

func TestEventsDeliveredToChannel(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	def := wire.LocationID{Path: []uint64{0}}
	_, sessErr, err := c.Call(context.Background(), wire.OpCreateLocation, wire.Args{Location: def, Str: "child"})
	require.NoError(t, err)
	require.Nil(t, sessErr)

	select {
	case ev := <-c.Events():
		require.Equal(t, wire.EventLocationCreated, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive LocationCreated event")
	}
}

func TestRequestIDsAreMonotonicStartingAtOne(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, uint64(1), c.nextID.Add(1)-1)
	require.Equal(t, uint64(2), c.nextID.Add(1)-1)
}
