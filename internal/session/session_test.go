package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muzzman/daemon/internal/backend"
	"github.com/muzzman/daemon/internal/dispatcher"
	"github.com/muzzman/daemon/internal/transport"
	"github.com/muzzman/daemon/internal/wire"
)

func startDaemon(t *testing.T) (*backend.Memory, string, func()) {
	t.Helper()
	sock, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	bk := backend.NewMemory()
	d := dispatcher.New(sock, bk)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Serve(ctx) }()
	return bk, sock.LocalAddr().String(), func() {
		cancel()
		d.Close()
		sock.Close()
	}
}

// S1: the default location round-trips to a handle whose id is the
// session root path.
func TestDefaultLocationRoundTrip(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	s, err := Connect(addr)
	require.NoError(t, err)
	defer s.Close()

	loc, err := s.DefaultLocation(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, loc.ID().Path)
}

// S2: creating an Element under the default Location and reading its
// info back gives a consistent round trip.
func TestCreateElementThenInfo(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	s, err := Connect(addr)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	loc, err := s.DefaultLocation(ctx)
	require.NoError(t, err)

	el, err := loc.CreateElement(ctx, "movie.mkv")
	require.NoError(t, err)

	name, err := el.Name(ctx)
	require.NoError(t, err)
	require.Equal(t, "movie.mkv", name)

	info, err := el.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, "movie.mkv", info.Name)
	require.True(t, info.ID.Equal(el.ID()))
}

// S3: destroying an Element invalidates its handle for any other
// client holding it, once that client's handle table observes the
// Destroyed event.
func TestDestructionInvalidatesOtherClientsHandle(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	ctx := context.Background()

	owner, err := Connect(addr)
	require.NoError(t, err)
	defer owner.Close()
	loc, err := owner.DefaultLocation(ctx)
	require.NoError(t, err)
	el, err := loc.CreateElement(ctx, "to-delete")
	require.NoError(t, err)

	watcher, err := Connect(addr)
	require.NoError(t, err)
	defer watcher.Close()
	watcherLoc := watcher.wrapLocation(loc.ID())
	watchedEl := watcher.wrapElement(el.ID())

	// The daemon only fans events out to clients it has heard from, so
	// the watcher sends one request before the destroy.
	_, err = watcherLoc.ElementsLen(ctx)
	require.NoError(t, err)

	require.NoError(t, el.Destroy(ctx))

	// watcher's own background event loop applies the Destroyed event
	// to its handle table; no manual Apply needed here.
	require.Eventually(t, func() bool {
		_, ok := watcher.handles.Elements.Lookup(watchedEl.ID())
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "watcher never observed the destroy event")

	_, err = watcherLoc.ElementsLen(ctx)
	require.NoError(t, err) // the location itself is untouched
}

// S4: a Location id rewrite (move) preserves handle identity; the
// handle observes the new id and subsequent calls use it.
func TestMovePreservesHandleIdentity(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	ctx := context.Background()
	s, err := Connect(addr)
	require.NoError(t, err)
	defer s.Close()

	root, err := s.DefaultLocation(ctx)
	require.NoError(t, err)
	a, err := s.CreateLocation(ctx, root, "a")
	require.NoError(t, err)
	b, err := s.CreateLocation(ctx, root, "b")
	require.NoError(t, err)

	oldID := a.ID()
	require.NoError(t, a.Move(ctx, b))

	require.Eventually(t, func() bool {
		return !a.ID().Equal(oldID)
	}, 2*time.Second, 10*time.Millisecond)

	name, err := a.Name(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", name)
}

// S5: a call against an unreachable daemon times out, and a retry
// against a live one succeeds.
func TestTimeoutThenRetrySucceeds(t *testing.T) {
	sock, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	unreachable := sock.LocalAddr().String()
	sock.Close()

	s, err := Connect(unreachable)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	_, err = s.DefaultLocation(ctx)
	cancel()
	var sessErr *wire.SessionError
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, wire.ErrKindServerTimeOut, sessErr.Kind)
	require.NoError(t, s.Close())

	_, addr, stop := startDaemon(t)
	defer stop()
	s2, err := Connect(addr)
	require.NoError(t, err)
	defer s2.Close()

	loc, err := s2.DefaultLocation(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, loc.ID().Path)
}

// S6: the non-transferable operations reject synchronously, without
// ever constructing or sending a wire request.
func TestNonTransferableOpsRejectSynchronously(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	ctx := context.Background()
	s, err := Connect(addr)
	require.NoError(t, err)
	defer s.Close()

	loc, err := s.DefaultLocation(ctx)
	require.NoError(t, err)
	el, err := loc.CreateElement(ctx, "x")
	require.NoError(t, err)
	mod, err := s.LoadModule(ctx, "builtin:noop")
	require.NoError(t, err)

	err = s.RegisterAction(ctx, "whatever", mod, func(json.RawMessage) {})
	var sessErr *wire.SessionError
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, wire.ErrKindCustom, sessErr.Kind)

	err = s.RemoveAction(ctx, "whatever")
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, wire.ErrKindCustom, sessErr.Kind)

	err = mod.StepElement(ctx, el)
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, wire.ErrKindCustom, sessErr.Kind)

	err = mod.StepLocation(ctx, loc)
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, wire.ErrKindCustom, sessErr.Kind)

	err = el.SetEnabled(ctx, true, json.RawMessage(`{"custom":true}`))
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, wire.ErrKindCustom, sessErr.Kind)
}

// S7: saving a Location's info, mutating its name, and loading it
// back round-trips the mutated field.
func TestLocationInfoSaveMutateLoadRoundTrip(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	ctx := context.Background()
	s, err := Connect(addr)
	require.NoError(t, err)
	defer s.Close()

	root, err := s.DefaultLocation(ctx)
	require.NoError(t, err)
	child, err := s.CreateLocation(ctx, root, "original")
	require.NoError(t, err)

	info, err := child.Info(ctx)
	require.NoError(t, err)
	info.Name = "renamed"

	reloaded, err := child.LoadInfo(ctx, info)
	require.NoError(t, err)

	name, err := reloaded.Name(ctx)
	require.NoError(t, err)
	require.Equal(t, "renamed", name)
}

func TestVersionTextAppendsClientVersion(t *testing.T) {
	_, addr, stop := startDaemon(t)
	defer stop()

	s, err := Connect(addr)
	require.NoError(t, err)
	defer s.Close()

	text, err := s.VersionText(context.Background())
	require.NoError(t, err)
	require.Contains(t, text, "Daemon:")
	require.Contains(t, text, "DaemonClient: 1")
}
