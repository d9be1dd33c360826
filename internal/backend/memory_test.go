package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muzzman/daemon/internal/wire"
)

func TestDefaultLocationSeeded(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()
	require.Equal(t, "0", def.String())

	info, err := m.LocationInfo(def)
	require.NoError(t, err)
	require.Equal(t, "Downloads", info.Name)
}

func TestCreateElementAndGetInfo(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()

	el, err := m.CreateElement(def, "TestElement")
	require.NoError(t, err)

	info, err := m.ElementInfo(el)
	require.NoError(t, err)
	require.Equal(t, "TestElement", info.Name)
}

func TestDestroyElementThenNotFound(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()
	el, err := m.CreateElement(def, "x")
	require.NoError(t, err)

	require.NoError(t, m.DestroyElement(el))

	_, err = m.ElementInfo(el)
	require.Error(t, err)
	var se *wire.SessionError
	require.ErrorAs(t, err, &se)
	require.Equal(t, wire.ErrKindNotFound, se.Kind)
}

func TestMoveLocationEmitsIDChanged(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()

	a, err := m.CreateLocation(def, "a")
	require.NoError(t, err)
	b, err := m.CreateLocation(def, "b")
	require.NoError(t, err)

	var got wire.SessionEvent
	cancel := m.Subscribe(func(ev wire.SessionEvent) {
		if ev.Kind == wire.EventLocationIDChanged {
			got = ev
		}
	})
	defer cancel()

	require.NoError(t, m.MoveLocation(a, b))
	require.True(t, got.OldLocation.Equal(a))
	require.False(t, got.Location.Equal(a))
}

func TestElementWaitBlocksUntilTerminal(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()
	el, err := m.CreateElement(def, "x")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- m.ElementWait(ctx, el)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, m.SetElementProperty(el, PropStatuses, PropValue{Strs: []string{"running", "done"}}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ElementWait did not unblock")
	}
}

func TestElementWaitTimesOutViaContext(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()
	el, err := m.CreateElement(def, "x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = m.ElementWait(ctx, el)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocationInfoRoundTripMutateName(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()

	info, err := m.LocationInfo(def)
	require.NoError(t, err)
	info.Name = "Mutated"

	newID, err := m.LoadLocationInfo(info)
	require.NoError(t, err)

	loaded, err := m.LocationInfo(newID)
	require.NoError(t, err)
	require.Equal(t, "Mutated", loaded.Name)

	kids, err := m.LocationsRange(def, 0, 10)
	require.NoError(t, err)
	found := false
	for _, k := range kids {
		if k.Equal(newID) {
			found = true
		}
	}
	require.True(t, found)
}

func TestNotifyOnlyReachesSubscribers(t *testing.T) {
	m := NewMemory()
	def := m.DefaultLocation()

	var events []wire.SessionEvent
	cancel := m.Subscribe(func(ev wire.SessionEvent) { events = append(events, ev) })
	defer cancel()

	require.NoError(t, m.LocationNotify(def, []byte(`"unsubscribed"`)))
	require.Empty(t, events)

	sub := wire.ID128{Lo: 77}
	require.NoError(t, m.LocationSubscribe(def, sub))
	require.NoError(t, m.LocationNotify(def, []byte(`"hi"`)))
	require.Len(t, events, 1)
	require.Equal(t, sub, events[0].NotifyTarget)
}

func TestModuleLoadAndProperties(t *testing.T) {
	m := NewMemory()
	id, err := m.LoadModule("/modules/http")
	require.NoError(t, err)

	require.NoError(t, m.SetModuleProperty(id, PropName, PropValue{Str: "HTTP"}))
	v, err := m.ModuleProperty(id, PropName)
	require.NoError(t, err)
	require.Equal(t, "HTTP", v.Str)

	require.NoError(t, m.RemoveModule(id))
	_, err = m.ModuleProperty(id, PropName)
	require.Error(t, err)
}
