package handle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muzzman/daemon/internal/wire"
)

func TestGetOrInternReturnsSameInstance(t *testing.T) {
	r := NewRegistry[wire.LocationID]()
	id := wire.LocationID{Path: []uint64{0, 1}}

	a := r.GetOrIntern(id)
	b := r.GetOrIntern(id)
	require.Same(t, a, b)
	require.Equal(t, 1, r.Len())
}

func TestRenameRewritesInPlace(t *testing.T) {
	r := NewRegistry[wire.ElementID]()
	old := wire.ElementID{Location: wire.LocationID{Path: []uint64{0}}, Index: 1}
	h := r.GetOrIntern(old)

	next := wire.ElementID{Location: wire.LocationID{Path: []uint64{0}}, Index: 2}
	r.Rename(old, next)

	require.Equal(t, next, h.ID())
	_, stillUnderOld := r.Lookup(old)
	require.False(t, stillUnderOld)
	got, ok := r.Lookup(next)
	require.True(t, ok)
	require.Same(t, h, got)
}

func TestRemoveInvalidatesLookup(t *testing.T) {
	r := NewRegistry[wire.ModuleID]()
	id := wire.ModuleID{Hi: 1, Lo: 2}
	r.GetOrIntern(id)
	r.Remove(id)

	_, ok := r.Lookup(id)
	require.False(t, ok)
}

func TestGCReclaimsUnreferencedHandles(t *testing.T) {
	r := NewRegistry[wire.ModuleID]()
	id := wire.ModuleID{Hi: 5}
	h := r.GetOrIntern(id)
	h.Release()

	removed := r.GC()
	require.Equal(t, 1, removed)
	_, ok := r.Lookup(id)
	require.False(t, ok)
}

func TestGCKeepsHandlesWithLiveHolders(t *testing.T) {
	r := NewRegistry[wire.ModuleID]()
	id := wire.ModuleID{Hi: 6}
	r.GetOrIntern(id) // one live external holder, never released

	removed := r.GC()
	require.Equal(t, 0, removed)
	_, ok := r.Lookup(id)
	require.True(t, ok)
}

func TestTableApplyHandlesDestroyedAndIDChanged(t *testing.T) {
	tbl := NewTable()
	loc := wire.LocationID{Path: []uint64{0}}
	h := tbl.Locations.GetOrIntern(loc)

	newLoc := wire.LocationID{Path: []uint64{1}}
	tbl.Apply(wire.SessionEvent{Kind: wire.EventLocationIDChanged, OldLocation: loc, Location: newLoc})
	require.Equal(t, newLoc, h.ID())

	tbl.Apply(wire.SessionEvent{Kind: wire.EventLocationDestroyed, Location: newLoc})
	_, ok := tbl.Locations.Lookup(newLoc)
	require.False(t, ok)
}

func TestSecondGetOrInternAfterFirstReleaseDoesNotResurrectStaleRefcount(t *testing.T) {
	r := NewRegistry[wire.ElementID]()
	id := wire.ElementID{Location: wire.LocationID{Path: []uint64{0}}, Index: 9}

	h1 := r.GetOrIntern(id)
	h1.Release()
	h2 := r.GetOrIntern(id)
	require.Same(t, h1, h2)

	// Acquired again by the second call; GC must not reclaim it now.
	removed := r.GC()
	require.Equal(t, 0, removed)
}
