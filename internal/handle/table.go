package handle

import "github.com/muzzman/daemon/internal/wire"

// Table bundles the three intern tables a client session keeps: one
// each for Location, Element and Module handles.
type Table struct {
	Locations *Registry[wire.LocationID]
	Elements  *Registry[wire.ElementID]
	Modules   *Registry[wire.ModuleID]
}

// NewTable constructs empty intern tables for all three entity kinds.
func NewTable() *Table {
	return &Table{
		Locations: NewRegistry[wire.LocationID](),
		Elements:  NewRegistry[wire.ElementID](),
		Modules:   NewRegistry[wire.ModuleID](),
	}
}

// Apply updates the handle tables to reflect a SessionEvent pushed
// from the daemon: destructions remove the matching handle, id
// rewrites relocate it in place. Events this table doesn't track
// (progress, notify, creations) are ignored here — creations only
// populate a handle once something actually asks for one.
func (t *Table) Apply(ev wire.SessionEvent) {
	switch ev.Kind {
	case wire.EventLocationDestroyed:
		t.Locations.Remove(ev.Location)
	case wire.EventLocationIDChanged:
		t.Locations.Rename(ev.OldLocation, ev.Location)
	case wire.EventElementDestroyed:
		t.Elements.Remove(ev.Element)
	case wire.EventElementIDChanged:
		t.Elements.Rename(ev.OldElement, ev.Element)
	case wire.EventModuleDestroyed:
		t.Modules.Remove(ev.Module)
	}
}

// GC sweeps all three tables, meant to be called once per client
// keep-alive tick.
func (t *Table) GC() {
	t.Locations.GC()
	t.Elements.GC()
	t.Modules.GC()
}
