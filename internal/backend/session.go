// Package backend declares the daemon's view of the backing Session:
// the engine capability that actually owns Locations, Elements, and
// loaded Modules. Per the protocol's scope, this capability is
// consumed as an opaque interface by the dispatcher; this package also
// ships an in-memory reference implementation (Memory) sufficient to
// exercise and test the dispatcher end-to-end.
package backend

import (
	"context"
	"encoding/json"

	"github.com/muzzman/daemon/internal/wire"
)

// Prop names a gettable/settable scalar or blob property shared across
// Location, Element, and Module records. Not every prop is valid for
// every entity kind; SetProperty/Property implementations reject the
// ones that aren't with wire.ErrDomain.
type Prop byte

const (
	PropName Prop = iota
	PropDesc
	PropDefaultName
	PropDefaultDesc
	PropMeta
	PropUrl
	PropElementData
	PropModuleData
	PropData
	PropPath
	PropProxy
	PropSettings
	PropElementSettings
	PropLocationSettings
	PropModuleSettings
	PropStatuses
	PropStatus
	PropProgress
	PropShouldSave
	PropEnabled
)

// PropValue carries whichever of its fields is meaningful for the Prop
// being read or written, mirroring wire.Args/wire.Result's shape-typed
// payload convention.
type PropValue struct {
	Str  string
	Bool bool
	U64  uint64
	F32  float32
	Strs []string
	JSON json.RawMessage
}

// Session is the full surface the dispatcher calls into. Every method
// corresponds to one or more wire.Op entries; the dispatcher owns the
// op→method mapping (spec.md §4.3).
type Session interface {
	Version() uint64
	VersionText() string

	LoadModule(path string) (wire.ModuleID, error)
	LoadModuleInfo(path string) (wire.ModuleID, error)
	FindModule(uid wire.ModuleID) (wire.ModuleID, error)
	RemoveModule(id wire.ModuleID) error
	ModulesLen() uint64
	ModulesRange(start, count uint64) ([]wire.ModuleID, error)
	ModuleProperty(id wire.ModuleID, p Prop) (PropValue, error)
	SetModuleProperty(id wire.ModuleID, p Prop, v PropValue) error
	ModuleUID(id wire.ModuleID) (wire.ModuleID, error)
	ModuleVersion(id wire.ModuleID) (uint64, error)
	ModuleSupportedVersions(id wire.ModuleID) ([]uint64, error)
	ModuleAcceptUrl(id wire.ModuleID, url string) (bool, error)
	ModuleAcceptExtension(id wire.ModuleID, ext string) (bool, error)
	ModuleAcceptedProtocols(id wire.ModuleID) ([]string, error)
	ModuleAcceptedExtensions(id wire.ModuleID) ([]string, error)
	ModuleInitLocation(id wire.ModuleID, loc wire.LocationID) error
	ModuleInitElement(id wire.ModuleID, el wire.ElementID) error

	DefaultLocation() wire.LocationID
	CreateLocation(parent wire.LocationID, name string) (wire.LocationID, error)
	DestroyLocation(id wire.LocationID) error
	MoveLocation(id, newParent wire.LocationID) error
	LocationsLen(parent wire.LocationID) (uint64, error)
	LocationsRange(parent wire.LocationID, start, count uint64) ([]wire.LocationID, error)
	LocationProperty(id wire.LocationID, p Prop) (PropValue, error)
	SetLocationProperty(id wire.LocationID, p Prop, v PropValue) error
	LocationInfo(id wire.LocationID) (wire.LocationInfo, error)
	LoadLocationInfo(info wire.LocationInfo) (wire.LocationID, error)
	LocationElementsLen(id wire.LocationID) (uint64, error)
	LocationElements(id wire.LocationID) ([]wire.ElementID, error)
	LocationModule(id wire.LocationID) (*wire.ModuleID, error)
	SetLocationModule(id wire.LocationID, mod *wire.ModuleID) error
	LocationIsError(id wire.LocationID) (bool, error)
	LocationNotify(id wire.LocationID, payload json.RawMessage) error
	LocationEmit(id wire.LocationID, payload json.RawMessage) error
	LocationSubscribe(id wire.LocationID, subscriber wire.ID128) error
	LocationUnSubscribe(id wire.LocationID, subscriber wire.ID128) error

	CreateElement(loc wire.LocationID, name string) (wire.ElementID, error)
	MoveElement(id wire.ElementID, newLoc wire.LocationID) error
	DestroyElement(id wire.ElementID) error
	ElementProperty(id wire.ElementID, p Prop) (PropValue, error)
	SetElementProperty(id wire.ElementID, p Prop, v PropValue) error
	ElementInfo(id wire.ElementID) (wire.ElementInfo, error)
	LoadElementInfo(info wire.ElementInfo) (wire.ElementID, error)
	ElementModule(id wire.ElementID) (*wire.ModuleID, error)
	SetElementModule(id wire.ElementID, mod *wire.ModuleID) error
	ElementResolvModule(id wire.ElementID) (wire.ModuleID, error)
	ElementWait(ctx context.Context, id wire.ElementID) error
	ElementIsError(id wire.ElementID) (bool, error)
	ElementNotify(id wire.ElementID, payload json.RawMessage) error
	ElementEmit(id wire.ElementID, payload json.RawMessage) error
	ElementSubscribe(id wire.ElementID, subscriber wire.ID128) error
	ElementUnSubscribe(id wire.ElementID, subscriber wire.ID128) error

	ActionsLen() uint64
	ActionsRange(start, count uint64) ([]wire.ActionEntry, error)
	RunAction(name string, module wire.ModuleID, args json.RawMessage) (json.RawMessage, error)

	// Subscribe installs fn to be called on every SessionEvent the
	// backend emits (spec.md §6 "Session callbacks from the backing
	// layer"). fn MUST be safe to call concurrently and from any
	// goroutine. The returned cancel func removes the subscription.
	Subscribe(fn func(wire.SessionEvent)) (cancel func())
}
