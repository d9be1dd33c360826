package session

import (
	"context"
	"encoding/json"

	"github.com/muzzman/daemon/internal/handle"
	"github.com/muzzman/daemon/internal/wire"
)

// LRef is an interned, mutable reference to a Location. Two calls
// that resolve to the same LocationID always share the same *LRef
// state via the underlying handle, including across id rewrites.
type LRef struct {
	s *Session
	h *handle.Handle[wire.LocationID]
}

// ID returns the Location's current path-based id.
func (l *LRef) ID() wire.LocationID { return l.h.ID() }

// Release gives up this reference. Once every holder has released,
// the handle is reclaimed on the next GC sweep.
func (l *LRef) Release() { l.h.Release() }

func (l *LRef) call(ctx context.Context, op wire.Op, args wire.Args) (wire.Result, error) {
	args.Location = l.ID()
	return l.s.call(ctx, op, args)
}

func (l *LRef) Name(ctx context.Context) (string, error) {
	res, err := l.call(ctx, wire.OpLocationGetName, wire.Args{})
	return res.Str, err
}

func (l *LRef) SetName(ctx context.Context, name string) error {
	_, err := l.call(ctx, wire.OpLocationSetName, wire.Args{Str: name})
	return err
}

func (l *LRef) Desc(ctx context.Context) (string, error) {
	res, err := l.call(ctx, wire.OpLocationGetDesc, wire.Args{})
	return res.Str, err
}

func (l *LRef) SetDesc(ctx context.Context, desc string) error {
	_, err := l.call(ctx, wire.OpLocationSetDesc, wire.Args{Str: desc})
	return err
}

func (l *LRef) Path(ctx context.Context) (string, error) {
	res, err := l.call(ctx, wire.OpLocationGetPath, wire.Args{})
	return res.Str, err
}

func (l *LRef) SetPath(ctx context.Context, path string) error {
	_, err := l.call(ctx, wire.OpLocationSetPath, wire.Args{Str: path})
	return err
}

func (l *LRef) ShouldSave(ctx context.Context) (bool, error) {
	res, err := l.call(ctx, wire.OpLocationGetShouldSave, wire.Args{})
	return res.Bool, err
}

func (l *LRef) SetShouldSave(ctx context.Context, v bool) error {
	_, err := l.call(ctx, wire.OpLocationSetShouldSave, wire.Args{Bool: v})
	return err
}

// ElementsLen reports how many Elements l directly contains.
func (l *LRef) ElementsLen(ctx context.Context) (uint64, error) {
	res, err := l.call(ctx, wire.OpLocationGetElementsLen, wire.Args{})
	return res.U64, err
}

// Elements lists l's Elements, interning a handle for each. The range
// start, end is sent with the request, but the dispatcher does not
// apply it: every Element of l is returned.
func (l *LRef) Elements(ctx context.Context, start, end uint64) ([]*ERef, error) {
	res, err := l.call(ctx, wire.OpLocationGetElements, wire.Args{Range: [2]uint64{start, end}})
	if err != nil {
		return nil, err
	}
	out := make([]*ERef, len(res.Elements))
	for i, id := range res.Elements {
		out[i] = l.s.wrapElement(id)
	}
	return out, nil
}

// Info returns a round-trippable snapshot of l (testable property S7).
func (l *LRef) Info(ctx context.Context) (wire.LocationInfo, error) {
	res, err := l.call(ctx, wire.OpLocationGetInfo, wire.Args{})
	return res.LocationInfo, err
}

// LoadInfo restores l from a previously saved LocationInfo snapshot,
// returning a handle to the resulting Location (which may or may not
// be l itself, depending on the daemon's restore semantics).
func (l *LRef) LoadInfo(ctx context.Context, info wire.LocationInfo) (*LRef, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	res, err := l.call(ctx, wire.OpLoadLocationInfo, wire.Args{JSON: raw})
	if err != nil {
		return nil, err
	}
	return l.s.wrapLocation(res.Location), nil
}

// Module returns the Module bound to l, or nil if none is bound.
func (l *LRef) Module(ctx context.Context) (*MRef, error) {
	res, err := l.call(ctx, wire.OpLocationGetModule, wire.Args{})
	if err != nil {
		return nil, err
	}
	if res.ModuleOpt == nil {
		return nil, nil
	}
	return l.s.wrapModule(*res.ModuleOpt), nil
}

// SetModule binds l to m, or unbinds it if m is nil.
func (l *LRef) SetModule(ctx context.Context, m *MRef) error {
	var opt *wire.ModuleID
	if m != nil {
		id := m.ID()
		opt = &id
	}
	_, err := l.call(ctx, wire.OpLocationSetModule, wire.Args{ModuleOpt: opt})
	return err
}

func (l *LRef) Settings(ctx context.Context) (json.RawMessage, error) {
	res, err := l.call(ctx, wire.OpLocationGetSettings, wire.Args{})
	return res.JSON, err
}

func (l *LRef) SetSettings(ctx context.Context, settings json.RawMessage) error {
	_, err := l.call(ctx, wire.OpLocationSetSettings, wire.Args{JSON: settings})
	return err
}

func (l *LRef) ModuleSettings(ctx context.Context) (json.RawMessage, error) {
	res, err := l.call(ctx, wire.OpLocationGetModuleSettings, wire.Args{})
	return res.JSON, err
}

func (l *LRef) SetModuleSettings(ctx context.Context, settings json.RawMessage) error {
	_, err := l.call(ctx, wire.OpLocationSetModuleSettings, wire.Args{JSON: settings})
	return err
}

func (l *LRef) Statuses(ctx context.Context) ([]string, error) {
	res, err := l.call(ctx, wire.OpLocationGetStatuses, wire.Args{})
	return res.Strs, err
}

func (l *LRef) SetStatuses(ctx context.Context, statuses []string) error {
	_, err := l.call(ctx, wire.OpLocationSetStatuses, wire.Args{Strs: statuses})
	return err
}

func (l *LRef) Status(ctx context.Context) (uint64, error) {
	res, err := l.call(ctx, wire.OpLocationGetStatus, wire.Args{})
	return res.U64, err
}

func (l *LRef) SetStatus(ctx context.Context, status uint64) error {
	_, err := l.call(ctx, wire.OpLocationSetStatus, wire.Args{U64: status})
	return err
}

func (l *LRef) Progress(ctx context.Context) (float32, error) {
	res, err := l.call(ctx, wire.OpLocationGetProgress, wire.Args{})
	return res.F32, err
}

func (l *LRef) SetProgress(ctx context.Context, p float32) error {
	_, err := l.call(ctx, wire.OpLocationSetProgress, wire.Args{F32: p})
	return err
}

func (l *LRef) IsEnabled(ctx context.Context) (bool, error) {
	res, err := l.call(ctx, wire.OpLocationGetIsEnabled, wire.Args{})
	return res.Bool, err
}

func (l *LRef) SetIsEnabled(ctx context.Context, v bool) error {
	_, err := l.call(ctx, wire.OpLocationSetIsEnabled, wire.Args{Bool: v})
	return err
}

func (l *LRef) IsError(ctx context.Context) (bool, error) {
	res, err := l.call(ctx, wire.OpLocationIsError, wire.Args{})
	return res.Bool, err
}

func (l *LRef) Notify(ctx context.Context, payload json.RawMessage) error {
	_, err := l.call(ctx, wire.OpLocationNotify, wire.Args{JSON: payload})
	return err
}

func (l *LRef) Emit(ctx context.Context, payload json.RawMessage) error {
	_, err := l.call(ctx, wire.OpLocationEmit, wire.Args{JSON: payload})
	return err
}

func (l *LRef) Subscribe(ctx context.Context, subscriber wire.ID128) error {
	_, err := l.call(ctx, wire.OpLocationSubscribe, wire.Args{Subscriber: subscriber})
	return err
}

func (l *LRef) Unsubscribe(ctx context.Context, subscriber wire.ID128) error {
	_, err := l.call(ctx, wire.OpLocationUnSubscribe, wire.Args{Subscriber: subscriber})
	return err
}

// Move relocates l to be a child of to.
func (l *LRef) Move(ctx context.Context, to *LRef) error {
	_, err := l.s.call(ctx, wire.OpMoveLocation, wire.Args{Location: l.ID(), Location2: to.ID()})
	return err
}

func (l *LRef) Destroy(ctx context.Context) error {
	_, err := l.call(ctx, wire.OpDestroyLocation, wire.Args{})
	return err
}

// CreateElement creates a new Element named name directly under l.
func (l *LRef) CreateElement(ctx context.Context, name string) (*ERef, error) {
	res, err := l.s.call(ctx, wire.OpCreateElement, wire.Args{Location: l.ID(), Str: name})
	if err != nil {
		return nil, err
	}
	return l.s.wrapElement(res.Element), nil
}
