package session

import (
	"context"
	"encoding/json"

	"github.com/muzzman/daemon/internal/handle"
	"github.com/muzzman/daemon/internal/wire"
)

// ERef is an interned, mutable reference to an Element.
type ERef struct {
	s *Session
	h *handle.Handle[wire.ElementID]
}

// ID returns the Element's current id.
func (e *ERef) ID() wire.ElementID { return e.h.ID() }

// Release gives up this reference.
func (e *ERef) Release() { e.h.Release() }

func (e *ERef) call(ctx context.Context, op wire.Op, args wire.Args) (wire.Result, error) {
	args.Element = e.ID()
	return e.s.call(ctx, op, args)
}

func (e *ERef) Name(ctx context.Context) (string, error) {
	res, err := e.call(ctx, wire.OpElementGetName, wire.Args{})
	return res.Str, err
}

func (e *ERef) SetName(ctx context.Context, name string) error {
	_, err := e.call(ctx, wire.OpElementSetName, wire.Args{Str: name})
	return err
}

func (e *ERef) Desc(ctx context.Context) (string, error) {
	res, err := e.call(ctx, wire.OpElementGetDesc, wire.Args{})
	return res.Str, err
}

func (e *ERef) SetDesc(ctx context.Context, desc string) error {
	_, err := e.call(ctx, wire.OpElementSetDesc, wire.Args{Str: desc})
	return err
}

func (e *ERef) Meta(ctx context.Context) (string, error) {
	res, err := e.call(ctx, wire.OpElementGetMeta, wire.Args{})
	return res.Str, err
}

func (e *ERef) SetMeta(ctx context.Context, meta string) error {
	_, err := e.call(ctx, wire.OpElementSetMeta, wire.Args{Str: meta})
	return err
}

func (e *ERef) Url(ctx context.Context) (string, error) {
	res, err := e.call(ctx, wire.OpElementGetUrl, wire.Args{})
	return res.Str, err
}

func (e *ERef) SetUrl(ctx context.Context, url string) error {
	_, err := e.call(ctx, wire.OpElementSetUrl, wire.Args{Str: url})
	return err
}

func (e *ERef) ElementData(ctx context.Context) (json.RawMessage, error) {
	res, err := e.call(ctx, wire.OpElementGetElementData, wire.Args{})
	return res.JSON, err
}

func (e *ERef) SetElementData(ctx context.Context, data json.RawMessage) error {
	_, err := e.call(ctx, wire.OpElementSetElementData, wire.Args{JSON: data})
	return err
}

func (e *ERef) ModuleData(ctx context.Context) (json.RawMessage, error) {
	res, err := e.call(ctx, wire.OpElementGetModuleData, wire.Args{})
	return res.JSON, err
}

func (e *ERef) SetModuleData(ctx context.Context, data json.RawMessage) error {
	_, err := e.call(ctx, wire.OpElementSetModuleData, wire.Args{JSON: data})
	return err
}

// Module returns the Module bound to e, or nil if none is bound.
func (e *ERef) Module(ctx context.Context) (*MRef, error) {
	res, err := e.call(ctx, wire.OpElementGetModule, wire.Args{})
	if err != nil {
		return nil, err
	}
	if res.ModuleOpt == nil {
		return nil, nil
	}
	return e.s.wrapModule(*res.ModuleOpt), nil
}

// SetModule binds e to m, or unbinds it if m is nil.
func (e *ERef) SetModule(ctx context.Context, m *MRef) error {
	var opt *wire.ModuleID
	if m != nil {
		id := m.ID()
		opt = &id
	}
	_, err := e.call(ctx, wire.OpElementSetModule, wire.Args{ModuleOpt: opt})
	return err
}

func (e *ERef) Status(ctx context.Context) (uint64, error) {
	res, err := e.call(ctx, wire.OpElementGetStatus, wire.Args{})
	return res.U64, err
}

func (e *ERef) SetStatus(ctx context.Context, status uint64) error {
	_, err := e.call(ctx, wire.OpElementSetStatus, wire.Args{U64: status})
	return err
}

func (e *ERef) Statuses(ctx context.Context) ([]string, error) {
	res, err := e.call(ctx, wire.OpElementGetStatuses, wire.Args{})
	return res.Strs, err
}

// SetStatuses replaces the closed set of statuses e can ever report
// (spec.md's terminal-status convention used by ElementWait).
func (e *ERef) SetStatuses(ctx context.Context, statuses []string) error {
	_, err := e.call(ctx, wire.OpElementSetStatuses, wire.Args{Strs: statuses})
	return err
}

func (e *ERef) Data(ctx context.Context) (json.RawMessage, error) {
	res, err := e.call(ctx, wire.OpElementGetData, wire.Args{})
	return res.JSON, err
}

func (e *ERef) SetData(ctx context.Context, data json.RawMessage) error {
	_, err := e.call(ctx, wire.OpElementSetData, wire.Args{JSON: data})
	return err
}

func (e *ERef) Progress(ctx context.Context) (float32, error) {
	res, err := e.call(ctx, wire.OpElementGetProgress, wire.Args{})
	return res.F32, err
}

func (e *ERef) SetProgress(ctx context.Context, p float32) error {
	_, err := e.call(ctx, wire.OpElementSetProgress, wire.Args{F32: p})
	return err
}

func (e *ERef) ShouldSave(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, wire.OpElementGetShouldSave, wire.Args{})
	return res.Bool, err
}

func (e *ERef) SetShouldSave(ctx context.Context, v bool) error {
	_, err := e.call(ctx, wire.OpElementSetShouldSave, wire.Args{Bool: v})
	return err
}

func (e *ERef) Enabled(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, wire.OpElementGetEnabled, wire.Args{})
	return res.Bool, err
}

// SetEnabled toggles e. Passing a non-nil storage value is rejected
// synchronously: only a module whose status storage is None has
// enable/disable state that a generic client can serialize, so any
// other storage can't cross the wire as part of this call (spec.md
// §4.3/§7).
func (e *ERef) SetEnabled(ctx context.Context, enabled bool, storage json.RawMessage) error {
	if storage != nil {
		return wire.ErrCustom("ElementSetEnabled: non-None status storage cannot cross the wire")
	}
	_, err := e.call(ctx, wire.OpElementSetEnabled, wire.Args{Bool: enabled})
	return err
}

// Info returns a round-trippable snapshot of e.
func (e *ERef) Info(ctx context.Context) (wire.ElementInfo, error) {
	res, err := e.call(ctx, wire.OpElementGetInfo, wire.Args{})
	return res.ElementInfo, err
}

// ResolvModule asks the daemon to bind e to whichever loaded module
// accepts its url/extension, reporting whether one was found.
func (e *ERef) ResolvModule(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, wire.OpElementResolvModule, wire.Args{})
	return res.Bool, err
}

// Wait blocks until e reaches one of its terminal statuses, or until
// ctx is done.
func (e *ERef) Wait(ctx context.Context) error {
	_, err := e.call(ctx, wire.OpElementWait, wire.Args{})
	return err
}

func (e *ERef) IsError(ctx context.Context) (bool, error) {
	res, err := e.call(ctx, wire.OpElementIsError, wire.Args{})
	return res.Bool, err
}

func (e *ERef) Notify(ctx context.Context, payload json.RawMessage) error {
	_, err := e.call(ctx, wire.OpElementNotify, wire.Args{JSON: payload})
	return err
}

func (e *ERef) Emit(ctx context.Context, payload json.RawMessage) error {
	_, err := e.call(ctx, wire.OpElementEmit, wire.Args{JSON: payload})
	return err
}

func (e *ERef) Subscribe(ctx context.Context, subscriber wire.ID128) error {
	_, err := e.call(ctx, wire.OpElementSubscribe, wire.Args{Subscriber: subscriber})
	return err
}

func (e *ERef) Unsubscribe(ctx context.Context, subscriber wire.ID128) error {
	_, err := e.call(ctx, wire.OpElementUnSubscribe, wire.Args{Subscriber: subscriber})
	return err
}

// Move relocates e to Location to.
func (e *ERef) Move(ctx context.Context, to *LRef) error {
	_, err := e.s.call(ctx, wire.OpMoveElement, wire.Args{Element: e.ID(), Location: to.ID()})
	return err
}

func (e *ERef) Destroy(ctx context.Context) error {
	_, err := e.call(ctx, wire.OpDestroyElement, wire.Args{})
	return err
}
