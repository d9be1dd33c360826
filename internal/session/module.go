package session

import (
	"context"
	"encoding/json"

	"github.com/muzzman/daemon/internal/handle"
	"github.com/muzzman/daemon/internal/wire"
)

// MRef is an interned reference to a loaded Module.
type MRef struct {
	s *Session
	h *handle.Handle[wire.ModuleID]
}

// ID returns the Module's current handle id (which tracks the
// daemon's internal slot, distinct from Uid's stable identity).
func (m *MRef) ID() wire.ModuleID { return m.h.ID() }

// Release gives up this reference.
func (m *MRef) Release() { m.h.Release() }

func (m *MRef) call(ctx context.Context, op wire.Op, args wire.Args) (wire.Result, error) {
	args.Module = m.ID()
	return m.s.call(ctx, op, args)
}

func (m *MRef) Name(ctx context.Context) (string, error) {
	res, err := m.call(ctx, wire.OpModuleGetName, wire.Args{})
	return res.Str, err
}

func (m *MRef) SetName(ctx context.Context, name string) error {
	_, err := m.call(ctx, wire.OpModuleSetName, wire.Args{Str: name})
	return err
}

func (m *MRef) Desc(ctx context.Context) (string, error) {
	res, err := m.call(ctx, wire.OpModuleGetDesc, wire.Args{})
	return res.Str, err
}

func (m *MRef) SetDesc(ctx context.Context, desc string) error {
	_, err := m.call(ctx, wire.OpModuleSetDesc, wire.Args{Str: desc})
	return err
}

func (m *MRef) DefaultName(ctx context.Context) (string, error) {
	res, err := m.call(ctx, wire.OpModuleGetDefaultName, wire.Args{})
	return res.Str, err
}

func (m *MRef) DefaultDesc(ctx context.Context) (string, error) {
	res, err := m.call(ctx, wire.OpModuleGetDefaultDesc, wire.Args{})
	return res.Str, err
}

func (m *MRef) Proxy(ctx context.Context) (uint64, error) {
	res, err := m.call(ctx, wire.OpModuleGetProxy, wire.Args{})
	return res.U64, err
}

func (m *MRef) SetProxy(ctx context.Context, proxy uint64) error {
	_, err := m.call(ctx, wire.OpModuleSetProxy, wire.Args{U64: proxy})
	return err
}

func (m *MRef) Settings(ctx context.Context) (json.RawMessage, error) {
	res, err := m.call(ctx, wire.OpModuleGetSettings, wire.Args{})
	return res.JSON, err
}

func (m *MRef) SetSettings(ctx context.Context, settings json.RawMessage) error {
	_, err := m.call(ctx, wire.OpModuleSetSettings, wire.Args{JSON: settings})
	return err
}

func (m *MRef) ElementSettings(ctx context.Context) (json.RawMessage, error) {
	res, err := m.call(ctx, wire.OpModuleGetElementSettings, wire.Args{})
	return res.JSON, err
}

func (m *MRef) SetElementSettings(ctx context.Context, settings json.RawMessage) error {
	_, err := m.call(ctx, wire.OpModuleSetElementSettings, wire.Args{JSON: settings})
	return err
}

func (m *MRef) LocationSettings(ctx context.Context) (json.RawMessage, error) {
	res, err := m.call(ctx, wire.OpModuleGetLocationSettings, wire.Args{})
	return res.JSON, err
}

func (m *MRef) SetLocationSettings(ctx context.Context, settings json.RawMessage) error {
	_, err := m.call(ctx, wire.OpModuleSetLocationSettings, wire.Args{JSON: settings})
	return err
}

// Uid returns the module's stable 128-bit identity.
func (m *MRef) Uid(ctx context.Context) (wire.ModuleID, error) {
	res, err := m.call(ctx, wire.OpModuleGetUid, wire.Args{})
	return res.Module, err
}

func (m *MRef) Version(ctx context.Context) (uint64, error) {
	res, err := m.call(ctx, wire.OpModuleGetVersion, wire.Args{})
	return res.U64, err
}

// SupportedVersions lists every wire format version this module can
// still read, for migrating old saved ElementData/ModuleData.
func (m *MRef) SupportedVersions(ctx context.Context) ([]uint64, error) {
	res, err := m.call(ctx, wire.OpModuleGetSupportedVersions, wire.Args{})
	if err != nil {
		return nil, err
	}
	if len(res.JSON) == 0 {
		return nil, nil
	}
	var versions []uint64
	if err := json.Unmarshal(res.JSON, &versions); err != nil {
		return nil, wire.ErrDomain("malformed supported-versions payload")
	}
	return versions, nil
}

// AcceptUrl reports whether m claims to handle url.
func (m *MRef) AcceptUrl(ctx context.Context, url string) (bool, error) {
	res, err := m.call(ctx, wire.OpModuleAcceptUrl, wire.Args{Str: url})
	return res.Bool, err
}

// AcceptExtension reports whether m claims to handle filename's
// extension.
func (m *MRef) AcceptExtension(ctx context.Context, filename string) (bool, error) {
	res, err := m.call(ctx, wire.OpModuleAcceptExtension, wire.Args{Str: filename})
	return res.Bool, err
}

func (m *MRef) AcceptedProtocols(ctx context.Context) ([]string, error) {
	res, err := m.call(ctx, wire.OpModuleAcceptedProtocols, wire.Args{})
	return res.Strs, err
}

func (m *MRef) AcceptedExtensions(ctx context.Context) ([]string, error) {
	res, err := m.call(ctx, wire.OpModuleAcceptedExtensions, wire.Args{})
	return res.Strs, err
}

// InitLocation runs m's location-initialization hook against loc. The
// settings payload is sent with the request, but the dispatcher does
// not pass it to the backing Session.
func (m *MRef) InitLocation(ctx context.Context, loc *LRef, settings json.RawMessage) error {
	_, err := m.s.call(ctx, wire.OpModuleInitLocation, wire.Args{Module: m.ID(), Location: loc.ID(), JSON: settings})
	return err
}

// InitElement runs m's element-initialization hook against elem.
func (m *MRef) InitElement(ctx context.Context, elem *ERef) error {
	_, err := m.s.call(ctx, wire.OpModuleInitElement, wire.Args{Module: m.ID(), Element: elem.ID()})
	return err
}

// StepElement always fails: a module's stepping function runs against
// thread-local interpreter state that has no wire representation
// (spec.md §4.3/§7).
func (m *MRef) StepElement(ctx context.Context, elem *ERef) error {
	return wire.ErrCustom("ModuleStepElement requires thread-local module state, which cannot cross the wire")
}

// StepLocation fails for the same reason as StepElement.
func (m *MRef) StepLocation(ctx context.Context, loc *LRef) error {
	return wire.ErrCustom("ModuleStepLocation requires thread-local module state, which cannot cross the wire")
}

// Remove unloads m.
func (m *MRef) Remove(ctx context.Context) error {
	return m.s.RemoveModule(ctx, m)
}
