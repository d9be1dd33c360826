// Package session implements the session façade (C6): the engine-facing
// API described by the daemon protocol, built entirely on top of the
// client connection (C4) and the handle registry (C5). Every method
// here follows the same recipe — build a Request, send it, wait for
// the matching Response, unwrap Result/SessionError, intern any id it
// carries — except the handful of operations that require
// non-transferable parameters, which are rejected synchronously
// without ever touching the wire.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/muzzman/daemon/internal/clientconn"
	"github.com/muzzman/daemon/internal/handle"
	"github.com/muzzman/daemon/internal/wire"
)

// ClientVersion is this façade's own protocol version, appended to
// GetVersionText's daemon-supplied string (spec.md §6).
const ClientVersion = 1

// gcInterval controls how often interned handles with no remaining
// external references are swept: once per keep-alive tick.
const gcInterval = clientconn.TickInterval

// Session is one client's view of the daemon: a connection plus the
// handle tables that keep Location/Element/Module references alive
// and in sync with server-pushed rename/destroy events.
type Session struct {
	conn    *clientconn.Conn
	handles *handle.Table

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Connect dials the daemon at addr and starts the background event
// and GC loops.
func Connect(addr string) (*Session, error) {
	conn, err := clientconn.Dial(addr)
	if err != nil {
		return nil, err
	}
	s := &Session{
		conn:    conn,
		handles: handle.NewTable(),
		stopCh:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.eventLoop()
	return s, nil
}

// Close stops the background loops and the underlying connection.
func (s *Session) Close() error {
	close(s.stopCh)
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

func (s *Session) eventLoop() {
	defer s.wg.Done()
	gc := time.NewTicker(gcInterval)
	defer gc.Stop()
	for {
		select {
		case ev := <-s.conn.Events():
			s.handles.Apply(ev)
		case <-gc.C:
			s.handles.GC()
		case <-s.stopCh:
			return
		}
	}
}

// call sends op/args and unwraps the Result<T, SessionError> pair,
// collapsing both the transport error and the session error into a
// single Go error return.
func (s *Session) call(ctx context.Context, op wire.Op, args wire.Args) (wire.Result, error) {
	res, sessErr, err := s.conn.Call(ctx, op, args)
	if err != nil {
		return wire.Result{}, err
	}
	if sessErr != nil {
		return wire.Result{}, sessErr
	}
	return res, nil
}

func (s *Session) wrapLocation(id wire.LocationID) *LRef {
	return &LRef{s: s, h: s.handles.Locations.GetOrIntern(id)}
}

func (s *Session) wrapElement(id wire.ElementID) *ERef {
	return &ERef{s: s, h: s.handles.Elements.GetOrIntern(id)}
}

func (s *Session) wrapModule(id wire.ModuleID) *MRef {
	return &MRef{s: s, h: s.handles.Modules.GetOrIntern(id)}
}

// Version reports the backing Session's version, as served by the daemon.
func (s *Session) Version(ctx context.Context) (uint64, error) {
	res, err := s.call(ctx, wire.OpGetVersion, wire.Args{})
	return res.U64, err
}

// VersionText reports the daemon's human-readable version string with
// this client's own version appended (spec.md §6).
func (s *Session) VersionText(ctx context.Context) (string, error) {
	res, err := s.call(ctx, wire.OpGetVersionText, wire.Args{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, DaemonClient: %d", res.Str, ClientVersion), nil
}

// LoadModule loads a module from path, returning a handle to it.
func (s *Session) LoadModule(ctx context.Context, path string) (*MRef, error) {
	res, err := s.call(ctx, wire.OpLoadModule, wire.Args{Str: path})
	if err != nil {
		return nil, err
	}
	return s.wrapModule(res.Module), nil
}

// LoadModuleInfo loads a module's descriptor from path without
// running it, returning a handle to the resulting stub entry.
func (s *Session) LoadModuleInfo(ctx context.Context, path string) (*MRef, error) {
	res, err := s.call(ctx, wire.OpLoadModuleInfo, wire.Args{Str: path})
	if err != nil {
		return nil, err
	}
	return s.wrapModule(res.Module), nil
}

// FindModule looks up an already-loaded module by its stable uid.
func (s *Session) FindModule(ctx context.Context, uid wire.ModuleID) (*MRef, error) {
	res, err := s.call(ctx, wire.OpFindModule, wire.Args{Module: uid})
	if err != nil {
		return nil, err
	}
	return s.wrapModule(res.Module), nil
}

// RemoveModule unloads m.
func (s *Session) RemoveModule(ctx context.Context, m *MRef) error {
	_, err := s.call(ctx, wire.OpRemoveModule, wire.Args{Module: m.ID()})
	return err
}

// ModulesLen reports how many modules are currently loaded.
func (s *Session) ModulesLen(ctx context.Context) (uint64, error) {
	res, err := s.call(ctx, wire.OpGetModulesLen, wire.Args{})
	return res.U64, err
}

// ModulesRange lists loaded modules in [start, end).
func (s *Session) ModulesRange(ctx context.Context, start, end uint64) ([]*MRef, error) {
	res, err := s.call(ctx, wire.OpGetModulesRange, wire.Args{Range: [2]uint64{start, end}})
	if err != nil {
		return nil, err
	}
	out := make([]*MRef, len(res.Modules))
	for i, id := range res.Modules {
		out[i] = s.wrapModule(id)
	}
	return out, nil
}

// DefaultLocation returns a handle to the session's root Location.
func (s *Session) DefaultLocation(ctx context.Context) (*LRef, error) {
	res, err := s.call(ctx, wire.OpGetDefaultLocation, wire.Args{})
	if err != nil {
		return nil, err
	}
	return s.wrapLocation(res.Location), nil
}

// CreateLocation creates a new child Location of parent named name.
func (s *Session) CreateLocation(ctx context.Context, parent *LRef, name string) (*LRef, error) {
	res, err := s.call(ctx, wire.OpCreateLocation, wire.Args{Location: parent.ID(), Str: name})
	if err != nil {
		return nil, err
	}
	return s.wrapLocation(res.Location), nil
}

// LoadElementInfo restores an Element from a previously saved
// ElementInfo snapshot (testable property S7's element-shaped twin),
// returning a handle to the resulting Element.
func (s *Session) LoadElementInfo(ctx context.Context, info wire.ElementInfo) (*ERef, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	res, err := s.call(ctx, wire.OpLoadElementInfo, wire.Args{JSON: raw})
	if err != nil {
		return nil, err
	}
	return s.wrapElement(res.Element), nil
}

// GetActionsLen reports how many actions are currently registered.
func (s *Session) GetActionsLen(ctx context.Context) (uint64, error) {
	res, err := s.call(ctx, wire.OpGetActionsLen, wire.Args{})
	return res.U64, err
}

// GetActions lists registered actions in [start, end).
func (s *Session) GetActions(ctx context.Context, start, end uint64) ([]wire.ActionEntry, error) {
	res, err := s.call(ctx, wire.OpGetActions, wire.Args{Range: [2]uint64{start, end}})
	return res.Actions, err
}

// RunAction invokes the named action owned by m with the given
// argument payload.
func (s *Session) RunAction(ctx context.Context, m *MRef, name string, args json.RawMessage) error {
	_, err := s.call(ctx, wire.OpRunAction, wire.Args{Module: m.ID(), Str: name, JSON: args})
	return err
}

// RegisterAction always fails: an action callback is an in-process
// closure and has no wire representation (spec.md §4.3/§7).
func (s *Session) RegisterAction(ctx context.Context, name string, m *MRef, callback func(json.RawMessage)) error {
	return wire.ErrCustom("RegisterAction: action callback cannot cross the wire")
}

// RemoveAction always fails for the same reason as RegisterAction:
// there is no wire opcode, since the registration it would undo never
// existed on the daemon side either.
func (s *Session) RemoveAction(ctx context.Context, name string) error {
	return wire.ErrCustom("RemoveAction: action callback cannot cross the wire")
}
