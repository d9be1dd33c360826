package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/muzzman/daemon/internal/wire"
)

const (
	// daemonVersion is this implementation's own wire version, distinct
	// from the backing Session's Version() (spec.md §6).
	daemonVersion = 1
	sessionVersion = 1
)

type locationRecord struct {
	id         wire.LocationID
	name, desc string
	shouldSave bool
	module     *wire.ModuleID
	settings   json.RawMessage
	modSettings json.RawMessage
	statuses   []string
	status     uint64
	progress   float32
	enabled    bool

	parent   wire.LocationID
	hasParent bool
	children map[uint64]wire.LocationID
	nextChild uint64
	elements map[uint64]wire.ElementID
	nextElem uint64
	subscribers []wire.ID128
}

type elementRecord struct {
	id         wire.ElementID
	name, desc string
	meta, url  string
	elementData, moduleData, data json.RawMessage
	module     *wire.ModuleID
	status     uint64
	statuses   []string
	progress   float32
	shouldSave bool
	enabled    bool
	errored    bool
	waiters    []chan struct{}
	subscribers []wire.ID128
}

type moduleRecord struct {
	id                  wire.ModuleID
	name, desc          string
	defaultName, defaultDesc string
	proxy               uint64
	settings, elementSettings, locationSettings json.RawMessage
	uid                 wire.ModuleID
	version             uint64
	supportedVersions   []uint64
	protocols, extensions []string
}

// Memory is an in-memory reference Session, adequate for exercising
// and testing the dispatcher without a real module-loading engine.
type Memory struct {
	mu sync.Mutex

	locations map[string]*locationRecord // keyed by LocationID.String()
	default_  wire.LocationID

	elements map[string]*elementRecord // keyed by ElementID.String()
	modules  map[wire.ModuleID]*moduleRecord

	subscribers []func(wire.SessionEvent)
}

// NewMemory constructs a Memory backend with a single seeded default
// Location at path [0] (spec.md §6 "daemon chooses a default download
// path ... and seeds a default Location with it").
func NewMemory() *Memory {
	m := &Memory{
		locations: make(map[string]*locationRecord),
		elements:  make(map[string]*elementRecord),
		modules:   make(map[wire.ModuleID]*moduleRecord),
	}
	root := wire.LocationID{Path: []uint64{0}}
	m.locations[root.String()] = &locationRecord{
		id:       root,
		name:     "Downloads",
		children: make(map[uint64]wire.LocationID),
		elements: make(map[uint64]wire.ElementID),
		enabled:  true,
	}
	m.default_ = root
	return m
}

func (m *Memory) emit(ev wire.SessionEvent) {
	for _, fn := range m.subscribers {
		if fn != nil {
			fn(ev)
		}
	}
}

func (m *Memory) Subscribe(fn func(wire.SessionEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.subscribers)
	m.subscribers = append(m.subscribers, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.subscribers) {
			m.subscribers[idx] = nil
		}
	}
}

func (m *Memory) Version() uint64     { return sessionVersion }
func (m *Memory) VersionText() string { return fmt.Sprintf("%d, Daemon: %d", sessionVersion, daemonVersion) }

// --- Modules ---

func (m *Memory) LoadModule(path string) (wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := newModuleID(path)
	m.modules[id] = &moduleRecord{id: id, uid: id, name: path, version: 1, supportedVersions: []uint64{1}}
	return id, nil
}

func (m *Memory) LoadModuleInfo(path string) (wire.ModuleID, error) {
	return m.LoadModule(path)
}

func (m *Memory) FindModule(uid wire.ModuleID) (wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[uid]; !ok {
		return wire.ModuleID{}, wire.ErrNotFound()
	}
	return uid, nil
}

func (m *Memory) RemoveModule(id wire.ModuleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[id]; !ok {
		return wire.ErrNotFound()
	}
	delete(m.modules, id)
	return nil
}

func (m *Memory) ModulesLen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.modules))
}

func (m *Memory) ModulesRange(start, count uint64) ([]wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []wire.ModuleID
	for id := range m.modules {
		all = append(all, id)
	}
	return sliceRange(all, start, count), nil
}

func (m *Memory) module(id wire.ModuleID) (*moduleRecord, error) {
	rec, ok := m.modules[id]
	if !ok {
		return nil, wire.ErrNotFound()
	}
	return rec, nil
}

func (m *Memory) ModuleProperty(id wire.ModuleID, p Prop) (PropValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return PropValue{}, err
	}
	switch p {
	case PropName:
		return PropValue{Str: rec.name}, nil
	case PropDesc:
		return PropValue{Str: rec.desc}, nil
	case PropDefaultName:
		return PropValue{Str: rec.defaultName}, nil
	case PropDefaultDesc:
		return PropValue{Str: rec.defaultDesc}, nil
	case PropProxy:
		return PropValue{U64: rec.proxy}, nil
	case PropSettings:
		return PropValue{JSON: rec.settings}, nil
	case PropElementSettings:
		return PropValue{JSON: rec.elementSettings}, nil
	case PropLocationSettings:
		return PropValue{JSON: rec.locationSettings}, nil
	default:
		return PropValue{}, wire.ErrDomain("unsupported module property")
	}
}

func (m *Memory) SetModuleProperty(id wire.ModuleID, p Prop, v PropValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return err
	}
	switch p {
	case PropName:
		rec.name = v.Str
	case PropDesc:
		rec.desc = v.Str
	case PropProxy:
		rec.proxy = v.U64
	case PropSettings:
		rec.settings = v.JSON
	case PropElementSettings:
		rec.elementSettings = v.JSON
	case PropLocationSettings:
		rec.locationSettings = v.JSON
	default:
		return wire.ErrDomain("unsupported module property")
	}
	return nil
}

func (m *Memory) ModuleUID(id wire.ModuleID) (wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return wire.ModuleID{}, err
	}
	return rec.uid, nil
}

func (m *Memory) ModuleVersion(id wire.ModuleID) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return 0, err
	}
	return rec.version, nil
}

func (m *Memory) ModuleSupportedVersions(id wire.ModuleID) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return nil, err
	}
	return rec.supportedVersions, nil
}

func (m *Memory) ModuleAcceptUrl(id wire.ModuleID, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.module(id); err != nil {
		return false, err
	}
	return false, nil
}

func (m *Memory) ModuleAcceptExtension(id wire.ModuleID, ext string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.module(id); err != nil {
		return false, err
	}
	return false, nil
}

func (m *Memory) ModuleAcceptedProtocols(id wire.ModuleID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return nil, err
	}
	return rec.protocols, nil
}

func (m *Memory) ModuleAcceptedExtensions(id wire.ModuleID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.module(id)
	if err != nil {
		return nil, err
	}
	return rec.extensions, nil
}

func (m *Memory) ModuleInitLocation(id wire.ModuleID, loc wire.LocationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.module(id); err != nil {
		return err
	}
	if _, err := m.location(loc); err != nil {
		return err
	}
	return nil
}

func (m *Memory) ModuleInitElement(id wire.ModuleID, el wire.ElementID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.module(id); err != nil {
		return err
	}
	if _, err := m.element(el); err != nil {
		return err
	}
	return nil
}

// --- Locations ---

func (m *Memory) DefaultLocation() wire.LocationID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.default_
}

func (m *Memory) location(id wire.LocationID) (*locationRecord, error) {
	rec, ok := m.locations[id.String()]
	if !ok {
		return nil, wire.ErrNotFound()
	}
	return rec, nil
}

func (m *Memory) CreateLocation(parent wire.LocationID, name string) (wire.LocationID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prec, err := m.location(parent)
	if err != nil {
		return wire.LocationID{}, err
	}
	idx := prec.nextChild
	prec.nextChild++
	path := append(append([]uint64{}, parent.Path...), idx)
	child := wire.LocationID{Path: path}
	prec.children[idx] = child
	m.locations[child.String()] = &locationRecord{
		id:        child,
		name:      name,
		parent:    parent,
		hasParent: true,
		children:  make(map[uint64]wire.LocationID),
		elements:  make(map[uint64]wire.ElementID),
		enabled:   true,
	}
	m.emit(wire.SessionEvent{Kind: wire.EventLocationCreated, Location: child})
	return child, nil
}

func (m *Memory) DestroyLocation(id wire.LocationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	if rec.hasParent {
		if prec, ok := m.locations[rec.parent.String()]; ok {
			for idx, c := range prec.children {
				if c.Equal(id) {
					delete(prec.children, idx)
					break
				}
			}
		}
	}
	delete(m.locations, id.String())
	m.emit(wire.SessionEvent{Kind: wire.EventLocationDestroyed, Location: id})
	return nil
}

func (m *Memory) MoveLocation(id, newParent wire.LocationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	prec, err := m.location(newParent)
	if err != nil {
		return err
	}
	old := rec.id
	if rec.hasParent {
		if oldParent, ok := m.locations[rec.parent.String()]; ok {
			for idx, c := range oldParent.children {
				if c.Equal(id) {
					delete(oldParent.children, idx)
					break
				}
			}
		}
	}
	idx := prec.nextChild
	prec.nextChild++
	path := append(append([]uint64{}, newParent.Path...), idx)
	newID := wire.LocationID{Path: path}
	prec.children[idx] = newID

	delete(m.locations, old.String())
	rec.id = newID
	rec.parent = newParent
	rec.hasParent = true
	m.locations[newID.String()] = rec

	m.emit(wire.SessionEvent{Kind: wire.EventLocationIDChanged, OldLocation: old, Location: newID})
	return nil
}

func (m *Memory) LocationsLen(parent wire.LocationID) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(parent)
	if err != nil {
		return 0, err
	}
	return uint64(len(rec.children)), nil
}

func (m *Memory) LocationsRange(parent wire.LocationID, start, count uint64) ([]wire.LocationID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(parent)
	if err != nil {
		return nil, err
	}
	var all []wire.LocationID
	for _, c := range rec.children {
		all = append(all, c)
	}
	return sliceRange(all, start, count), nil
}

func (m *Memory) LocationProperty(id wire.LocationID, p Prop) (PropValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return PropValue{}, err
	}
	switch p {
	case PropName:
		return PropValue{Str: rec.name}, nil
	case PropDesc:
		return PropValue{Str: rec.desc}, nil
	case PropPath:
		return PropValue{Str: rec.id.String()}, nil
	case PropShouldSave:
		return PropValue{Bool: rec.shouldSave}, nil
	case PropSettings:
		return PropValue{JSON: rec.settings}, nil
	case PropModuleSettings:
		return PropValue{JSON: rec.modSettings}, nil
	case PropStatuses:
		return PropValue{Strs: rec.statuses}, nil
	case PropStatus:
		return PropValue{U64: rec.status}, nil
	case PropProgress:
		return PropValue{F32: rec.progress}, nil
	case PropEnabled:
		return PropValue{Bool: rec.enabled}, nil
	default:
		return PropValue{}, wire.ErrDomain("unsupported location property")
	}
}

func (m *Memory) SetLocationProperty(id wire.LocationID, p Prop, v PropValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	switch p {
	case PropName:
		rec.name = v.Str
	case PropDesc:
		rec.desc = v.Str
	case PropShouldSave:
		rec.shouldSave = v.Bool
	case PropSettings:
		rec.settings = v.JSON
	case PropModuleSettings:
		rec.modSettings = v.JSON
	case PropStatuses:
		rec.statuses = v.Strs
	case PropStatus:
		rec.status = v.U64
	case PropProgress:
		rec.progress = v.F32
	case PropEnabled:
		rec.enabled = v.Bool
	default:
		return wire.ErrDomain("unsupported location property")
	}
	return nil
}

func (m *Memory) LocationInfo(id wire.LocationID) (wire.LocationInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return wire.LocationInfo{}, err
	}
	var elems []wire.ElementID
	for _, e := range rec.elements {
		elems = append(elems, e)
	}
	var locs []wire.LocationID
	for _, c := range rec.children {
		locs = append(locs, c)
	}
	return wire.LocationInfo{
		ID:         rec.id,
		Name:       rec.name,
		Desc:       rec.desc,
		Path:       rec.id.String(),
		ShouldSave: rec.shouldSave,
		Module:     rec.module,
		Settings:   rec.settings,
		Elements:   elems,
		Locations:  locs,
	}, nil
}

func (m *Memory) LoadLocationInfo(info wire.LocationInfo) (wire.LocationID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent := m.default_
	var prec *locationRecord
	if info.ID.Path != nil && len(info.ID.Path) > 1 {
		parentPath := wire.LocationID{Path: info.ID.Path[:len(info.ID.Path)-1]}
		if r, ok := m.locations[parentPath.String()]; ok {
			prec = r
			parent = parentPath
		}
	}
	if prec == nil {
		prec = m.locations[parent.String()]
	}
	idx := prec.nextChild
	prec.nextChild++
	path := append(append([]uint64{}, parent.Path...), idx)
	newID := wire.LocationID{Path: path}
	prec.children[idx] = newID
	m.locations[newID.String()] = &locationRecord{
		id:         newID,
		name:       info.Name,
		desc:       info.Desc,
		shouldSave: info.ShouldSave,
		module:     info.Module,
		settings:   info.Settings,
		parent:     parent,
		hasParent:  true,
		children:   make(map[uint64]wire.LocationID),
		elements:   make(map[uint64]wire.ElementID),
		enabled:    true,
	}
	m.emit(wire.SessionEvent{Kind: wire.EventLocationCreated, Location: newID})
	return newID, nil
}

func (m *Memory) LocationElementsLen(id wire.LocationID) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return 0, err
	}
	return uint64(len(rec.elements)), nil
}

func (m *Memory) LocationElements(id wire.LocationID) ([]wire.ElementID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return nil, err
	}
	var out []wire.ElementID
	for _, e := range rec.elements {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) LocationModule(id wire.LocationID) (*wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return nil, err
	}
	return rec.module, nil
}

func (m *Memory) SetLocationModule(id wire.LocationID, mod *wire.ModuleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	rec.module = mod
	return nil
}

func (m *Memory) LocationIsError(id wire.LocationID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return false, err
	}
	return rec.status != 0 && len(rec.statuses) > 0 && rec.statuses[len(rec.statuses)-1] == "error", nil
}

func (m *Memory) LocationNotify(id wire.LocationID, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	for _, sub := range rec.subscribers {
		m.emit(wire.SessionEvent{Kind: wire.EventNotify, NotifyTarget: sub, NotifyPayload: payload})
	}
	return nil
}

func (m *Memory) LocationEmit(id wire.LocationID, payload json.RawMessage) error {
	return m.LocationNotify(id, payload)
}

func (m *Memory) LocationSubscribe(id wire.LocationID, subscriber wire.ID128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	rec.subscribers = append(rec.subscribers, subscriber)
	return nil
}

func (m *Memory) LocationUnSubscribe(id wire.LocationID, subscriber wire.ID128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.location(id)
	if err != nil {
		return err
	}
	for i, s := range rec.subscribers {
		if s == subscriber {
			rec.subscribers = append(rec.subscribers[:i], rec.subscribers[i+1:]...)
			break
		}
	}
	return nil
}

// --- Elements ---

func (m *Memory) element(id wire.ElementID) (*elementRecord, error) {
	rec, ok := m.elements[id.String()]
	if !ok {
		return nil, wire.ErrNotFound()
	}
	return rec, nil
}

func (m *Memory) CreateElement(loc wire.LocationID, name string) (wire.ElementID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lrec, err := m.location(loc)
	if err != nil {
		return wire.ElementID{}, err
	}
	idx := lrec.nextElem
	lrec.nextElem++
	id := wire.ElementID{Location: loc, Index: idx}
	lrec.elements[idx] = id
	m.elements[id.String()] = &elementRecord{id: id, name: name, enabled: true}
	m.emit(wire.SessionEvent{Kind: wire.EventElementCreated, Element: id})
	return id, nil
}

func (m *Memory) MoveElement(id wire.ElementID, newLoc wire.LocationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	newLrec, err := m.location(newLoc)
	if err != nil {
		return err
	}
	if oldLrec, ok := m.locations[id.Location.String()]; ok {
		delete(oldLrec.elements, id.Index)
	}
	old := id
	idx := newLrec.nextElem
	newLrec.nextElem++
	newID := wire.ElementID{Location: newLoc, Index: idx}
	newLrec.elements[idx] = newID

	delete(m.elements, old.String())
	rec.id = newID
	m.elements[newID.String()] = rec

	m.emit(wire.SessionEvent{Kind: wire.EventElementIDChanged, OldElement: old, Element: newID})
	return nil
}

func (m *Memory) DestroyElement(id wire.ElementID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	if lrec, ok := m.locations[id.Location.String()]; ok {
		delete(lrec.elements, id.Index)
	}
	delete(m.elements, id.String())
	for _, w := range rec.waiters {
		close(w)
	}
	m.emit(wire.SessionEvent{Kind: wire.EventElementDestroyed, Element: id})
	return nil
}

func (m *Memory) ElementProperty(id wire.ElementID, p Prop) (PropValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return PropValue{}, err
	}
	switch p {
	case PropName:
		return PropValue{Str: rec.name}, nil
	case PropDesc:
		return PropValue{Str: rec.desc}, nil
	case PropMeta:
		return PropValue{Str: rec.meta}, nil
	case PropUrl:
		return PropValue{Str: rec.url}, nil
	case PropElementData:
		return PropValue{JSON: rec.elementData}, nil
	case PropModuleData:
		return PropValue{JSON: rec.moduleData}, nil
	case PropData:
		return PropValue{JSON: rec.data}, nil
	case PropStatus:
		return PropValue{U64: rec.status}, nil
	case PropStatuses:
		return PropValue{Strs: rec.statuses}, nil
	case PropProgress:
		return PropValue{F32: rec.progress}, nil
	case PropShouldSave:
		return PropValue{Bool: rec.shouldSave}, nil
	case PropEnabled:
		return PropValue{Bool: rec.enabled}, nil
	default:
		return PropValue{}, wire.ErrDomain("unsupported element property")
	}
}

func (m *Memory) SetElementProperty(id wire.ElementID, p Prop, v PropValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	switch p {
	case PropName:
		rec.name = v.Str
	case PropDesc:
		rec.desc = v.Str
	case PropMeta:
		rec.meta = v.Str
	case PropUrl:
		rec.url = v.Str
	case PropElementData:
		rec.elementData = v.JSON
	case PropModuleData:
		rec.moduleData = v.JSON
	case PropData:
		rec.data = v.JSON
	case PropStatus:
		rec.status = v.U64
		if len(rec.statuses) > 0 && rec.statuses[len(rec.statuses)-1] == "done" {
			m.notifyWaiters(rec)
		}
	case PropStatuses:
		rec.statuses = v.Strs
		if len(v.Strs) > 0 {
			last := v.Strs[len(v.Strs)-1]
			if last == "done" || last == "error" {
				if last == "error" {
					rec.errored = true
				}
				m.notifyWaiters(rec)
			}
		}
	case PropProgress:
		rec.progress = v.F32
		m.emit(wire.SessionEvent{Kind: wire.EventElementProgress, Element: id, Progress: v.F32})
	case PropShouldSave:
		rec.shouldSave = v.Bool
	case PropEnabled:
		rec.enabled = v.Bool
	default:
		return wire.ErrDomain("unsupported element property")
	}
	return nil
}

func (m *Memory) notifyWaiters(rec *elementRecord) {
	for _, w := range rec.waiters {
		close(w)
	}
	rec.waiters = nil
}

func (m *Memory) ElementInfo(id wire.ElementID) (wire.ElementInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return wire.ElementInfo{}, err
	}
	return wire.ElementInfo{
		ID:          rec.id,
		Name:        rec.name,
		Desc:        rec.desc,
		Meta:        rec.meta,
		URL:         rec.url,
		Module:      rec.module,
		Status:      rec.status,
		Statuses:    rec.statuses,
		Progress:    rec.progress,
		ShouldSave:  rec.shouldSave,
		Enabled:     rec.enabled,
		ModuleData:  rec.moduleData,
		ElementData: rec.elementData,
	}, nil
}

func (m *Memory) LoadElementInfo(info wire.ElementInfo) (wire.ElementID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lrec, ok := m.locations[info.ID.Location.String()]
	if !ok {
		lrec = m.locations[m.default_.String()]
	}
	idx := lrec.nextElem
	lrec.nextElem++
	newID := wire.ElementID{Location: lrec.id, Index: idx}
	lrec.elements[idx] = newID
	m.elements[newID.String()] = &elementRecord{
		id:          newID,
		name:        info.Name,
		desc:        info.Desc,
		meta:        info.Meta,
		url:         info.URL,
		module:      info.Module,
		status:      info.Status,
		statuses:    info.Statuses,
		progress:    info.Progress,
		shouldSave:  info.ShouldSave,
		enabled:     info.Enabled,
		moduleData:  info.ModuleData,
		elementData: info.ElementData,
	}
	m.emit(wire.SessionEvent{Kind: wire.EventElementCreated, Element: newID})
	return newID, nil
}

func (m *Memory) ElementModule(id wire.ElementID) (*wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return nil, err
	}
	return rec.module, nil
}

func (m *Memory) SetElementModule(id wire.ElementID, mod *wire.ModuleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	rec.module = mod
	return nil
}

func (m *Memory) ElementResolvModule(id wire.ElementID) (wire.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return wire.ModuleID{}, err
	}
	if rec.module == nil {
		return wire.ModuleID{}, wire.ErrNotFound()
	}
	return *rec.module, nil
}

// ElementWait blocks until the element reaches a terminal state
// (status "done" or "error") or ctx is cancelled. The dispatcher (C3)
// is responsible for not calling this inline on its own goroutine
// (spec.md §4.3's ElementWait hazard); see internal/dispatcher's
// worker-pool offload.
func (m *Memory) ElementWait(ctx context.Context, id wire.ElementID) error {
	m.mu.Lock()
	rec, err := m.element(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if len(rec.statuses) > 0 {
		last := rec.statuses[len(rec.statuses)-1]
		if last == "done" || last == "error" {
			m.mu.Unlock()
			return nil
		}
	}
	ch := make(chan struct{})
	rec.waiters = append(rec.waiters, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) ElementIsError(id wire.ElementID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return false, err
	}
	return rec.errored, nil
}

func (m *Memory) ElementNotify(id wire.ElementID, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	for _, sub := range rec.subscribers {
		m.emit(wire.SessionEvent{Kind: wire.EventNotify, NotifyTarget: sub, NotifyPayload: payload})
	}
	return nil
}

func (m *Memory) ElementEmit(id wire.ElementID, payload json.RawMessage) error {
	return m.ElementNotify(id, payload)
}

func (m *Memory) ElementSubscribe(id wire.ElementID, subscriber wire.ID128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	rec.subscribers = append(rec.subscribers, subscriber)
	return nil
}

func (m *Memory) ElementUnSubscribe(id wire.ElementID, subscriber wire.ID128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.element(id)
	if err != nil {
		return err
	}
	for i, s := range rec.subscribers {
		if s == subscriber {
			rec.subscribers = append(rec.subscribers[:i], rec.subscribers[i+1:]...)
			break
		}
	}
	return nil
}

// --- Actions ---
// The reference backend carries no loaded modules with real actions;
// the action table always reports empty and RunAction reports NotFound.
// A real backing Session wires this to its module registry.

func (m *Memory) ActionsLen() uint64 { return 0 }

func (m *Memory) ActionsRange(start, count uint64) ([]wire.ActionEntry, error) {
	return nil, nil
}

func (m *Memory) RunAction(name string, module wire.ModuleID, args json.RawMessage) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.module(module); err != nil {
		return nil, err
	}
	return nil, wire.ErrNotFound()
}

// --- helpers ---

func sliceRange[T any](all []T, start, count uint64) []T {
	if start >= uint64(len(all)) {
		return nil
	}
	end := start + count
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[start:end]
}

// newModuleID derives a stable 128-bit id from a module path so
// repeated LoadModule calls for the same path are idempotent-looking
// in tests; a real backend would read the UID from the module binary.
func newModuleID(path string) wire.ModuleID {
	var hi, lo uint64
	for i, c := range []byte(path) {
		if i%2 == 0 {
			hi = hi*131 + uint64(c)
		} else {
			lo = lo*131 + uint64(c)
		}
	}
	if hi == 0 && lo == 0 {
		hi = uint64(time.Now().UnixNano())
	}
	return wire.ModuleID{Hi: hi, Lo: lo}
}
