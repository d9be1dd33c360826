package wire

import "encoding/json"

// EventKind enumerates the SessionEvent wire variants relevant to this
// layer (C3 fan-out, C5 handle-registry bookkeeping). Additional kinds
// (module settings changed, arbitrary notify payloads) are carried
// through EventNotify and are opaque to C5 — they are surfaced to
// the application's own subscribe mechanism, out of this spec's scope.
type EventKind byte

const (
	EventLocationCreated EventKind = iota
	EventLocationDestroyed
	EventLocationIDChanged
	EventElementCreated
	EventElementDestroyed
	EventElementIDChanged
	EventModuleCreated
	EventModuleDestroyed
	EventElementProgress
	EventElementStatusChanged
	EventNotify
)

// SessionEvent is a server-initiated broadcast (request_id == 0).
type SessionEvent struct {
	Kind EventKind

	Location    LocationID
	OldLocation LocationID
	Element     ElementID
	OldElement  ElementID
	Module      ModuleID

	Progress float32
	Status   uint64

	// NotifyTarget/NotifyPayload carry EventNotify's opaque,
	// application-defined payload; C5 ignores these and forwards them
	// untouched.
	NotifyTarget  ID128
	NotifyPayload json.RawMessage
}

func (e SessionEvent) encode(w *Writer) {
	w.u8(byte(e.Kind))
	switch e.Kind {
	case EventLocationCreated, EventLocationDestroyed:
		e.Location.encode(w)
	case EventLocationIDChanged:
		e.OldLocation.encode(w)
		e.Location.encode(w)
	case EventElementCreated, EventElementDestroyed:
		e.Element.encode(w)
	case EventElementIDChanged:
		e.OldElement.encode(w)
		e.Element.encode(w)
	case EventModuleCreated, EventModuleDestroyed:
		e.Module.encode(w)
	case EventElementProgress:
		e.Element.encode(w)
		w.f32(e.Progress)
	case EventElementStatusChanged:
		e.Element.encode(w)
		w.u64(e.Status)
	case EventNotify:
		e.NotifyTarget.encode(w)
		w.bytesField(e.NotifyPayload)
	}
}

func decodeSessionEvent(r *Reader) (SessionEvent, error) {
	kindByte, err := r.u8()
	if err != nil {
		return SessionEvent{}, err
	}
	kind := EventKind(kindByte)
	e := SessionEvent{Kind: kind}
	switch kind {
	case EventLocationCreated, EventLocationDestroyed:
		e.Location, err = decodeLocationID(r)
	case EventLocationIDChanged:
		if e.OldLocation, err = decodeLocationID(r); err != nil {
			break
		}
		e.Location, err = decodeLocationID(r)
	case EventElementCreated, EventElementDestroyed:
		e.Element, err = decodeElementID(r)
	case EventElementIDChanged:
		if e.OldElement, err = decodeElementID(r); err != nil {
			break
		}
		e.Element, err = decodeElementID(r)
	case EventModuleCreated, EventModuleDestroyed:
		e.Module, err = decodeID128(r)
	case EventElementProgress:
		if e.Element, err = decodeElementID(r); err != nil {
			break
		}
		e.Progress, err = r.f32()
	case EventElementStatusChanged:
		if e.Element, err = decodeElementID(r); err != nil {
			break
		}
		e.Status, err = r.u64()
	case EventNotify:
		if e.NotifyTarget, err = decodeID128(r); err != nil {
			break
		}
		e.NotifyPayload, err = r.bytesField()
	default:
		return SessionEvent{}, ErrMalformed
	}
	if err != nil {
		return SessionEvent{}, err
	}
	return e, nil
}
