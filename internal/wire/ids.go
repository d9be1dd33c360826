// Package wire implements the MuzzMan daemon packet codec (C1): a
// self-describing, length-prefixed binary encoding for the closed set
// of request, response and event records that cross the daemon/client
// boundary.
package wire

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ID128 is a 128-bit unsigned identifier used both for request ids
// (client-chosen, 0 reserved for events) and module UIDs.
type ID128 struct {
	Hi uint64
	Lo uint64
}

// ZeroID is the reserved request id used for server-initiated events.
var ZeroID = ID128{}

// IsZero reports whether id is the reserved event id.
func (id ID128) IsZero() bool { return id.Hi == 0 && id.Lo == 0 }

// String renders the id as a hex pair, e.g. "1-a3f1".
func (id ID128) String() string {
	return fmt.Sprintf("%x-%x", id.Hi, id.Lo)
}

func (id ID128) encode(w *Writer) {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], id.Lo)
	binary.LittleEndian.PutUint64(b[8:16], id.Hi)
	w.raw(b[:])
}

func decodeID128(r *Reader) (ID128, error) {
	b, err := r.rawN(16)
	if err != nil {
		return ID128{}, err
	}
	return ID128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// ModuleID is the stable 128-bit identifier of a loaded Module.
type ModuleID = ID128

// LocationID is a hierarchical path of unsigned indices into the
// Location tree. The default Location of backend.Memory is the path [0].
type LocationID struct {
	Path []uint64
}

// String renders the path as dot-separated indices, e.g. "0.2.1".
func (l LocationID) String() string {
	parts := make([]string, len(l.Path))
	for i, p := range l.Path {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two LocationIDs name the same path.
func (l LocationID) Equal(o LocationID) bool {
	if len(l.Path) != len(o.Path) {
		return false
	}
	for i := range l.Path {
		if l.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

func (l LocationID) encode(w *Writer) {
	w.u64(uint64(len(l.Path)))
	for _, p := range l.Path {
		w.u64(p)
	}
}

func decodeLocationID(r *Reader) (LocationID, error) {
	n, err := r.u64()
	if err != nil {
		return LocationID{}, err
	}
	if n > maxVecLen {
		return LocationID{}, ErrMalformed
	}
	path := make([]uint64, n)
	for i := range path {
		v, err := r.u64()
		if err != nil {
			return LocationID{}, err
		}
		path[i] = v
	}
	return LocationID{Path: path}, nil
}

// ElementID identifies a unit of work within a Location.
type ElementID struct {
	Location LocationID
	Index    uint64
}

// String renders the element id as "<location>/<index>".
func (e ElementID) String() string {
	return fmt.Sprintf("%s/%d", e.Location.String(), e.Index)
}

// Equal reports whether two ElementIDs name the same element.
func (e ElementID) Equal(o ElementID) bool {
	return e.Location.Equal(o.Location) && e.Index == o.Index
}

func (e ElementID) encode(w *Writer) {
	e.Location.encode(w)
	w.u64(e.Index)
}

func decodeElementID(r *Reader) (ElementID, error) {
	loc, err := decodeLocationID(r)
	if err != nil {
		return ElementID{}, err
	}
	idx, err := r.u64()
	if err != nil {
		return ElementID{}, err
	}
	return ElementID{Location: loc, Index: idx}, nil
}
