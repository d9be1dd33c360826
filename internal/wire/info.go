package wire

import "encoding/json"

// LocationInfo is the round-trippable snapshot of a Location used by
// LocationGetInfo / LoadLocationInfo (testable property S7).
type LocationInfo struct {
	ID         LocationID      `json:"id"`
	Name       string          `json:"name"`
	Desc       string          `json:"desc"`
	Path       string          `json:"path"`
	ShouldSave bool            `json:"should_save"`
	Module     *ModuleID       `json:"module,omitempty"`
	Settings   json.RawMessage `json:"settings,omitempty"`
	Elements   []ElementID     `json:"elements,omitempty"`
	Locations  []LocationID    `json:"locations,omitempty"`
}

// ElementInfo is the round-trippable snapshot of an Element used by
// ElementGetInfo / LoadElementInfo.
type ElementInfo struct {
	ID         ElementID       `json:"id"`
	Name       string          `json:"name"`
	Desc       string          `json:"desc"`
	Meta       string          `json:"meta"`
	URL        string          `json:"url,omitempty"`
	Module     *ModuleID       `json:"module,omitempty"`
	Status     uint64          `json:"status"`
	Statuses   []string        `json:"statuses,omitempty"`
	Progress   float32         `json:"progress"`
	ShouldSave bool            `json:"should_save"`
	Enabled    bool            `json:"enabled"`
	ModuleData json.RawMessage `json:"module_data,omitempty"`
	ElementData json.RawMessage `json:"element_data,omitempty"`
}

// ActionEntry describes one registered action as returned by GetActions.
type ActionEntry struct {
	Name   string          `json:"name"`
	Module ModuleID        `json:"module"`
	Args   json.RawMessage `json:"args,omitempty"`
}

func writeJSON(w *Writer, v any) error {
	if v == nil {
		w.bytesField(nil)
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.bytesField(b)
	return nil
}

func readJSON[T any](r *Reader) (T, error) {
	var zero T
	b, err := r.bytesField()
	if err != nil {
		return zero, err
	}
	if len(b) == 0 {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, ErrMalformed
	}
	return out, nil
}

func (info LocationInfo) encode(w *Writer) error { return writeJSON(w, info) }

func decodeLocationInfo(r *Reader) (LocationInfo, error) { return readJSON[LocationInfo](r) }

func (info ElementInfo) encode(w *Writer) error { return writeJSON(w, info) }

func decodeElementInfo(r *Reader) (ElementInfo, error) { return readJSON[ElementInfo](r) }

// ReadElementInfoJSON unmarshals the raw JSON blob carried by a
// LoadElementInfo request's Args.JSON field.
func ReadElementInfoJSON(raw json.RawMessage) (ElementInfo, error) {
	var info ElementInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return ElementInfo{}, ErrMalformed
	}
	return info, nil
}

// ReadLocationInfoJSON unmarshals the raw JSON blob carried by a
// LoadLocationInfo request's Args.JSON field.
func ReadLocationInfoJSON(raw json.RawMessage) (LocationInfo, error) {
	var info LocationInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return LocationInfo{}, ErrMalformed
	}
	return info, nil
}

// MarshalUint64s encodes a slice of versions as a JSON array, used for
// results (such as ModuleGetSupportedVersions) that ride in Result.JSON.
func MarshalUint64s(vs []uint64) (json.RawMessage, error) {
	return json.Marshal(vs)
}
