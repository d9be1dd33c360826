package wire

import "encoding/json"

// Result is the decoded success payload of a Response. Which field is
// meaningful is determined by resultShapeFor(op); on error the
// Response carries a non-nil Err instead and Result is zero.
type Result struct {
	Str         string
	Bool        bool
	U64         uint64
	F32         float32
	Strs        []string
	Location    LocationID
	Element     ElementID
	Module      ModuleID
	ModuleOpt   *ModuleID
	Locations   []LocationID
	Elements    []ElementID
	Modules     []ModuleID
	LocationInfo LocationInfo
	ElementInfo  ElementInfo
	Actions      []ActionEntry
	JSON         json.RawMessage
}

type resultShape byte

const (
	resNone resultShape = iota
	resString
	resBool
	resU64
	resF32
	resStrs
	resLocation
	resElement
	resModule
	resModuleOpt
	resLocations
	resElements
	resModules
	resLocationInfo
	resElementInfo
	resActions
	resJSON
	resVersionText
)

func resultShapeFor(op Op) resultShape {
	switch op {
	case OpTick:
		return resNone
	case OpGetVersion:
		return resU64
	case OpGetVersionText:
		return resVersionText
	case OpLoadModule, OpLoadModuleInfo, OpFindModule:
		return resModule
	case OpRemoveModule, OpRunAction, OpModuleInitLocation, OpModuleInitElement,
		OpLocationSetName, OpLocationSetDesc, OpLocationSetPath, OpLocationSetShouldSave,
		OpLocationSetSettings, OpLocationSetModuleSettings, OpLocationSetStatuses,
		OpLocationSetStatus, OpLocationSetProgress, OpLocationSetIsEnabled,
		OpLocationSetModule, OpLocationNotify, OpLocationEmit, OpLocationSubscribe,
		OpLocationUnSubscribe, OpMoveLocation, OpDestroyLocation, OpDestroyElement,
		OpMoveElement, OpElementSetName, OpElementSetDesc, OpElementSetMeta, OpElementSetUrl,
		OpElementSetElementData, OpElementSetModuleData, OpElementSetModule, OpElementSetStatus,
		OpElementSetStatuses, OpElementSetData, OpElementSetProgress, OpElementSetShouldSave,
		OpElementSetEnabled, OpElementWait, OpElementNotify, OpElementEmit, OpElementSubscribe,
		OpElementUnSubscribe, OpModuleSetName, OpModuleSetDesc, OpModuleSetProxy,
		OpModuleSetSettings, OpModuleSetElementSettings, OpModuleSetLocationSettings:
		return resNone
	case OpGetModulesLen, OpGetLocationsLen, OpLocationGetElementsLen, OpGetActionsLen,
		OpLocationGetStatus, OpElementGetStatus, OpModuleGetProxy, OpModuleGetVersion:
		return resU64
	case OpGetModulesRange:
		return resModules
	case OpGetLocationsRange:
		return resLocations
	case OpLocationGetElements:
		return resElements
	case OpModuleGetSupportedVersions:
		return resU64s()
	case OpCreateElement:
		return resElement
	case OpCreateLocation, OpGetDefaultLocation:
		return resLocation
	case OpElementGetModule, OpLocationGetModule:
		return resModuleOpt
	case OpElementGetInfo:
		return resElementInfo
	case OpLocationGetInfo:
		return resLocationInfo
	case OpLoadElementInfo:
		return resElement
	case OpLoadLocationInfo:
		return resLocation
	case OpGetActions:
		return resActions
	case OpElementResolvModule, OpElementIsError, OpLocationIsError, OpLocationGetIsEnabled,
		OpElementGetEnabled, OpElementGetShouldSave, OpLocationGetShouldSave,
		OpModuleAcceptUrl, OpModuleAcceptExtension:
		return resBool
	case OpElementGetProgress, OpLocationGetProgress:
		return resF32
	case OpElementGetStatuses, OpLocationGetStatuses, OpModuleAcceptedProtocols, OpModuleAcceptedExtensions:
		return resStrs
	case OpElementGetName, OpElementGetDesc, OpElementGetMeta, OpElementGetUrl,
		OpLocationGetName, OpLocationGetDesc, OpLocationGetPath,
		OpModuleGetName, OpModuleGetDesc, OpModuleGetDefaultName, OpModuleGetDefaultDesc:
		return resString
	case OpElementGetElementData, OpElementGetModuleData, OpElementGetData,
		OpLocationGetSettings, OpLocationGetModuleSettings, OpModuleGetSettings,
		OpModuleGetElementSettings, OpModuleGetLocationSettings:
		return resJSON
	case OpModuleGetUid:
		return resModule
	default:
		return resNone
	}
}

// resU64s is a placeholder result shape for the rarely-used
// "supported versions" list, encoded as a JSON blob of []uint64 to
// avoid a dedicated shape for a single op.
func resU64s() resultShape { return resJSON }

func encodeResult(w *Writer, op Op, res Result) error {
	switch resultShapeFor(op) {
	case resNone:
	case resString:
		w.str(res.Str)
	case resBool:
		w.boolean(res.Bool)
	case resU64:
		w.u64(res.U64)
	case resF32:
		w.f32(res.F32)
	case resStrs:
		w.strSlice(res.Strs)
	case resLocation:
		res.Location.encode(w)
	case resElement:
		res.Element.encode(w)
	case resModule:
		res.Module.encode(w)
	case resModuleOpt:
		encodeModuleOpt(w, res.ModuleOpt)
	case resLocations:
		w.u64(uint64(len(res.Locations)))
		for _, l := range res.Locations {
			l.encode(w)
		}
	case resElements:
		w.u64(uint64(len(res.Elements)))
		for _, e := range res.Elements {
			e.encode(w)
		}
	case resModules:
		w.u64(uint64(len(res.Modules)))
		for _, m := range res.Modules {
			m.encode(w)
		}
	case resLocationInfo:
		return res.LocationInfo.encode(w)
	case resElementInfo:
		return res.ElementInfo.encode(w)
	case resActions:
		return writeJSON(w, res.Actions)
	case resJSON:
		w.bytesField(res.JSON)
	case resVersionText:
		w.str(res.Str)
	}
	return nil
}

func decodeResult(r *Reader, op Op) (Result, error) {
	var res Result
	var err error
	switch resultShapeFor(op) {
	case resNone:
	case resString:
		res.Str, err = r.str()
	case resBool:
		res.Bool, err = r.boolean()
	case resU64:
		res.U64, err = r.u64()
	case resF32:
		res.F32, err = r.f32()
	case resStrs:
		res.Strs, err = r.strSlice()
	case resLocation:
		res.Location, err = decodeLocationID(r)
	case resElement:
		res.Element, err = decodeElementID(r)
	case resModule:
		res.Module, err = decodeID128(r)
	case resModuleOpt:
		res.ModuleOpt, err = decodeModuleOpt(r)
	case resLocations:
		var n uint64
		if n, err = r.u64(); err != nil {
			break
		}
		if n > maxVecLen {
			return Result{}, ErrMalformed
		}
		res.Locations = make([]LocationID, n)
		for i := range res.Locations {
			if res.Locations[i], err = decodeLocationID(r); err != nil {
				break
			}
		}
	case resElements:
		var n uint64
		if n, err = r.u64(); err != nil {
			break
		}
		if n > maxVecLen {
			return Result{}, ErrMalformed
		}
		res.Elements = make([]ElementID, n)
		for i := range res.Elements {
			if res.Elements[i], err = decodeElementID(r); err != nil {
				break
			}
		}
	case resModules:
		var n uint64
		if n, err = r.u64(); err != nil {
			break
		}
		if n > maxVecLen {
			return Result{}, ErrMalformed
		}
		res.Modules = make([]ModuleID, n)
		for i := range res.Modules {
			if res.Modules[i], err = decodeID128(r); err != nil {
				break
			}
		}
	case resLocationInfo:
		res.LocationInfo, err = decodeLocationInfo(r)
	case resElementInfo:
		res.ElementInfo, err = decodeElementInfo(r)
	case resActions:
		res.Actions, err = readJSON[[]ActionEntry](r)
	case resJSON:
		res.JSON, err = r.bytesField()
	case resVersionText:
		res.Str, err = r.str()
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
