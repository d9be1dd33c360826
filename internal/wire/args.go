package wire

import "encoding/json"

// Args is the decoded argument payload of a Request. Which of its
// fields are meaningful for a given Op is determined by
// argsShapeFor(op).
type Args struct {
	Location   LocationID
	Location2  LocationID // "to" location of MoveLocation
	Element    ElementID
	Module     ModuleID
	ModuleOpt  *ModuleID
	Str        string
	Str2       string
	Bool       bool
	U64        uint64
	F32        float32
	Subscriber ID128
	JSON       json.RawMessage
	Strs       []string
	Range      [2]uint64
}

type argsShape byte

const (
	shapeNone argsShape = iota
	shapeRange
	shapeLocation
	shapeLocationRange
	shapeLocationStr
	shapeLocationBool
	shapeLocationF32
	shapeLocationU64
	shapeLocationJSON
	shapeLocationStrs
	shapeLocationSubscriber
	shapeLocationEvent
	shapeLocationModuleOpt
	shapeLocationToLocation // move
	shapeCreateLocation     // name + parent location
	shapeElement
	shapeElementStr
	shapeElementBool
	shapeElementF32
	shapeElementU64
	shapeElementJSON
	shapeElementStrs
	shapeElementSubscriber
	shapeElementEvent
	shapeElementModuleOpt
	shapeElementToLocation // move
	shapeCreateElement     // name + location
	shapeModule
	shapeModuleStr
	shapeModuleU64
	shapeModuleJSON
	shapeModuleURL
	shapeModuleFilename
	shapeModuleInitLocation
	shapeModuleInitElement
	shapeLoadModule
	shapeRunAction
	shapeJSON // LoadElementInfo
)

func argsShapeFor(op Op) argsShape {
	switch op {
	case OpTick, OpGetVersion, OpGetVersionText, OpGetDefaultLocation, OpGetModulesLen, OpGetActionsLen:
		return shapeNone
	case OpGetModulesRange, OpGetActions:
		return shapeRange
	case OpGetLocationsRange:
		return shapeLocationRange
	case OpLocationGetElements:
		return shapeLocationRange

	case OpDestroyLocation, OpLocationGetName, OpLocationGetDesc, OpLocationGetPath,
		OpLocationGetShouldSave, OpLocationGetElementsLen, OpLocationGetInfo,
		OpLocationGetModule, OpLocationGetSettings, OpLocationGetModuleSettings,
		OpLocationGetStatuses, OpLocationGetStatus, OpLocationGetProgress,
		OpLocationGetIsEnabled, OpLocationIsError, OpGetLocationsLen:
		return shapeLocation
	case OpLocationSetName, OpLocationSetDesc, OpLocationSetPath:
		return shapeLocationStr
	case OpLocationSetShouldSave, OpLocationSetIsEnabled:
		return shapeLocationBool
	case OpLocationSetProgress:
		return shapeLocationF32
	case OpLocationSetStatus:
		return shapeLocationU64
	case OpLocationSetSettings, OpLocationSetModuleSettings, OpLoadLocationInfo:
		return shapeLocationJSON
	case OpLocationSetStatuses:
		return shapeLocationStrs
	case OpLocationSubscribe, OpLocationUnSubscribe:
		return shapeLocationSubscriber
	case OpLocationNotify, OpLocationEmit:
		return shapeLocationEvent
	case OpLocationSetModule:
		return shapeLocationModuleOpt
	case OpMoveLocation:
		return shapeLocationToLocation
	case OpCreateLocation:
		return shapeCreateLocation

	case OpMoveElement:
		return shapeElementToLocation
	case OpDestroyElement, OpElementGetName, OpElementGetDesc, OpElementGetMeta,
		OpElementGetUrl, OpElementGetElementData, OpElementGetModuleData, OpElementGetModule,
		OpElementGetStatus, OpElementGetStatuses, OpElementGetData, OpElementGetProgress,
		OpElementGetShouldSave, OpElementGetEnabled, OpElementGetInfo, OpElementResolvModule,
		OpElementWait, OpElementIsError:
		return shapeElement
	case OpElementSetName, OpElementSetDesc, OpElementSetMeta, OpElementSetUrl:
		return shapeElementStr
	case OpElementSetShouldSave, OpElementSetEnabled:
		return shapeElementBool
	case OpElementSetProgress:
		return shapeElementF32
	case OpElementSetStatus:
		return shapeElementU64
	case OpElementSetElementData, OpElementSetModuleData, OpElementSetData:
		return shapeElementJSON
	case OpElementSetStatuses:
		return shapeElementStrs
	case OpElementSubscribe, OpElementUnSubscribe:
		return shapeElementSubscriber
	case OpElementNotify, OpElementEmit:
		return shapeElementEvent
	case OpElementSetModule:
		return shapeElementModuleOpt
	case OpCreateElement:
		return shapeCreateElement

	case OpRemoveModule, OpModuleGetName, OpModuleGetDesc, OpModuleGetDefaultName,
		OpModuleGetDefaultDesc, OpModuleGetProxy, OpModuleGetSettings, OpModuleGetElementSettings,
		OpModuleGetLocationSettings, OpModuleGetUid, OpModuleGetVersion,
		OpModuleGetSupportedVersions, OpModuleAcceptedProtocols, OpModuleAcceptedExtensions,
		OpFindModule:
		return shapeModule
	case OpModuleSetName, OpModuleSetDesc:
		return shapeModuleStr
	case OpModuleSetProxy:
		return shapeModuleU64
	case OpModuleSetSettings, OpModuleSetElementSettings, OpModuleSetLocationSettings:
		return shapeModuleJSON
	case OpModuleAcceptUrl:
		return shapeModuleURL
	case OpModuleAcceptExtension:
		return shapeModuleFilename
	case OpModuleInitLocation:
		return shapeModuleInitLocation
	case OpModuleInitElement:
		return shapeModuleInitElement
	case OpLoadModule, OpLoadModuleInfo:
		return shapeLoadModule
	case OpRunAction:
		return shapeRunAction
	case OpLoadElementInfo:
		return shapeJSON
	default:
		return shapeNone
	}
}

func encodeArgs(w *Writer, op Op, a Args) error {
	switch argsShapeFor(op) {
	case shapeNone:
	case shapeRange:
		w.u64(a.Range[0])
		w.u64(a.Range[1])
	case shapeLocation:
		a.Location.encode(w)
	case shapeLocationRange:
		a.Location.encode(w)
		w.u64(a.Range[0])
		w.u64(a.Range[1])
	case shapeLocationStr:
		a.Location.encode(w)
		w.str(a.Str)
	case shapeLocationBool:
		a.Location.encode(w)
		w.boolean(a.Bool)
	case shapeLocationF32:
		a.Location.encode(w)
		w.f32(a.F32)
	case shapeLocationU64:
		a.Location.encode(w)
		w.u64(a.U64)
	case shapeLocationJSON:
		a.Location.encode(w)
		w.bytesField(a.JSON)
	case shapeLocationStrs:
		a.Location.encode(w)
		w.strSlice(a.Strs)
	case shapeLocationSubscriber:
		a.Location.encode(w)
		a.Subscriber.encode(w)
	case shapeLocationEvent:
		a.Location.encode(w)
		w.bytesField(a.JSON)
	case shapeLocationModuleOpt:
		a.Location.encode(w)
		encodeModuleOpt(w, a.ModuleOpt)
	case shapeLocationToLocation:
		a.Location.encode(w)
		a.Location2.encode(w)
	case shapeCreateLocation:
		a.Location.encode(w)
		w.str(a.Str)
	case shapeElement:
		a.Element.encode(w)
	case shapeElementStr:
		a.Element.encode(w)
		w.str(a.Str)
	case shapeElementBool:
		a.Element.encode(w)
		w.boolean(a.Bool)
	case shapeElementF32:
		a.Element.encode(w)
		w.f32(a.F32)
	case shapeElementU64:
		a.Element.encode(w)
		w.u64(a.U64)
	case shapeElementJSON:
		a.Element.encode(w)
		w.bytesField(a.JSON)
	case shapeElementStrs:
		a.Element.encode(w)
		w.strSlice(a.Strs)
	case shapeElementSubscriber:
		a.Element.encode(w)
		a.Subscriber.encode(w)
	case shapeElementEvent:
		a.Element.encode(w)
		w.bytesField(a.JSON)
	case shapeElementModuleOpt:
		a.Element.encode(w)
		encodeModuleOpt(w, a.ModuleOpt)
	case shapeElementToLocation:
		a.Element.encode(w)
		a.Location.encode(w)
	case shapeCreateElement:
		a.Location.encode(w)
		w.str(a.Str)
	case shapeModule:
		a.Module.encode(w)
	case shapeModuleStr:
		a.Module.encode(w)
		w.str(a.Str)
	case shapeModuleU64:
		a.Module.encode(w)
		w.u64(a.U64)
	case shapeModuleJSON:
		a.Module.encode(w)
		w.bytesField(a.JSON)
	case shapeModuleURL:
		a.Module.encode(w)
		w.str(a.Str)
	case shapeModuleFilename:
		a.Module.encode(w)
		w.str(a.Str)
	case shapeModuleInitLocation:
		a.Module.encode(w)
		a.Location.encode(w)
		w.bytesField(a.JSON)
	case shapeModuleInitElement:
		a.Module.encode(w)
		a.Element.encode(w)
	case shapeLoadModule:
		w.str(a.Str)
	case shapeRunAction:
		a.Module.encode(w)
		w.str(a.Str)
		w.bytesField(a.JSON)
	case shapeJSON:
		w.bytesField(a.JSON)
	}
	return nil
}

func decodeArgs(r *Reader, op Op) (Args, error) {
	var a Args
	var err error
	switch argsShapeFor(op) {
	case shapeNone:
	case shapeRange:
		if a.Range[0], err = r.u64(); err != nil {
			return a, err
		}
		a.Range[1], err = r.u64()
	case shapeLocation:
		a.Location, err = decodeLocationID(r)
	case shapeLocationRange:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		if a.Range[0], err = r.u64(); err != nil {
			return a, err
		}
		a.Range[1], err = r.u64()
	case shapeLocationStr:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeLocationBool:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Bool, err = r.boolean()
	case shapeLocationF32:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.F32, err = r.f32()
	case shapeLocationU64:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.U64, err = r.u64()
	case shapeLocationJSON:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeLocationStrs:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Strs, err = r.strSlice()
	case shapeLocationSubscriber:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Subscriber, err = decodeID128(r)
	case shapeLocationEvent:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeLocationModuleOpt:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.ModuleOpt, err = decodeModuleOpt(r)
	case shapeLocationToLocation:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Location2, err = decodeLocationID(r)
	case shapeCreateLocation:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeElement:
		a.Element, err = decodeElementID(r)
	case shapeElementStr:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeElementBool:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.Bool, err = r.boolean()
	case shapeElementF32:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.F32, err = r.f32()
	case shapeElementU64:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.U64, err = r.u64()
	case shapeElementJSON:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeElementStrs:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.Strs, err = r.strSlice()
	case shapeElementSubscriber:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.Subscriber, err = decodeID128(r)
	case shapeElementEvent:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeElementModuleOpt:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.ModuleOpt, err = decodeModuleOpt(r)
	case shapeElementToLocation:
		if a.Element, err = decodeElementID(r); err != nil {
			return a, err
		}
		a.Location, err = decodeLocationID(r)
	case shapeCreateElement:
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeModule:
		a.Module, err = decodeID128(r)
	case shapeModuleStr:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeModuleU64:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		a.U64, err = r.u64()
	case shapeModuleJSON:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeModuleURL:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeModuleFilename:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		a.Str, err = r.str()
	case shapeModuleInitLocation:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		if a.Location, err = decodeLocationID(r); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeModuleInitElement:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		a.Element, err = decodeElementID(r)
	case shapeLoadModule:
		a.Str, err = r.str()
	case shapeRunAction:
		if a.Module, err = decodeID128(r); err != nil {
			return a, err
		}
		if a.Str, err = r.str(); err != nil {
			return a, err
		}
		a.JSON, err = r.bytesField()
	case shapeJSON:
		a.JSON, err = r.bytesField()
	}
	if err != nil {
		return Args{}, err
	}
	return a, nil
}

func encodeModuleOpt(w *Writer, m *ModuleID) {
	if m == nil {
		w.boolean(false)
		return
	}
	w.boolean(true)
	m.encode(w)
}

func decodeModuleOpt(r *Reader) (*ModuleID, error) {
	present, err := r.boolean()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	id, err := decodeID128(r)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
