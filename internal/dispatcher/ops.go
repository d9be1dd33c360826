package dispatcher

import (
	"github.com/muzzman/daemon/internal/backend"
	"github.com/muzzman/daemon/internal/wire"
)

// toSessionError classifies a backend error for the wire. A
// *wire.SessionError produced by the reference backend passes through
// unchanged; any other error is domain-wrapped (spec.md §7).
func toSessionError(err error) *wire.SessionError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*wire.SessionError); ok {
		return se
	}
	return wire.ErrDomain(err.Error())
}

func propToResult(v backend.PropValue) wire.Result {
	return wire.Result{Str: v.Str, Bool: v.Bool, U64: v.U64, F32: v.F32, Strs: v.Strs, JSON: v.JSON}
}

func argToPropValue(a wire.Args) backend.PropValue {
	return backend.PropValue{Str: a.Str, Bool: a.Bool, U64: a.U64, F32: a.F32, Strs: a.Strs, JSON: a.JSON}
}

// locationGetProp/locationSetProp/elementGetProp/elementSetProp/
// moduleGetProp/moduleSetProp map the many near-identical scalar
// accessor opcodes onto backend.Prop, so dispatch doesn't need one
// hand-written case per property (spec.md §4.1's op list is almost
// entirely this shape).
var locationGetProp = map[wire.Op]backend.Prop{
	wire.OpLocationGetName:           backend.PropName,
	wire.OpLocationGetDesc:           backend.PropDesc,
	wire.OpLocationGetPath:           backend.PropPath,
	wire.OpLocationGetShouldSave:     backend.PropShouldSave,
	wire.OpLocationGetSettings:       backend.PropSettings,
	wire.OpLocationGetModuleSettings: backend.PropModuleSettings,
	wire.OpLocationGetStatuses:       backend.PropStatuses,
	wire.OpLocationGetStatus:         backend.PropStatus,
	wire.OpLocationGetProgress:       backend.PropProgress,
	wire.OpLocationGetIsEnabled:      backend.PropEnabled,
}

var locationSetProp = map[wire.Op]backend.Prop{
	wire.OpLocationSetName:           backend.PropName,
	wire.OpLocationSetDesc:           backend.PropDesc,
	wire.OpLocationSetShouldSave:     backend.PropShouldSave,
	wire.OpLocationSetSettings:       backend.PropSettings,
	wire.OpLocationSetModuleSettings: backend.PropModuleSettings,
	wire.OpLocationSetStatuses:       backend.PropStatuses,
	wire.OpLocationSetStatus:         backend.PropStatus,
	wire.OpLocationSetProgress:       backend.PropProgress,
	wire.OpLocationSetIsEnabled:      backend.PropEnabled,
}

var elementGetProp = map[wire.Op]backend.Prop{
	wire.OpElementGetName:        backend.PropName,
	wire.OpElementGetDesc:        backend.PropDesc,
	wire.OpElementGetMeta:        backend.PropMeta,
	wire.OpElementGetUrl:         backend.PropUrl,
	wire.OpElementGetElementData: backend.PropElementData,
	wire.OpElementGetModuleData:  backend.PropModuleData,
	wire.OpElementGetStatus:      backend.PropStatus,
	wire.OpElementGetStatuses:    backend.PropStatuses,
	wire.OpElementGetData:        backend.PropData,
	wire.OpElementGetProgress:    backend.PropProgress,
	wire.OpElementGetShouldSave:  backend.PropShouldSave,
	wire.OpElementGetEnabled:     backend.PropEnabled,
}

var elementSetProp = map[wire.Op]backend.Prop{
	wire.OpElementSetName:        backend.PropName,
	wire.OpElementSetDesc:        backend.PropDesc,
	wire.OpElementSetMeta:        backend.PropMeta,
	wire.OpElementSetUrl:         backend.PropUrl,
	wire.OpElementSetElementData: backend.PropElementData,
	wire.OpElementSetModuleData:  backend.PropModuleData,
	wire.OpElementSetStatus:      backend.PropStatus,
	wire.OpElementSetStatuses:    backend.PropStatuses,
	wire.OpElementSetData:        backend.PropData,
	wire.OpElementSetProgress:    backend.PropProgress,
	wire.OpElementSetShouldSave:  backend.PropShouldSave,
	wire.OpElementSetEnabled:     backend.PropEnabled,
}

var moduleGetProp = map[wire.Op]backend.Prop{
	wire.OpModuleGetName:             backend.PropName,
	wire.OpModuleGetDesc:             backend.PropDesc,
	wire.OpModuleGetDefaultName:      backend.PropDefaultName,
	wire.OpModuleGetDefaultDesc:      backend.PropDefaultDesc,
	wire.OpModuleGetProxy:            backend.PropProxy,
	wire.OpModuleGetSettings:         backend.PropSettings,
	wire.OpModuleGetElementSettings:  backend.PropElementSettings,
	wire.OpModuleGetLocationSettings: backend.PropLocationSettings,
}

var moduleSetProp = map[wire.Op]backend.Prop{
	wire.OpModuleSetName:             backend.PropName,
	wire.OpModuleSetDesc:             backend.PropDesc,
	wire.OpModuleSetProxy:            backend.PropProxy,
	wire.OpModuleSetSettings:         backend.PropSettings,
	wire.OpModuleSetElementSettings:  backend.PropElementSettings,
	wire.OpModuleSetLocationSettings: backend.PropLocationSettings,
}

// dispatch is the visitor over the closed opcode set (spec.md §9
// "Dynamic dispatch"): one case per wire.Op, translating decoded Args
// into exactly one backing Session call and packaging its outcome as a
// wire.Result or wire.SessionError.
func dispatch(b backend.Session, op wire.Op, a wire.Args) (wire.Result, *wire.SessionError) {
	if prop, ok := locationGetProp[op]; ok {
		v, err := b.LocationProperty(a.Location, prop)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return propToResult(v), nil
	}
	if prop, ok := locationSetProp[op]; ok {
		if err := b.SetLocationProperty(a.Location, prop, argToPropValue(a)); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	}
	if prop, ok := elementGetProp[op]; ok {
		v, err := b.ElementProperty(a.Element, prop)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return propToResult(v), nil
	}
	if prop, ok := elementSetProp[op]; ok {
		if err := b.SetElementProperty(a.Element, prop, argToPropValue(a)); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	}
	if prop, ok := moduleGetProp[op]; ok {
		v, err := b.ModuleProperty(a.Module, prop)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return propToResult(v), nil
	}
	if prop, ok := moduleSetProp[op]; ok {
		if err := b.SetModuleProperty(a.Module, prop, argToPropValue(a)); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	}

	switch op {
	case wire.OpGetVersion:
		return wire.Result{U64: b.Version()}, nil
	case wire.OpGetVersionText:
		return wire.Result{Str: b.VersionText()}, nil

	case wire.OpLoadModule:
		id, err := b.LoadModule(a.Str)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Module: id}, nil
	case wire.OpLoadModuleInfo:
		id, err := b.LoadModuleInfo(a.Str)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Module: id}, nil
	case wire.OpFindModule:
		id, err := b.FindModule(a.Module)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Module: id}, nil
	case wire.OpRemoveModule:
		if err := b.RemoveModule(a.Module); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpGetModulesLen:
		return wire.Result{U64: b.ModulesLen()}, nil
	case wire.OpGetModulesRange:
		ids, err := b.ModulesRange(a.Range[0], a.Range[1])
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Modules: ids}, nil
	case wire.OpModuleGetUid:
		id, err := b.ModuleUID(a.Module)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Module: id}, nil
	case wire.OpModuleGetVersion:
		v, err := b.ModuleVersion(a.Module)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{U64: v}, nil
	case wire.OpModuleGetSupportedVersions:
		v, err := b.ModuleSupportedVersions(a.Module)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return versionsResult(v)
	case wire.OpModuleAcceptUrl:
		ok, err := b.ModuleAcceptUrl(a.Module, a.Str)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Bool: ok}, nil
	case wire.OpModuleAcceptExtension:
		ok, err := b.ModuleAcceptExtension(a.Module, a.Str)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Bool: ok}, nil
	case wire.OpModuleAcceptedProtocols:
		v, err := b.ModuleAcceptedProtocols(a.Module)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Strs: v}, nil
	case wire.OpModuleAcceptedExtensions:
		v, err := b.ModuleAcceptedExtensions(a.Module)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Strs: v}, nil
	case wire.OpModuleInitLocation:
		if err := b.ModuleInitLocation(a.Module, a.Location); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpModuleInitElement:
		if err := b.ModuleInitElement(a.Module, a.Element); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil

	case wire.OpCreateElement:
		id, err := b.CreateElement(a.Location, a.Str)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Element: id}, nil
	case wire.OpMoveElement:
		if err := b.MoveElement(a.Element, a.Location); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpDestroyElement:
		if err := b.DestroyElement(a.Element); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpElementGetInfo:
		info, err := b.ElementInfo(a.Element)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{ElementInfo: info}, nil
	case wire.OpLoadElementInfo:
		info, err := wire.ReadElementInfoJSON(a.JSON)
		if err != nil {
			return wire.Result{}, wire.ErrDomain("malformed element info")
		}
		id, err := b.LoadElementInfo(info)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Element: id}, nil
	case wire.OpElementGetModule:
		mod, err := b.ElementModule(a.Element)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{ModuleOpt: mod}, nil
	case wire.OpElementSetModule:
		if err := b.SetElementModule(a.Element, a.ModuleOpt); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpElementResolvModule:
		mod, err := b.ElementResolvModule(a.Element)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Module: mod, Bool: true}, nil
	case wire.OpElementIsError:
		v, err := b.ElementIsError(a.Element)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Bool: v}, nil
	case wire.OpElementNotify:
		if err := b.ElementNotify(a.Element, a.JSON); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpElementEmit:
		if err := b.ElementEmit(a.Element, a.JSON); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpElementSubscribe:
		if err := b.ElementSubscribe(a.Element, a.Subscriber); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpElementUnSubscribe:
		if err := b.ElementUnSubscribe(a.Element, a.Subscriber); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil

	case wire.OpGetDefaultLocation:
		return wire.Result{Location: b.DefaultLocation()}, nil
	case wire.OpCreateLocation:
		id, err := b.CreateLocation(a.Location, a.Str)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Location: id}, nil
	case wire.OpDestroyLocation:
		if err := b.DestroyLocation(a.Location); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpMoveLocation:
		if err := b.MoveLocation(a.Location, a.Location2); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpGetLocationsLen:
		n, err := b.LocationsLen(a.Location)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{U64: n}, nil
	case wire.OpGetLocationsRange:
		ids, err := b.LocationsRange(a.Location, a.Range[0], a.Range[1])
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Locations: ids}, nil
	case wire.OpLocationGetElementsLen:
		n, err := b.LocationElementsLen(a.Location)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{U64: n}, nil
	case wire.OpLocationGetElements:
		ids, err := b.LocationElements(a.Location)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Elements: ids}, nil
	case wire.OpLocationGetInfo:
		info, err := b.LocationInfo(a.Location)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{LocationInfo: info}, nil
	case wire.OpLoadLocationInfo:
		info, err := wire.ReadLocationInfoJSON(a.JSON)
		if err != nil {
			return wire.Result{}, wire.ErrDomain("malformed location info")
		}
		id, err := b.LoadLocationInfo(info)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Location: id}, nil
	case wire.OpLocationGetModule:
		mod, err := b.LocationModule(a.Location)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{ModuleOpt: mod}, nil
	case wire.OpLocationSetModule:
		if err := b.SetLocationModule(a.Location, a.ModuleOpt); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpLocationIsError:
		v, err := b.LocationIsError(a.Location)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Bool: v}, nil
	case wire.OpLocationNotify:
		if err := b.LocationNotify(a.Location, a.JSON); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpLocationEmit:
		if err := b.LocationEmit(a.Location, a.JSON); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpLocationSubscribe:
		if err := b.LocationSubscribe(a.Location, a.Subscriber); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil
	case wire.OpLocationUnSubscribe:
		if err := b.LocationUnSubscribe(a.Location, a.Subscriber); err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{}, nil

	case wire.OpGetActionsLen:
		return wire.Result{U64: b.ActionsLen()}, nil
	case wire.OpGetActions:
		actions, err := b.ActionsRange(a.Range[0], a.Range[1])
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{Actions: actions}, nil
	case wire.OpRunAction:
		out, err := b.RunAction(a.Str, a.Module, a.JSON)
		if err != nil {
			return wire.Result{}, toSessionError(err)
		}
		return wire.Result{JSON: out}, nil

	default:
		return wire.Result{}, wire.ErrDomain("unimplemented opcode: " + op.String())
	}
}

func versionsResult(versions []uint64) (wire.Result, *wire.SessionError) {
	b, err := wire.MarshalUint64s(versions)
	if err != nil {
		return wire.Result{}, wire.ErrDomain("failed to encode supported versions")
	}
	return wire.Result{JSON: b}, nil
}
