package wire

// Op identifies a request/response pair's wire opcode. The tag space is
// part of the stable ABI (spec.md §6); decoders reject unknown tags.
type Op byte

const (
	OpTick Op = iota // keep-alive; never answered (spec.md §4.1)

	// Session-wide.
	OpGetVersion
	OpGetVersionText

	// Module ops.
	OpLoadModule
	OpLoadModuleInfo
	OpFindModule
	OpRemoveModule
	OpGetModulesLen
	OpGetModulesRange
	OpModuleGetName
	OpModuleSetName
	OpModuleGetDesc
	OpModuleSetDesc
	OpModuleGetDefaultName
	OpModuleGetDefaultDesc
	OpModuleGetProxy
	OpModuleSetProxy
	OpModuleGetSettings
	OpModuleSetSettings
	OpModuleGetElementSettings
	OpModuleSetElementSettings
	OpModuleGetLocationSettings
	OpModuleSetLocationSettings
	OpModuleGetUid
	OpModuleGetVersion
	OpModuleGetSupportedVersions
	OpModuleAcceptUrl
	OpModuleAcceptExtension
	OpModuleAcceptedProtocols
	OpModuleAcceptedExtensions
	OpModuleInitLocation
	OpModuleInitElement

	// Element ops.
	OpCreateElement
	OpMoveElement
	OpDestroyElement
	OpElementGetName
	OpElementSetName
	OpElementGetDesc
	OpElementSetDesc
	OpElementGetMeta
	OpElementSetMeta
	OpElementGetUrl
	OpElementSetUrl
	OpElementGetElementData
	OpElementSetElementData
	OpElementGetModuleData
	OpElementSetModuleData
	OpElementGetModule
	OpElementSetModule
	OpElementGetStatus
	OpElementSetStatus
	OpElementGetStatuses
	OpElementSetStatuses
	OpElementGetData
	OpElementSetData
	OpElementGetProgress
	OpElementSetProgress
	OpElementGetShouldSave
	OpElementSetShouldSave
	OpElementGetEnabled
	OpElementSetEnabled
	OpElementGetInfo
	OpElementResolvModule
	OpElementWait
	OpElementIsError
	OpElementNotify
	OpElementEmit
	OpElementSubscribe
	OpElementUnSubscribe
	OpLoadElementInfo

	// Location ops.
	OpGetDefaultLocation
	OpCreateLocation
	OpDestroyLocation
	OpMoveLocation
	OpGetLocationsLen
	OpGetLocationsRange
	OpLocationGetName
	OpLocationSetName
	OpLocationGetDesc
	OpLocationSetDesc
	OpLocationGetPath
	OpLocationSetPath
	OpLocationGetShouldSave
	OpLocationSetShouldSave
	OpLocationGetElementsLen
	OpLocationGetElements
	OpLocationGetInfo
	OpLocationGetModule
	OpLocationSetModule
	OpLocationGetSettings
	OpLocationSetSettings
	OpLocationGetModuleSettings
	OpLocationSetModuleSettings
	OpLocationGetStatuses
	OpLocationSetStatuses
	OpLocationGetStatus
	OpLocationSetStatus
	OpLocationGetProgress
	OpLocationSetProgress
	OpLocationGetIsEnabled
	OpLocationSetIsEnabled
	OpLocationIsError
	OpLocationNotify
	OpLocationEmit
	OpLocationSubscribe
	OpLocationUnSubscribe
	OpLoadLocationInfo

	// Actions.
	OpGetActionsLen
	OpGetActions
	OpRunAction

	opCount
)

var opNames = map[Op]string{
	OpTick:                       "Tick",
	OpGetVersion:                 "GetVersion",
	OpGetVersionText:             "GetVersionText",
	OpLoadModule:                 "LoadModule",
	OpLoadModuleInfo:             "LoadModuleInfo",
	OpFindModule:                 "FindModule",
	OpRemoveModule:               "RemoveModule",
	OpGetModulesLen:              "GetModulesLen",
	OpGetModulesRange:            "GetModulesRange",
	OpModuleGetName:              "ModuleGetName",
	OpModuleSetName:              "ModuleSetName",
	OpModuleGetDesc:              "ModuleGetDesc",
	OpModuleSetDesc:              "ModuleSetDesc",
	OpModuleGetDefaultName:       "ModuleGetDefaultName",
	OpModuleGetDefaultDesc:       "ModuleGetDefaultDesc",
	OpModuleGetProxy:             "ModuleGetProxy",
	OpModuleSetProxy:             "ModuleSetProxy",
	OpModuleGetSettings:          "ModuleGetSettings",
	OpModuleSetSettings:          "ModuleSetSettings",
	OpModuleGetElementSettings:   "ModuleGetElementSettings",
	OpModuleSetElementSettings:   "ModuleSetElementSettings",
	OpModuleGetLocationSettings:  "ModuleGetLocationSettings",
	OpModuleSetLocationSettings:  "ModuleSetLocationSettings",
	OpModuleGetUid:               "ModuleGetUid",
	OpModuleGetVersion:           "ModuleGetVersion",
	OpModuleGetSupportedVersions: "ModuleGetSupportedVersions",
	OpModuleAcceptUrl:            "ModuleAcceptUrl",
	OpModuleAcceptExtension:      "ModuleAcceptExtension",
	OpModuleAcceptedProtocols:    "ModuleAcceptedProtocols",
	OpModuleAcceptedExtensions:   "ModuleAcceptedExtensions",
	OpModuleInitLocation:         "ModuleInitLocation",
	OpModuleInitElement:          "ModuleInitElement",
	OpCreateElement:              "CreateElement",
	OpMoveElement:                "MoveElement",
	OpDestroyElement:             "DestroyElement",
	OpElementGetName:             "ElementGetName",
	OpElementSetName:             "ElementSetName",
	OpElementGetDesc:             "ElementGetDesc",
	OpElementSetDesc:             "ElementSetDesc",
	OpElementGetMeta:             "ElementGetMeta",
	OpElementSetMeta:             "ElementSetMeta",
	OpElementGetUrl:              "ElementGetUrl",
	OpElementSetUrl:              "ElementSetUrl",
	OpElementGetElementData:      "ElementGetElementData",
	OpElementSetElementData:      "ElementSetElementData",
	OpElementGetModuleData:       "ElementGetModuleData",
	OpElementSetModuleData:       "ElementSetModuleData",
	OpElementGetModule:           "ElementGetModule",
	OpElementSetModule:           "ElementSetModule",
	OpElementGetStatus:           "ElementGetStatus",
	OpElementSetStatus:           "ElementSetStatus",
	OpElementGetStatuses:         "ElementGetStatuses",
	OpElementSetStatuses:         "ElementSetStatuses",
	OpElementGetData:             "ElementGetData",
	OpElementSetData:             "ElementSetData",
	OpElementGetProgress:         "ElementGetProgress",
	OpElementSetProgress:         "ElementSetProgress",
	OpElementGetShouldSave:       "ElementGetShouldSave",
	OpElementSetShouldSave:       "ElementSetShouldSave",
	OpElementGetEnabled:          "ElementGetEnabled",
	OpElementSetEnabled:          "ElementSetEnabled",
	OpElementGetInfo:             "ElementGetInfo",
	OpElementResolvModule:        "ElementResolvModule",
	OpElementWait:                "ElementWait",
	OpElementIsError:             "ElementIsError",
	OpElementNotify:              "ElementNotify",
	OpElementEmit:                "ElementEmit",
	OpElementSubscribe:           "ElementSubscribe",
	OpElementUnSubscribe:         "ElementUnSubscribe",
	OpLoadElementInfo:            "LoadElementInfo",
	OpGetDefaultLocation:         "GetDefaultLocation",
	OpCreateLocation:             "CreateLocation",
	OpDestroyLocation:            "DestroyLocation",
	OpMoveLocation:               "MoveLocation",
	OpGetLocationsLen:            "GetLocationsLen",
	OpGetLocationsRange:          "GetLocationsRange",
	OpLocationGetName:            "LocationGetName",
	OpLocationSetName:            "LocationSetName",
	OpLocationGetDesc:            "LocationGetDesc",
	OpLocationSetDesc:            "LocationSetDesc",
	OpLocationGetPath:            "LocationGetPath",
	OpLocationSetPath:            "LocationSetPath",
	OpLocationGetShouldSave:      "LocationGetShouldSave",
	OpLocationSetShouldSave:      "LocationSetShouldSave",
	OpLocationGetElementsLen:     "LocationGetElementsLen",
	OpLocationGetElements:        "LocationGetElements",
	OpLocationGetInfo:            "LocationGetInfo",
	OpLocationGetModule:          "LocationGetModule",
	OpLocationSetModule:          "LocationSetModule",
	OpLocationGetSettings:        "LocationGetSettings",
	OpLocationSetSettings:        "LocationSetSettings",
	OpLocationGetModuleSettings:  "LocationGetModuleSettings",
	OpLocationSetModuleSettings:  "LocationSetModuleSettings",
	OpLocationGetStatuses:        "LocationGetStatuses",
	OpLocationSetStatuses:        "LocationSetStatuses",
	OpLocationGetStatus:          "LocationGetStatus",
	OpLocationSetStatus:          "LocationSetStatus",
	OpLocationGetProgress:        "LocationGetProgress",
	OpLocationSetProgress:        "LocationSetProgress",
	OpLocationGetIsEnabled:       "LocationGetIsEnabled",
	OpLocationSetIsEnabled:       "LocationSetIsEnabled",
	OpLocationIsError:            "LocationIsError",
	OpLocationNotify:             "LocationNotify",
	OpLocationEmit:               "LocationEmit",
	OpLocationSubscribe:          "LocationSubscribe",
	OpLocationUnSubscribe:        "LocationUnSubscribe",
	OpLoadLocationInfo:           "LoadLocationInfo",
	OpGetActionsLen:              "GetActionsLen",
	OpGetActions:                 "GetActions",
	OpRunAction:                  "RunAction",
}

// String renders the opcode's name, for logging.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether op is a known, in-range opcode.
func (op Op) Valid() bool { return op < opCount }

// nonTransferable lists ops that never exist on the wire: they require
// non-transferable parameters (callbacks, thread-local storage) per
// spec.md §4.3/§7/Testable Property 8. The session façade (C6) rejects
// these synchronously without building a request.
var nonTransferable = map[string]bool{
	"RegisterAction":     true,
	"RemoveAction":       true,
	"ModuleStepElement":  true,
	"ModuleStepLocation": true,
}

// IsNonTransferable reports whether the named façade operation is
// barred from the wire. Named by string rather than Op because these
// operations have no wire opcode at all.
func IsNonTransferable(name string) bool { return nonTransferable[name] }
