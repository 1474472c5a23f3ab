package audyssey

// Wire parameter names understood by the GetAudyssey/SetAudyssey commands
const (
	ParamDynamicEQ      = "dynamiceq"
	ParamRefLevelOffset = "reflevoffset"
	ParamDynamicVolume  = "dynamicvol"
	ParamMultiEQ        = "multeq"
)

// MultEQ room correction curve labels
const (
	MultiEQOff       = "Off"
	MultiEQFlat      = "Flat"
	MultiEQLRBypass  = "L/R Bypass"
	MultiEQReference = "Reference"
)

// Reference level offset labels
const (
	RefLevelOffset0dB  = "0dB"
	RefLevelOffset5dB  = "+5dB"
	RefLevelOffset10dB = "+10dB"
	RefLevelOffset15dB = "+15dB"
)

// Dynamic volume labels
const (
	DynamicVolumeOff    = "Off"
	DynamicVolumeLight  = "Light"
	DynamicVolumeMedium = "Medium"
	DynamicVolumeHeavy  = "Heavy"
)

// NotApplicable is stored in RefLevelOffset while Dynamic EQ is off. The
// firmware keeps reporting the last configured offset code in that state,
// but the value has no effect until Dynamic EQ is enabled again, so the
// adapter masks it.
const NotApplicable = "N/A"

// Code/label tables for the three enumerated settings. Both directions
// are spelled out as literals and must stay 1:1; the tests cross-check
// them. Codes are the small integer strings the receiver speaks.

var multiEQByCode = map[string]string{
	"0": MultiEQOff,
	"1": MultiEQFlat,
	"2": MultiEQLRBypass,
	"3": MultiEQReference,
}

var multiEQByLabel = map[string]string{
	MultiEQOff:       "0",
	MultiEQFlat:      "1",
	MultiEQLRBypass:  "2",
	MultiEQReference: "3",
}

var refLevelOffsetByCode = map[string]string{
	"0": RefLevelOffset0dB,
	"1": RefLevelOffset5dB,
	"2": RefLevelOffset10dB,
	"3": RefLevelOffset15dB,
}

var refLevelOffsetByLabel = map[string]string{
	RefLevelOffset0dB:  "0",
	RefLevelOffset5dB:  "1",
	RefLevelOffset10dB: "2",
	RefLevelOffset15dB: "3",
}

var dynamicVolumeByCode = map[string]string{
	"0": DynamicVolumeOff,
	"1": DynamicVolumeLight,
	"2": DynamicVolumeMedium,
	"3": DynamicVolumeHeavy,
}

var dynamicVolumeByLabel = map[string]string{
	DynamicVolumeOff:    "0",
	DynamicVolumeLight:  "1",
	DynamicVolumeMedium: "2",
	DynamicVolumeHeavy:  "3",
}

// Ordered option lists for UI layers (flag validation, wizard rows).
// Order follows the wire codes.

// MultiEQOptions lists the MultEQ labels in wire code order
var MultiEQOptions = []string{MultiEQOff, MultiEQFlat, MultiEQLRBypass, MultiEQReference}

// RefLevelOffsetOptions lists the reference level offset labels in wire code order
var RefLevelOffsetOptions = []string{RefLevelOffset0dB, RefLevelOffset5dB, RefLevelOffset10dB, RefLevelOffset15dB}

// DynamicVolumeOptions lists the dynamic volume labels in wire code order
var DynamicVolumeOptions = []string{DynamicVolumeOff, DynamicVolumeLight, DynamicVolumeMedium, DynamicVolumeHeavy}

// labelFor resolves a wire code to its label, or nil for unknown codes
func labelFor(byCode map[string]string, code string) *string {
	if label, ok := byCode[code]; ok {
		return &label
	}
	return nil
}
