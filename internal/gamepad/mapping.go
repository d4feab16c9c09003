package gamepad

import "math"

// AxisMapping defines how a raw joystick axis index maps to a logical axis
type AxisMapping struct {
	Index  int32
	Target Axis
	Invert bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// IsTrigger reports whether the mapping targets an analog trigger
func (m AxisMapping) IsTrigger() bool {
	return m.Target == LeftTrigger || m.Target == RightTrigger
}

// ButtonMapping maps a raw joystick button index to a logical button
type ButtonMapping struct {
	Index  int32
	Target Button
}

// DeviceMapping holds the complete mapping for a specific device type
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// Button returns the logical button for a raw index
func (m *DeviceMapping) Button(index int32) (Button, bool) {
	for _, bm := range m.Buttons {
		if bm.Index == index {
			return bm.Target, true
		}
	}
	return ButtonNone, false
}

// Axis returns the mapping that targets a, if any
func (m *DeviceMapping) Axis(a Axis) (AxisMapping, bool) {
	for _, am := range m.Axes {
		if am.Target == a {
			return am, true
		}
	}
	return AxisMapping{}, false
}

// AxisAt returns the mapping for a raw axis index, if any
func (m *DeviceMapping) AxisAt(index int32) (AxisMapping, bool) {
	for _, am := range m.Axes {
		if am.Index == index {
			return am, true
		}
	}
	return AxisMapping{}, false
}

// Normalize converts a raw reading to the logical range of the mapped axis
func (m AxisMapping) Normalize(raw int16) float64 {
	if m.IsTrigger() {
		return NormalizeTrigger(raw, m.RawMin, m.RawMax)
	}
	v := NormalizeAxis(raw)
	if m.Invert {
		v = -v
	}
	return v
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

var standardAxes = []AxisMapping{
	{Index: 0, Target: LeftX},
	{Index: 1, Target: LeftY, Invert: true},
	{Index: 2, Target: RightX},
	{Index: 3, Target: RightY, Invert: true},
	{Index: 4, Target: LeftTrigger, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: RightTrigger, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},
		{Index: 1, Target: East},
		{Index: 2, Target: West},
		{Index: 3, Target: North},
		{Index: 4, Target: LB},
		{Index: 5, Target: RB},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: L3},
		{Index: 9, Target: R3},
		{Index: 10, Target: Home},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},  // Cross
		{Index: 1, Target: East},   // Circle
		{Index: 2, Target: West},   // Square
		{Index: 3, Target: North},  // Triangle
		{Index: 4, Target: Select}, // Share / Create
		{Index: 5, Target: Home},   // PS button
		{Index: 6, Target: Start},  // Options
		{Index: 7, Target: L3},
		{Index: 8, Target: R3},
		{Index: 9, Target: LB},  // L1
		{Index: 10, Target: RB}, // R1
	},
	HasHat: true,
}

// Switch Pro has no analog triggers; ZL/ZR are not mapped
var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: standardAxes[:4],
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},
		{Index: 1, Target: East},
		{Index: 2, Target: West},
		{Index: 3, Target: North},
		{Index: 4, Target: LB},
		{Index: 5, Target: RB},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: L3},
		{Index: 9, Target: R3},
		{Index: 10, Target: Home},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name: "generic",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},
		{Index: 1, Target: East},
		{Index: 2, Target: West},
		{Index: 3, Target: North},
		{Index: 4, Target: LB},
		{Index: 5, Target: RB},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: L3},
		{Index: 9, Target: R3},
		{Index: 10, Target: Home},
	},
	HasHat: true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the mapping for a device identified by vendor/product ID,
// falling back to the generic mapping.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	if m, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return m
	}
	return genericMapping
}
