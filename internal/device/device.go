// Package device holds the per-device configuration and axis geometry
// spec.md §3 describes: axis ranges, slot/touch counts, and the model
// quirks every classifier reads at init and never mutates afterward
// (spec.md §9: "global quirks are injected at init as an immutable
// configuration struct per device").
package device

// AxisRange describes one absolute axis's calibration, the evdev
// equivalent of struct input_absinfo.
type AxisRange struct {
	Minimum    int32
	Maximum    int32
	Resolution int32 // units/mm, 0 if unknown
	Fuzz       int32 // 0 if the device reports none
}

// Span returns Maximum - Minimum.
func (a AxisRange) Span() int32 {
	return a.Maximum - a.Minimum
}

// MMToUnits converts a millimeter distance to device units using the
// axis resolution, falling back to 1:1 when the device does not report
// a resolution.
func (a AxisRange) MMToUnits(mm float64) float64 {
	if a.Resolution <= 0 {
		return mm
	}
	return mm * float64(a.Resolution)
}

// UnitsToMM is the inverse of MMToUnits.
func (a AxisRange) UnitsToMM(units float64) float64 {
	if a.Resolution <= 0 {
		return units
	}
	return units / float64(a.Resolution)
}

// HoverStrategy selects which of the three C3 strategies a device uses.
type HoverStrategy int

const (
	HoverStrategyFakeFinger HoverStrategy = iota
	HoverStrategyPressure
	HoverStrategySize
)

// PressureThresholds is a [lo, hi] pair for pressure-based hover (C3)
// and the palm pressure rule (C7).
type PressureThresholds struct {
	Low  int32
	High int32
}

// SizeThresholds is a [lo, hi] pair for size-based hover (C3).
type SizeThresholds struct {
	Low  int32
	High int32
}

// LeftHanded controls the left-handed configuration option (§6).
type LeftHanded struct {
	Enabled bool
	// Rotate requests a full 180-degree axis rotation (reversible
	// devices, e.g. Wacom) rather than a plain left/right button swap.
	Rotate bool
}

// Quirks is the immutable, per-device configuration blob a real
// implementation would source from quirks_fetch_for_device /
// quirks_get_* (spec.md §6); here it is a plain struct populated by the
// caller or by Probe.
type Quirks struct {
	IsInternal bool
	IsClickpad bool
	IsSemiMT   bool
	IsWacom    bool // disables the jump detector (§4.5)

	HasTopSoftwareButtons bool

	PalmPressureThreshold int32
	PalmSizeThreshold     int32

	ThumbDetectThumbs       bool
	ThumbPressureThreshold  int32
	ThumbSizeThreshold      int32

	ScrollMethodTwoFinger bool // vs. edge

	DWTEnabled bool

	SendEventsMode SendEventsMode
}

// SendEventsMode is the §6 "send-events mode" configuration option.
type SendEventsMode int

const (
	SendEventsEnabled SendEventsMode = iota
	SendEventsDisabled
	SendEventsDisabledOnExternalMouse
)

// Device is one physical touchpad and all of its static configuration.
type Device struct {
	Name string

	X, Y AxisRange

	NumSlots   int
	BtnToolMax int // highest BTN_TOOL_* finger count the device reports

	HoverStrategy      HoverStrategy
	Pressure           PressureThresholds
	Size               SizeThresholds
	PhysicalHeightMM   float64
	PhysicalWidthMM    float64

	LeftHanded LeftHanded

	Quirks Quirks
}

// NTouches is the logical touch capacity: max(num_slots, btn_tool_max).
func (d *Device) NTouches() int {
	if d.NumSlots > d.BtnToolMax {
		return d.NumSlots
	}
	return d.BtnToolMax
}

// DefaultPressureThresholds returns the 12%/10%-of-range default hover
// pressure thresholds spec.md §4.3 specifies when no quirk overrides
// them.
func DefaultPressureThresholds(axis AxisRange) PressureThresholds {
	span := float64(axis.Span())
	return PressureThresholds{
		Low:  int32(span * 0.10),
		High: int32(span * 0.12),
	}
}

// HysteresisMargin returns {mx, my}: the axis fuzz if nonzero, else
// resolution/4, per spec.md §4.4.
func HysteresisMargin(x, y AxisRange) (mx, my int32) {
	mx = x.Fuzz
	if mx == 0 {
		mx = x.Resolution / 4
	}
	my = y.Fuzz
	if my == 0 {
		my = y.Resolution / 4
	}
	return mx, my
}
