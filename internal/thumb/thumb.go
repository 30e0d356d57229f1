// Package thumb implements C8: the thumb classifier, active only on
// clickpads with physical height >= 50mm when thumb detection is
// enabled.
package thumb

import (
	"math"

	"touchpadd/internal/touch"
)

// MinPhysicalHeightMM is the clickpad-height floor below which the
// classifier never runs.
const MinPhysicalHeightMM = 50.0

// UpperLineFraction and LowerLineFraction locate the two horizontal
// lines as fractions of physical height (spec.md §4.8).
const (
	UpperLineFraction = 0.85
	LowerLineFraction = 0.92
)

// MaxMoveMM is rule B's movement-from-initial threshold.
const MaxMoveMM = 7.0

// MoveTimeoutUS is rule D's "in the zone for > 300ms" threshold.
const MoveTimeoutUS = 300_000

// MaxExceededCount saturates Speed.ExceededCount (touch.Speed), per
// spec.md §3.
const MaxExceededCount = 10

// SpeedThumbExceededThreshold is rule E's "sustained speed" gate.
const SpeedThumbExceededThreshold = 5

// Config bundles thresholds that do not vary per touch.
type Config struct {
	UpperLineY, LowerLineY int32 // device Y coordinates
	PressureThreshold      int32
	SizeThreshold          int32
	ScrollMethodIsEdge     bool
	TwoFingerScrollEnabled bool
}

// LinesFromHeight converts the 85%/92%-of-height fractions into device
// Y coordinates for a given axis range, honoring the orientation of
// Minimum vs Maximum (Y increases downward on a touchpad surface).
func LinesFromHeight(minY, maxY int32) (upper, lower int32) {
	span := float64(maxY - minY)
	upper = minY + int32(span*UpperLineFraction)
	lower = minY + int32(span*LowerLineFraction)
	return upper, lower
}

// Classify evaluates rules A, B and D for one dirty touch at BEGIN or
// UPDATE; rule C involves two touches and is ApplyRuleC.
// atBegin selects rule A (only fires at BEGIN). mmMoved is the
// straight-line distance from t.Thumb.Initial, precomputed by the
// caller since it already tracks device-to-mm conversion.
//
// Once t.Thumb.State leaves ThumbMaybe it never reverts within the
// contact's lifetime (spec.md §3); Classify enforces this by refusing
// to evaluate any rule once the state is no longer Maybe.
func Classify(t *touch.Touch, cfg Config, atBegin bool, mmMoved float64, now int64, inZoneSince int64) {
	if t.Thumb.State != touch.ThumbMaybe {
		return
	}

	// Rule A.
	if atBegin && t.Point.Y < cfg.UpperLineY {
		t.Thumb.State = touch.ThumbNo
		return
	}

	// Rule B.
	if mmMoved > MaxMoveMM {
		t.Thumb.State = touch.ThumbNo
		return
	}

	// Rule D: promotion to YES.
	if t.Pressure > cfg.PressureThreshold {
		t.Thumb.State = touch.ThumbYes
		return
	}
	if t.Major > cfg.SizeThreshold && float64(t.Minor) < 0.6*float64(cfg.SizeThreshold) {
		t.Thumb.State = touch.ThumbYes
		return
	}
	if t.Point.Y >= cfg.LowerLineY && !cfg.ScrollMethodIsEdge {
		if now-inZoneSince > MoveTimeoutUS {
			t.Thumb.State = touch.ThumbYes
			return
		}
	}
}

// ApplyRuleC handles rule C: if two touches are both below the upper
// line at the same time, both become NO. Callers invoke this once per
// frame over any pair of simultaneously-active touches still in Maybe.
func ApplyRuleC(a, b *touch.Touch, cfg Config) {
	if a.Thumb.State != touch.ThumbMaybe || b.Thumb.State != touch.ThumbMaybe {
		return
	}
	if a.Point.Y >= cfg.UpperLineY && b.Point.Y >= cfg.UpperLineY {
		a.Thumb.State = touch.ThumbNo
		b.Thumb.State = touch.ThumbNo
	}
}

// SpeedThumbZoneMM is the 25mm x 15mm zone rule E exempts from
// promotion when two-finger scroll is enabled.
type SpeedThumbZoneMM struct {
	X, Y float64
}

// DefaultSpeedThumbZone is the 25mm x 15mm box spec.md §4.8 rule E
// names.
var DefaultSpeedThumbZone = SpeedThumbZoneMM{X: 25, Y: 15}

// ApplyRuleE implements the speed-based thumb rule: if one finger has
// sustained speed (ExceededCount > 5) and a new BEGIN makes
// nfingers_down == 2, the newer finger is YES unless the two touches
// are within the exemption zone and two-finger scroll is enabled.
//
// spec.md §9 flags that the original implementation's analogous
// function assumes both "first" and "second" are non-null after a loop
// that does not guarantee it; first/second here are typed *touch.Touch
// and the nil checks below are exactly that defensive guard.
func ApplyRuleE(fastFinger, newFinger *touch.Touch, deltaMM SpeedThumbZoneMM, cfg Config, zone SpeedThumbZoneMM) {
	if fastFinger == nil || newFinger == nil {
		return
	}
	if fastFinger.Speed.ExceededCount <= SpeedThumbExceededThreshold {
		return
	}
	if newFinger.Thumb.State != touch.ThumbMaybe {
		return
	}
	withinZone := math.Abs(deltaMM.X) <= zone.X && math.Abs(deltaMM.Y) <= zone.Y
	if withinZone && cfg.TwoFingerScrollEnabled {
		return
	}
	newFinger.Thumb.State = touch.ThumbYes
}
