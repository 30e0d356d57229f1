// Package jump implements C5: detecting and discarding implausible
// single-frame motion before it reaches the pointer. The MSC-timestamp
// jump corrector (C6) lives in internal/msctime.
package jump

import "math"

// ReferenceIntervalUS is the 12ms frame cadence jump/speed thresholds
// are calibrated against (spec.md's GLOSSARY).
const ReferenceIntervalUS = 12_000

// MaxDeltaMM and MaxDeltaIncreaseMM are the two jump thresholds of
// spec.md §4.5.
const (
	MaxDeltaMM         = 20.0
	MaxDeltaIncreaseMM = 7.0
)

// MaxRegularIntervalUS is the Δt above which jump detection is skipped
// because the frame itself is irregular (spec.md §4.5).
const MaxRegularIntervalUS = 24_000

// Detect computes the reference-normalized delta in millimeters and
// reports whether it is a jump, per spec.md §4.5:
//
//	Δmm = hypot(dx, dy)_mm × (reference_interval / Δt)
//
// disabled is true to mean Wacom-tagged devices, where the detector is
// disabled entirely. Detect does not mutate lastDeltaMM; callers update
// it themselves when Detect returns normally (not skipped), matching
// "declare a jump and reset history" being the caller's job, not this
// function's.
func Detect(dxMM, dyMM float64, dtUS int64, lastDeltaMM float64, disabled bool) (deltaMM float64, isJump bool) {
	if disabled {
		return 0, false
	}
	if dtUS > MaxRegularIntervalUS || dtUS == 0 {
		return 0, false
	}
	deltaMM = math.Hypot(dxMM, dyMM) * (float64(ReferenceIntervalUS) / float64(dtUS))
	if deltaMM > MaxDeltaMM {
		return deltaMM, true
	}
	if deltaMM-lastDeltaMM > MaxDeltaIncreaseMM {
		return deltaMM, true
	}
	return deltaMM, false
}
