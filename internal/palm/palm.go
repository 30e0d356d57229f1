// Package palm implements C7: the palm classifier, evaluated per dirty
// touch each frame as an ordered chain of rules (spec.md §9's "ordered
// list of (predicate, result_state) rules evaluated until first match";
// pressure is deliberately re-checked last, so the chain runs the
// pressure rule twice).
package palm

import (
	"touchpadd/internal/touch"
)

// EdgeZone describes the exclusion bands spec.md §4.7 rule 7 uses: left
// and right 8% of width capped at 8mm, and a top band at 5% of height
// when the device has no software top-buttons and its physical height
// exceeds 55mm.
type EdgeZone struct {
	Left, Right, Top int32 // absolute device coordinates: x < Left, x > Right or y < Top is in a band
	HasTop           bool
}

// Config bundles everything the classifier needs that does not change
// within a touch's lifetime: thresholds and environment queries.
type Config struct {
	PressureThreshold int32
	SizeThreshold     int32
	Edge              EdgeZone

	// IsInsideSoftButtonArea reports whether p falls within a
	// software-button area; edge palm never triggers there.
	IsInsideSoftButtonArea func(p touch.Point) bool
	// IsRightEdgeOfClickpad reports whether p is on the right edge of
	// a clickpad; edge palm never triggers there either.
	IsRightEdgeOfClickpad func(p touch.Point) bool
}

// Inputs bundles the per-frame facts the classifier reads but does not
// own, supplied by the orchestrator.
type Inputs struct {
	ArbitrationActive bool
	KeyboardActive    bool
	TrackpointActive  bool
	// AnotherActiveNonPalmTouch reports whether some touch other than
	// the one being classified is currently BEGIN/UPDATE and not
	// itself palm — used by the edge rule's top-band entry and its
	// release condition.
	AnotherActiveNonPalmTouch bool

	// LastKeyTime is the timestamp of the most recent paired-keyboard
	// key-down, used by rule 3 to test "began strictly after the last
	// keypress". Zero if no key-down has ever been observed.
	LastKeyTime int64

	Now int64 // microseconds
}

const edgeReleaseWindowUS = 200_000

// Classify runs the rule chain for one dirty touch and returns the
// palm state it should end the frame in. t.Palm is updated in place:
// First/Time are set whenever a palm state is entered; a release to
// PalmNone leaves them as they were.
//
// atBegin is true only on the frame this touch transitions into BEGIN;
// several rules (typing, trackpoint, edge) only fire at that moment.
func Classify(t *touch.Touch, cfg Config, in Inputs, atBegin bool) touch.PalmState {
	// Sticky states are only released by their own rule's release
	// condition or by touch end; re-entering Classify never downgrades
	// them except through those explicit paths below. Pressure and
	// touch-size have no release condition, so once entered they hold
	// until the touch is reset.
	if t.Palm.State == touch.PalmPressure || t.Palm.State == touch.PalmTouchSize {
		return t.Palm.State
	}

	// Rule 1: pressure (sticky, checked first).
	if t.Pressure > cfg.PressureThreshold {
		return enter(t, touch.PalmPressure, in.Now)
	}

	// Rule 2: arbitration.
	if in.ArbitrationActive {
		return enter(t, touch.PalmArbitration, in.Now)
	}
	if t.Palm.State == touch.PalmArbitration && !in.ArbitrationActive {
		t.Palm.State = touch.PalmNone
	}

	// Rule 3: DWT typing.
	if atBegin && in.KeyboardActive {
		return enter(t, touch.PalmTyping, in.Now)
	}
	if t.Palm.State == touch.PalmTyping && !in.KeyboardActive && t.Palm.Time > in.LastKeyTime {
		// Released on UPDATE once keyboard is inactive and the touch
		// (t.Palm.Time, set when it entered BEGIN) began strictly
		// after the last keypress.
		t.Palm.State = touch.PalmNone
	}

	// Rule 4: trackpoint, symmetric begin/release.
	if atBegin && in.TrackpointActive {
		return enter(t, touch.PalmTrackpoint, in.Now)
	}
	if t.Palm.State == touch.PalmTrackpoint && !in.TrackpointActive {
		t.Palm.State = touch.PalmNone
	}

	// Rule 5: tool palm.
	if t.IsToolPalm {
		return enter(t, touch.PalmToolPalm, in.Now)
	}
	if t.Palm.State == touch.PalmToolPalm && !t.IsToolPalm {
		t.Palm.State = touch.PalmNone
	}

	// Rule 6: touch size (sticky).
	if t.Major > cfg.SizeThreshold || t.Minor > cfg.SizeThreshold {
		return enter(t, touch.PalmTouchSize, in.Now)
	}

	// Rule 7: edge, entered only at BEGIN.
	if atBegin && edgeEligible(t, cfg, in) {
		return enter(t, touch.PalmEdge, in.Now)
	}
	if t.Palm.State == touch.PalmEdge && edgeShouldRelease(t, cfg, in) {
		t.Palm.State = touch.PalmNone
	}

	// Rule 8: re-check pressure (covers the sticky latch becoming
	// applicable only after the other rules ran).
	if t.Pressure > cfg.PressureThreshold {
		return enter(t, touch.PalmPressure, in.Now)
	}

	return t.Palm.State
}

func enter(t *touch.Touch, s touch.PalmState, now int64) touch.PalmState {
	if t.Palm.State != s {
		t.Palm.State = s
		t.Palm.First = t.Point
		t.Palm.Time = now
	}
	return s
}

func edgeEligible(t *touch.Touch, cfg Config, in Inputs) bool {
	if cfg.IsInsideSoftButtonArea != nil && cfg.IsInsideSoftButtonArea(t.Point) {
		return false
	}
	if cfg.IsRightEdgeOfClickpad != nil && cfg.IsRightEdgeOfClickpad(t.Point) {
		return false
	}
	onSide := t.Point.X < cfg.Edge.Left || t.Point.X > cfg.Edge.Right
	onTop := cfg.Edge.HasTop && !in.AnotherActiveNonPalmTouch && t.Point.Y < cfg.Edge.Top
	return onSide || onTop
}

// edgeShouldRelease implements the two release conditions of spec.md
// §4.7 rule 7: another non-palm finger becomes active, or the touch
// exits the edge within 200ms moving within +/-45deg of horizontal
// (side palm) or downward (top palm).
func edgeShouldRelease(t *touch.Touch, cfg Config, in Inputs) bool {
	if in.AnotherActiveNonPalmTouch {
		return true
	}
	elapsed := in.Now - t.Palm.Time
	if elapsed > edgeReleaseWindowUS {
		return false
	}
	stillOnSide := t.Point.X < cfg.Edge.Left || t.Point.X > cfg.Edge.Right
	stillOnTop := cfg.Edge.HasTop && t.Point.Y < cfg.Edge.Top
	if stillOnSide || stillOnTop {
		return false
	}
	dx := float64(t.Point.X - t.Palm.First.X)
	dy := float64(t.Point.Y - t.Palm.First.Y)
	if dx == 0 && dy == 0 {
		return false
	}
	wasOnTop := cfg.Edge.HasTop && t.Palm.First.Y < cfg.Edge.Top
	if wasOnTop {
		return dy > 0
	}
	// within +/-45deg of horizontal: |dy| <= |dx|
	return abs(dy) <= abs(dx)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ContributesToPointer reports whether a touch in this palm state
// contributes to pointer motion, click-finger finger count, and
// gestures (spec.md §4.7: palm.state != NONE implies it contributes to
// none of those). Software buttons and edge scrolling are unaffected,
// so this helper is deliberately not consulted by those two paths.
func ContributesToPointer(s touch.PalmState) bool {
	return s == touch.PalmNone
}
