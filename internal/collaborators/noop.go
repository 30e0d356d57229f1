// Package collaborators provides minimal default implementations of
// the §6 interfaces (internal/dispatcher) the orchestrator drives but
// whose internals spec.md §1 explicitly scopes out: tap, button,
// edge-scroll, gesture, and pointer-acceleration filter. They exist so
// the pipeline has something to call end-to-end; a real compositor
// integration supplies its own.
package collaborators

import "touchpadd/internal/touch"

// IdentityFilter is a MotionFilter that passes deltas through
// unchanged, standing in for a real pointer-acceleration curve.
type IdentityFilter struct{}

func (IdentityFilter) Dispatch(raw touch.Point, _ int64) touch.Point         { return raw }
func (IdentityFilter) DispatchConstant(raw touch.Point, _ int64) touch.Point { return raw }
func (IdentityFilter) Restart(int64)                                        {}

// NoTap is a TapState that never suppresses motion and never produces a
// tap event; a real implementation runs the tap state machine spec.md
// §1 delegates away from this core.
type NoTap struct{}

func (NoTap) HandleState(int64) bool    { return false }
func (NoTap) PostProcessState(int64)    {}
func (NoTap) Suspend()                  {}
func (NoTap) Resume()                   {}
func (NoTap) RemoveAll()                {}

// NoButton is a ButtonState with no software-button areas and no
// clickfinger logic.
type NoButton struct{}

func (NoButton) HandleState(int64) bool                    { return false }
func (NoButton) PostEvents(int64)                           {}
func (NoButton) ReleaseAll()                                {}
func (NoButton) IsInsideSoftButtonArea(touch.Point) bool    { return false }
func (NoButton) TouchActive(int) bool                       { return false }

// NoEdgeScroll is an EdgeScroll that never recognizes a scroll.
type NoEdgeScroll struct{}

func (NoEdgeScroll) HandleState(int64)      {}
func (NoEdgeScroll) PostEvents(int64)       {}
func (NoEdgeScroll) StopEvents()            {}
func (NoEdgeScroll) TouchActive(int) bool   { return false }

// NoGesture is a Gesture that never recognizes a gesture.
type NoGesture struct{}

func (NoGesture) HandleState(int64)     {}
func (NoGesture) PostEvents(int64)      {}
func (NoGesture) Cancel()               {}
func (NoGesture) StopTwoFingerScroll()  {}

// StaticQuirks is a Quirks backed by an immutable map, standing in for
// quirks_fetch_for_device / quirks_get_* (spec.md §6). Real quirks come
// from udev/hwdb lookups, out of scope per spec.md §1.
type StaticQuirks struct {
	Strings map[string]string
	Uint32s map[string]uint32
	Ranges  map[string][2]int32
}

func (q StaticQuirks) GetString(attr string) (string, bool) {
	v, ok := q.Strings[attr]
	return v, ok
}

func (q StaticQuirks) GetUint32(attr string) (uint32, bool) {
	v, ok := q.Uint32s[attr]
	return v, ok
}

func (q StaticQuirks) GetRange(attr string) (int32, int32, bool) {
	v, ok := q.Ranges[attr]
	if !ok {
		return 0, 0, false
	}
	return v[0], v[1], true
}
