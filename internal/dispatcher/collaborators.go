package dispatcher

import "touchpadd/internal/touch"

// The interfaces below are the collaborator surface of spec.md §6:
// components this dispatcher drives but whose internals are explicitly
// out of scope (spec.md §1). Each method name mirrors the C-shaped
// function the spec names, translated to a method on the interface a
// real tap/button/scroll/gesture implementation would satisfy.

// MotionFilter is filter_dispatch / filter_dispatch_constant /
// filter_restart.
type MotionFilter interface {
	Dispatch(raw touch.Point, nowUS int64) touch.Point
	DispatchConstant(raw touch.Point, nowUS int64) touch.Point
	Restart(nowUS int64)
}

// TapState is the tap state machine consumed via handle-state /
// post-events / cancel hooks.
type TapState interface {
	HandleState(nowUS int64) (suppressMotion bool)
	PostProcessState(nowUS int64)
	Suspend()
	Resume()
	RemoveAll()
}

// ButtonState is the physical/clickfinger button state machine.
type ButtonState interface {
	HandleState(nowUS int64) (suppressMotion bool)
	PostEvents(nowUS int64)
	ReleaseAll()
	IsInsideSoftButtonArea(p touch.Point) bool
	TouchActive(slot int) bool
}

// EdgeScroll is the edge-scroll recognizer.
type EdgeScroll interface {
	HandleState(nowUS int64)
	PostEvents(nowUS int64)
	StopEvents()
	TouchActive(slot int) bool
}

// Gesture is the two-finger-scroll/pinch/swipe gesture recognizer.
type Gesture interface {
	HandleState(nowUS int64)
	PostEvents(nowUS int64)
	Cancel()
	StopTwoFingerScroll()
}

// Quirks is the read-only per-device configuration source
// (quirks_fetch_for_device / quirks_get_*). The dispatcher only ever
// reads it at construction time.
type Quirks interface {
	GetString(attr string) (string, bool)
	GetUint32(attr string) (uint32, bool)
	GetRange(attr string) (lo, hi int32, ok bool)
}
