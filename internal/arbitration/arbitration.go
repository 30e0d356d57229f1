// Package arbitration implements C9: device suspend/resume arbitration
// driven by lid state, tablet-mode, an external mouse, or user
// configuration.
package arbitration

// Trigger is one bit of the suspend_reason bitmask (spec.md §4.9).
type Trigger uint8

const (
	TriggerLid Trigger = 1 << iota
	TriggerTabletMode
	TriggerExternalMouse
	TriggerSendEvents
)

// Hooks are the side effects Suspend/Resume must run, supplied by the
// orchestrator so this package stays free of any dependency on
// internal/dispatcher.
type Hooks struct {
	// ReleaseButtons, ReleaseTaps, EndAllTouches, ReleaseFakeTouches and
	// RunEmptyFrame run once, only on the transition into suspend.
	ReleaseButtons     func()
	ReleaseTaps        func()
	EndAllTouches      func()
	ReleaseFakeTouches func()
	RunEmptyFrame      func()

	// DisableSource fully disables the evdev source. EnlargeTopButtons
	// is used instead, on devices with top software buttons, so the
	// trackpoint buttons embedded in that area keep working.
	DisableSource      func()
	EnlargeTopButtons  func(factor int)
	HasTopButtons      bool

	// ResyncFromCache resyncs every slot from libevdev's cached state;
	// called on a full resume (mask becomes zero).
	ResyncFromCache func()

	EnableSource func()
}

// Arbiter tracks the suspend_reason bitmask and runs the transition
// hooks described in spec.md §4.9.
type Arbiter struct {
	mask    Trigger
	Hooks   Hooks
}

// NewArbiter constructs an Arbiter with the given hooks.
func NewArbiter(hooks Hooks) *Arbiter {
	return &Arbiter{Hooks: hooks}
}

// Suspended reports whether any trigger currently holds the device
// suspended.
func (a *Arbiter) Suspended() bool {
	return a.mask != 0
}

// Suspend sets trigger's bit. If the device was not already suspended,
// it tears down per-touch state and disables (or, for top-software-
// button devices, shrinks the usable area of) the evdev source.
func (a *Arbiter) Suspend(trigger Trigger) {
	wasSuspended := a.Suspended()
	a.mask |= trigger
	if wasSuspended {
		return
	}

	if a.Hooks.ReleaseButtons != nil {
		a.Hooks.ReleaseButtons()
	}
	if a.Hooks.ReleaseTaps != nil {
		a.Hooks.ReleaseTaps()
	}
	if a.Hooks.EndAllTouches != nil {
		a.Hooks.EndAllTouches()
	}
	if a.Hooks.ReleaseFakeTouches != nil {
		a.Hooks.ReleaseFakeTouches()
	}
	if a.Hooks.RunEmptyFrame != nil {
		a.Hooks.RunEmptyFrame()
	}

	if a.Hooks.HasTopButtons {
		if a.Hooks.EnlargeTopButtons != nil {
			a.Hooks.EnlargeTopButtons(3)
		}
		return
	}
	if a.Hooks.DisableSource != nil {
		a.Hooks.DisableSource()
	}
}

// Resume clears trigger's bit. A full resume — every bit now clear —
// resyncs every slot from the cached evdev state and re-enables the
// source, except on top-software-button devices, whose source Suspend
// never disabled.
func (a *Arbiter) Resume(trigger Trigger) {
	a.mask &^= trigger
	if a.Suspended() {
		return
	}
	if a.Hooks.ResyncFromCache != nil {
		a.Hooks.ResyncFromCache()
	}
	if !a.Hooks.HasTopButtons && a.Hooks.EnableSource != nil {
		a.Hooks.EnableSource()
	}
}
