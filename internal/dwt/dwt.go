// Package dwt implements C10: disable-while-typing, a paired-keyboard
// driven palm-suppression policy.
package dwt

import "touchpadd/internal/evcode"

// MaxPairedKeyboards is the pairing-policy cap from spec.md §4.10.
const MaxPairedKeyboards = 3

// InitialTimeoutUS and RefreshTimeoutUS are the two timer durations
// spec.md §4.10 names: 200ms to arm on first non-modifier key-down, 500ms
// to refresh thereafter (and to extend while any key is still held at
// the 200ms mark).
const (
	InitialTimeoutUS = 200_000
	RefreshTimeoutUS = 500_000
)

// TimerControl is how the DWT state machine asks its caller to manage
// the timeout. A real implementation backs this with internal/timer;
// tests can use a fake.
type TimerControl interface {
	Set(deadlineFromNowUS int64)
	Cancel()
}

// Hooks are the side effects entering/leaving DWT triggers.
type Hooks struct {
	StopTap      func()
	StopGestures func()
	StopScroll   func()
	ResumeTap    func()
}

// State is the disable-while-typing state machine (spec.md §4.10).
type State struct {
	active      bool
	modMask     uint64 // one bit per held modifier key
	keyMask     map[uint16]bool
	lastKeyTime int64 // timestamp of the most recent non-modifier key-down

	Timer TimerControl
	Hooks Hooks
}

// NewState constructs a ready-to-use DWT state machine.
func NewState(timer TimerControl, hooks Hooks) *State {
	return &State{
		keyMask: make(map[uint16]bool),
		Timer:   timer,
		Hooks:   hooks,
	}
}

// Active reports whether DWT is currently suppressing touches.
func (s *State) Active() bool {
	return s.active
}

// LastKeyTime returns the timestamp of the most recent non-modifier
// key-down seen, or zero if none has occurred yet.
func (s *State) LastKeyTime() int64 {
	return s.lastKeyTime
}

// KeyEvent feeds one key event from a paired keyboard. Modifier keys
// always set mod_mask regardless of their keycode; any other code at or
// above KEY_F1 is ignored entirely, per spec.md §4.10. timeUS is the
// event's own timestamp, recorded as LastKeyTime on key-down so
// internal/palm can tell whether a touch began strictly after it.
func (s *State) KeyEvent(code uint16, down bool, timeUS int64) {
	if evcode.IsModifier(code) {
		bit := uint64(1) << (code % 64)
		if down {
			s.modMask |= bit
		} else {
			s.modMask &^= bit
		}
		return
	}

	if evcode.IsFunctionRow(code) {
		return
	}

	if down {
		s.lastKeyTime = timeUS
		s.keyMask[code] = true
		if !s.active && s.modMask == 0 {
			s.begin()
			if s.Timer != nil {
				s.Timer.Set(InitialTimeoutUS)
			}
		} else if s.active && s.Timer != nil {
			s.Timer.Set(RefreshTimeoutUS)
		}
		return
	}

	delete(s.keyMask, code)
}

// Timeout is called when the armed timer expires. If any key is still
// held, DWT is extended by another RefreshTimeoutUS; otherwise it ends.
func (s *State) Timeout() {
	if len(s.keyMask) > 0 {
		if s.Timer != nil {
			s.Timer.Set(RefreshTimeoutUS)
		}
		return
	}
	s.end()
}

func (s *State) begin() {
	s.active = true
	if s.Hooks.StopTap != nil {
		s.Hooks.StopTap()
	}
	if s.Hooks.StopGestures != nil {
		s.Hooks.StopGestures()
	}
	if s.Hooks.StopScroll != nil {
		s.Hooks.StopScroll()
	}
}

func (s *State) end() {
	s.active = false
	if s.Timer != nil {
		s.Timer.Cancel()
	}
	if s.Hooks.ResumeTap != nil {
		s.Hooks.ResumeTap()
	}
}

// PairsWith implements the pairing policy of spec.md §4.10: a keyboard
// pairs with a touchpad iff the touchpad is internal, or the touchpad
// is external and the vendor/product IDs match.
func PairsWith(touchpadInternal bool, touchpadVendor, touchpadProduct, keyboardVendor, keyboardProduct uint16) bool {
	if touchpadInternal {
		return true
	}
	return touchpadVendor == keyboardVendor && touchpadProduct == keyboardProduct
}
