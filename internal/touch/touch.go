// Package touch holds the per-slot contact state machine: the Touch
// type, its lifecycle states, and the small set of fields every
// component (palm, thumb, hover, history, jump, hysteresis) attaches
// its own per-touch bookkeeping to.
//
// A Touch is a tagged variant in spirit — one state enum plus shared
// fields — rather than a union type, per the design note in spec.md §9:
// transitions are a small total function on (state, event) and invalid
// cases are logged, not panicked on.
package touch

// State is a slot's position in its lifecycle.
type State int

const (
	StateNone State = iota
	StateHovering
	StateBegin
	StateUpdate
	StateMaybeEnd
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateHovering:
		return "HOVERING"
	case StateBegin:
		return "BEGIN"
	case StateUpdate:
		return "UPDATE"
	case StateMaybeEnd:
		return "MAYBE_END"
	case StateEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// Active reports whether a touch in this state counts toward
// nfingers_down.
func (s State) Active() bool {
	return s == StateBegin || s == StateUpdate
}

// Point is an integer device-coordinate pair.
type Point struct {
	X, Y int32
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// PalmState is the palm classifier's sub-state for one touch (C7).
type PalmState int

const (
	PalmNone PalmState = iota
	PalmEdge
	PalmTyping
	PalmTrackpoint
	PalmToolPalm
	PalmPressure
	PalmTouchSize
	PalmArbitration
)

// Palm carries the palm classifier's memory for one touch.
type Palm struct {
	State PalmState
	First Point // point at entry to the current palm state
	Time  int64 // microseconds, time of entry
}

// ThumbState is the thumb classifier's sub-state for one touch (C8).
type ThumbState int

const (
	ThumbMaybe ThumbState = iota
	ThumbYes
	ThumbNo
)

// Thumb carries the thumb classifier's memory for one touch.
type Thumb struct {
	State          ThumbState
	Initial        Point
	FirstTouchTime int64 // microseconds
}

// Pinned records whether a touch has been frozen in place, e.g. while a
// physical click is held on a clickpad.
type Pinned struct {
	IsPinned bool
	Center   Point
}

// Speed tracks sustained single-finger speed for the thumb classifier's
// speed-based rule (C8 rule E).
type Speed struct {
	LastSpeed     float64 // mm/s
	ExceededCount int     // 0..10, saturating
}

// Hysteresis is the per-touch jitter-suppression state (C4).
type Hysteresis struct {
	Center         Point
	XMotionHistory uint8 // 3-bit shift register, wobble detector
}

// Jumps is the per-touch memory the jump detector (C5) needs across
// frames.
type Jumps struct {
	LastDeltaMM float64
}

// HistoryLength is the capacity of a Touch's motion-history ring
// buffer. Implementation choice per spec.md §3 ("≥4 required").
const HistoryLength = 16

// Sample is one entry in the motion-history ring buffer.
type Sample struct {
	Point Point
	Time  int64 // microseconds
}

// History is a fixed-size ring buffer of recent (point, time) samples.
// Index and Count are kept separate so Count can report how many valid
// entries exist without scanning for zero values.
type History struct {
	buf   [HistoryLength]Sample
	index int
	Count int // saturates at HistoryLength
}

// Reset clears the ring buffer, e.g. on begin, finger-count change, or
// a detected jump.
func (h *History) Reset() {
	*h = History{}
}

// Push advances the ring and writes a new sample at the front.
func (h *History) Push(s Sample) {
	h.index = (h.index + 1) % HistoryLength
	h.buf[h.index] = s
	if h.Count < HistoryLength {
		h.Count++
	}
}

// Offset returns the sample n steps back from the most recent (0 = most
// recent). n must be < Count.
func (h *History) Offset(n int) Sample {
	i := (h.index - n + HistoryLength) % HistoryLength
	return h.buf[i]
}

// RewriteTimestamps retroactively fixes every valid sample's timestamp
// after a controller-sleep jump (C6, spec.md §4.6): sample i steps back
// from the most recent becomes baseTime - tdelta - interval*i.
func (h *History) RewriteTimestamps(baseTime, tdelta, interval int64) {
	for i := 0; i < h.Count; i++ {
		idx := (h.index - i + HistoryLength) % HistoryLength
		h.buf[idx].Time = baseTime - tdelta - interval*int64(i)
	}
}

// Touch is one logical contact slot, indexed [0, ntouches).
type Touch struct {
	Slot int

	State State

	Point    Point
	Pressure int32
	Major    int32
	Minor    int32

	IsToolPalm bool

	Dirty    bool
	HasEnded bool
	WasDown  bool

	Time int64 // microseconds, last mutation timestamp

	History History

	Palm  Palm
	Thumb Thumb

	Pinned     Pinned
	Speed      Speed
	Hysteresis Hysteresis
	Jumps      Jumps
}

// Reset restores a touch to its just-born state, called when a new
// tracking ID opens it. The slot number is preserved.
func (t *Touch) Reset() {
	slot := t.Slot
	*t = Touch{Slot: slot}
}

// BeginFrom transitions NONE/HOVERING -> BEGIN, per spec.md §3's
// invariant that BEGIN is only reachable from those two states. Any
// other starting state is a library bug: the transition is refused and
// BeginFrom returns false.
func (t *Touch) BeginFrom(state State) bool {
	if state != StateNone && state != StateHovering {
		return false
	}
	t.State = StateBegin
	t.WasDown = true
	return true
}

// CommitEndOfFrame applies the post_process state commit of spec.md
// §4.11 step 4: BEGIN -> UPDATE, END -> NONE (if HasEnded) or HOVERING.
func (t *Touch) CommitEndOfFrame() {
	switch t.State {
	case StateBegin:
		t.State = StateUpdate
	case StateEnd:
		if t.HasEnded {
			t.State = StateNone
		} else {
			t.State = StateHovering
		}
	}
}
