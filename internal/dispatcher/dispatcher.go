// Package dispatcher implements C11, the frame-pipeline orchestrator:
// the per-SYN_REPORT pre_process -> process -> post_events ->
// post_process pipeline of spec.md §4.11, plus C1 (frame decoding) and
// the collaborator interfaces of spec.md §6.
package dispatcher

import (
	"log"

	"touchpadd/internal/arbitration"
	"touchpadd/internal/device"
	"touchpadd/internal/dwt"
	"touchpadd/internal/evcode"
	"touchpadd/internal/fakefinger"
	"touchpadd/internal/hover"
	"touchpadd/internal/msctime"
	"touchpadd/internal/palm"
	"touchpadd/internal/thumb"
	"touchpadd/internal/timer"
	"touchpadd/internal/touch"
)

// Output is where the dispatcher's own high-level events go: plain
// cursor motion and physical-button clicks it resolves itself (as
// opposed to tap/scroll/gesture events, which the respective
// collaborator posts for itself via its own PostEvents method). This is
// the Go-side stand-in for spec.md §1's "outgoing event bus to
// clients," whose transport is explicitly out of scope here.
type Output interface {
	Motion(dx, dy float64)
	Button(code uint16, pressed bool)
}

// queuedAxis tracks which non-position axes were touched this frame,
// per spec.md §4.1's "queued |= OTHERAXIS" / "queued |= TIMESTAMP".
type queuedAxis uint8

const (
	queuedOtherAxis queuedAxis = 1 << iota
	queuedTimestamp
)

// Config is the per-device runtime configuration surface of spec.md
// §6's table, plus the collaborators the orchestrator drives.
type Config struct {
	Device *device.Device

	Filter     MotionFilter
	Tap        TapState
	Button     ButtonState
	EdgeScroll EdgeScroll
	Gesture    Gesture
	Output     Output

	PalmEdge palm.EdgeZone

	Logf func(format string, args ...any)
}

// Dispatcher is one physical touchpad's complete per-touch state
// machine and frame pipeline.
type Dispatcher struct {
	dev *device.Device

	touches []touch.Touch

	fake fakefinger.Tracker
	msc  msctime.Corrector
	arb  *arbitration.Arbiter
	dwt  *dwt.State
	tm   *timer.Queue

	hoverResolver hover.Resolver // nil => fake-finger strategy

	palmCfg  palm.Config
	thumbCfg thumb.Config

	filter     MotionFilter
	tap        TapState
	button     ButtonState
	edgeScroll EdgeScroll
	gesture    Gesture
	output     Output

	logf func(string, ...any)

	// frame decoding and per-frame working state; at the end of each
	// frame postProcess clears queued and physicalClickQueued and latches
	// oldNfingersDown.
	activeSlot          int
	queued              queuedAxis
	mscNow              int64
	nfingersDown        int
	oldNfingersDown     int
	trackpointActive    bool
	arbitrationActive   bool
	physicalClickQueued bool
	frameTime           int64

	hoveringInitialized bool

	trackpointForward func(code uint16, value int32)

	hysteresisEnabled   bool
	buttonSuppressed    bool
	physicalButtonsHeld int
	thumbZoneSince      []int64
}

// SetTrackpointForward wires the callback BTN_0/1/2 are remapped and
// forwarded to, per spec.md §4.1 ("forward to the paired trackpoint
// device as remapped BTN_LEFT/RIGHT/MIDDLE").
func (d *Dispatcher) SetTrackpointForward(fn func(code uint16, value int32)) {
	d.trackpointForward = fn
}

// New constructs a Dispatcher for one device, wiring in the
// out-of-scope collaborators the orchestrator drives per spec.md §6.
// New fills in no defaults: Filter, Tap, Button, EdgeScroll and Gesture
// must be non-nil (internal/collaborators has no-op implementations),
// and a nil one panics at runtime. Output may be nil, in which case
// motion and button events are dropped.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		dev:        cfg.Device,
		touches:    make([]touch.Touch, cfg.Device.NTouches()),
		filter:     cfg.Filter,
		tap:        cfg.Tap,
		button:     cfg.Button,
		edgeScroll: cfg.EdgeScroll,
		gesture:    cfg.Gesture,
		output:     cfg.Output,
		logf:       cfg.Logf,
	}
	if d.logf == nil {
		d.logf = log.Printf
	}
	for i := range d.touches {
		d.touches[i].Slot = i
	}
	d.thumbZoneSince = make([]int64, len(d.touches))

	switch cfg.Device.HoverStrategy {
	case device.HoverStrategyPressure:
		d.hoverResolver = hover.Pressure{Thresholds: cfg.Device.Pressure}
	case device.HoverStrategySize:
		if cfg.Device.NumSlots >= 5 {
			d.hoverResolver = hover.Size{Thresholds: cfg.Device.Size}
		}
	}

	upper, lower := thumb.LinesFromHeight(cfg.Device.Y.Minimum, cfg.Device.Y.Maximum)
	d.thumbCfg = thumb.Config{
		UpperLineY:             upper,
		LowerLineY:             lower,
		PressureThreshold:      cfg.Device.Quirks.ThumbPressureThreshold,
		SizeThreshold:          cfg.Device.Quirks.ThumbSizeThreshold,
		ScrollMethodIsEdge:     !cfg.Device.Quirks.ScrollMethodTwoFinger,
		TwoFingerScrollEnabled: cfg.Device.Quirks.ScrollMethodTwoFinger,
	}

	d.palmCfg = palm.Config{
		PressureThreshold: cfg.Device.Quirks.PalmPressureThreshold,
		SizeThreshold:     cfg.Device.Quirks.PalmSizeThreshold,
		Edge:              cfg.PalmEdge,
		IsInsideSoftButtonArea: func(p touch.Point) bool {
			return d.button.IsInsideSoftButtonArea(p)
		},
	}

	d.arb = arbitration.NewArbiter(arbitration.Hooks{
		HasTopButtons:      cfg.Device.Quirks.HasTopSoftwareButtons,
		ReleaseButtons:     d.button.ReleaseAll,
		ReleaseTaps:        d.tap.RemoveAll,
		EndAllTouches:      d.endAllTouches,
		ReleaseFakeTouches: func() { d.fake = fakefinger.Tracker{} },
		RunEmptyFrame:      func() { d.runPipeline() },
	})

	d.dwt = dwt.NewState(nil, dwt.Hooks{
		StopTap:      d.tap.Suspend,
		StopGestures: d.gesture.Cancel,
		StopScroll:   d.edgeScroll.StopEvents,
		ResumeTap:    d.tap.Resume,
	})
	// DWT's own timer is wired up by the caller via WireTimer once the
	// event loop's timer queue exists, mirroring timer_init being
	// called after the device (and its loop) are constructed.
	return d
}

// WireTimer attaches the shared timer queue to this dispatcher's DWT
// state machine, per spec.md §4.10's refreshable timeout.
func (d *Dispatcher) WireTimer(q *timer.Queue) {
	d.tm = q
	t := d.tm.Init("dwt", func(int64) { d.dwt.Timeout() })
	d.dwt = dwt.NewState(dwtTimerAdapter{q: d.tm, t: t}, d.dwt.Hooks)
}

type dwtTimerAdapter struct {
	q *timer.Queue
	t *timer.Timer
}

func (a dwtTimerAdapter) Set(deadlineFromNowUS int64) { a.q.Set(a.t, evcode.Now()+deadlineFromNowUS) }
func (a dwtTimerAdapter) Cancel()                     { a.q.Cancel(a.t) }

// Device returns the dispatcher's device configuration.
func (d *Dispatcher) Device() *device.Device { return d.dev }

// NFingersDown returns the current count of BEGIN/UPDATE touches,
// spec.md §8 property 1's invariant subject.
func (d *Dispatcher) NFingersDown() int { return d.nfingersDown }

// Suspend/Resume expose the arbitration arbiter (C9) to callers —
// lid/tablet-mode/external-mouse/sendevents listeners.
func (d *Dispatcher) Suspend(trigger arbitration.Trigger) { d.arb.Suspend(trigger) }
func (d *Dispatcher) Resume(trigger arbitration.Trigger)  { d.arb.Resume(trigger) }
func (d *Dispatcher) Suspended() bool                     { return d.arb.Suspended() }

// KeyEvent feeds a paired-keyboard key event into DWT (C10). timeUS is
// the event's own timestamp, used to decide whether a touch began
// strictly after the last keypress (spec.md §4.7 rule 3's release
// condition).
func (d *Dispatcher) KeyEvent(code uint16, down bool, timeUS int64) {
	d.dwt.KeyEvent(code, down, timeUS)
}

// SetTrackpointActive records whether a paired trackpoint is currently
// being used, consumed by the palm classifier's trackpoint rule.
func (d *Dispatcher) SetTrackpointActive(active bool) {
	d.trackpointActive = active
}

// SetArbitrationPending records whether an external arbitration command
// (typically a pen digitizer) is forcing palm classification.
func (d *Dispatcher) SetArbitrationPending(pending bool) {
	d.arbitrationActive = pending
}

func (d *Dispatcher) touchAt(slot int) *touch.Touch {
	if slot < 0 || slot >= len(d.touches) {
		return nil
	}
	return &d.touches[slot]
}

func (d *Dispatcher) endAllTouches() {
	for i := range d.touches {
		t := &d.touches[i]
		if t.State.Active() || t.State == touch.StateHovering || t.State == touch.StateMaybeEnd {
			t.HasEnded = true
			t.State = touch.StateEnd
		}
	}
}

// Ev is an alias for evcode.Event, the raw tuple HandleEvent consumes.
type Ev = evcode.Event
