package dispatcher

import (
	"testing"

	"touchpadd/internal/collaborators"
	"touchpadd/internal/device"
	"touchpadd/internal/evcode"
	"touchpadd/internal/palm"
	"touchpadd/internal/timer"
	"touchpadd/internal/touch"
)

// keyA is the Linux keycode of KEY_A, an ordinary non-modifier key.
const keyA = 30

type fakeOutput struct {
	motions []touch.Point
}

func (f *fakeOutput) Motion(dx, dy float64)        { f.motions = append(f.motions, touch.Point{X: int32(dx), Y: int32(dy)}) }
func (f *fakeOutput) Button(code uint16, pressed bool) {}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	return newTestDispatcherWithOutput(t, nil)
}

func newTestDispatcherWithOutput(t *testing.T, out Output) *Dispatcher {
	t.Helper()
	dev := &device.Device{
		Name:     "test touchpad",
		X:        device.AxisRange{Minimum: 0, Maximum: 5000, Resolution: 40},
		Y:        device.AxisRange{Minimum: 0, Maximum: 3000, Resolution: 40},
		NumSlots: 5,
		Quirks:   device.Quirks{IsClickpad: true},
	}
	return New(Config{
		Device:     dev,
		Filter:     collaborators.IdentityFilter{},
		Tap:        collaborators.NoTap{},
		Button:     collaborators.NoButton{},
		EdgeScroll: collaborators.NoEdgeScroll{},
		Gesture:    collaborators.NoGesture{},
		Output:     out,
		// 8mm side bands at 40 units/mm; a zero EdgeZone would put the
		// whole surface right of Right and classify every touch as edge palm.
		PalmEdge: palm.EdgeZone{Left: 320, Right: 4680},
		Logf:     func(string, ...any) {},
	})
}

func syn(d *Dispatcher, timeUS int64) {
	d.HandleEvent(evcode.Event{Time: timeUS, Type: evcode.EvSyn, Code: evcode.SynReport})
}

func abs(d *Dispatcher, timeUS int64, code uint16, value int32) {
	d.HandleEvent(evcode.Event{Time: timeUS, Type: evcode.EvAbs, Code: code, Value: value})
}

func key(d *Dispatcher, timeUS int64, code uint16, down bool) {
	v := int32(0)
	if down {
		v = 1
	}
	d.HandleEvent(evcode.Event{Time: timeUS, Type: evcode.EvKey, Code: code, Value: v})
}

// TestSingleFingerLifecycle exercises S1: a single slot opening,
// updating, and closing should bring nfingers_down to 1 then back to 0.
func TestSingleFingerLifecycle(t *testing.T) {
	d := newTestDispatcher(t)

	abs(d, 0, evcode.AbsMtSlot, 0)
	abs(d, 0, evcode.AbsMtTrackingID, 1)
	abs(d, 0, evcode.AbsMtPositionX, 1000)
	abs(d, 0, evcode.AbsMtPositionY, 1000)
	key(d, 0, evcode.BtnTouch, true)
	key(d, 0, evcode.BtnToolFinger, true)
	syn(d, 0)

	if d.NFingersDown() != 1 {
		t.Fatalf("NFingersDown() after begin = %d, want 1", d.NFingersDown())
	}

	abs(d, 12_000, evcode.AbsMtPositionX, 1010)
	syn(d, 12_000)
	if d.NFingersDown() != 1 {
		t.Fatalf("NFingersDown() after update = %d, want 1", d.NFingersDown())
	}

	abs(d, 24_000, evcode.AbsMtTrackingID, -1)
	key(d, 24_000, evcode.BtnTouch, false)
	key(d, 24_000, evcode.BtnToolFinger, false)
	syn(d, 24_000)

	if d.NFingersDown() != 0 {
		t.Fatalf("NFingersDown() after end = %d, want 0", d.NFingersDown())
	}
}

func TestSuspendEndsAllTouches(t *testing.T) {
	d := newTestDispatcher(t)

	abs(d, 0, evcode.AbsMtSlot, 0)
	abs(d, 0, evcode.AbsMtTrackingID, 1)
	abs(d, 0, evcode.AbsMtPositionX, 1000)
	abs(d, 0, evcode.AbsMtPositionY, 1000)
	key(d, 0, evcode.BtnTouch, true)
	key(d, 0, evcode.BtnToolFinger, true)
	syn(d, 0)

	if d.NFingersDown() != 1 {
		t.Fatalf("NFingersDown() before suspend = %d, want 1", d.NFingersDown())
	}

	d.Suspend(1)
	if !d.Suspended() {
		t.Fatal("Suspended() = false after Suspend")
	}
	if d.NFingersDown() != 0 {
		t.Fatalf("NFingersDown() after suspend = %d, want 0", d.NFingersDown())
	}
}

// TestSingleFingerMoveEmitsMotion exercises S1: a single-finger drag
// from (1000,1000) to (1050,1000) posts one motion event with the
// accelerated delta derived from (50, 0).
func TestSingleFingerMoveEmitsMotion(t *testing.T) {
	out := &fakeOutput{}
	d := newTestDispatcherWithOutput(t, out)

	abs(d, 0, evcode.AbsMtSlot, 0)
	abs(d, 0, evcode.AbsMtTrackingID, 5)
	abs(d, 0, evcode.AbsMtPositionX, 1000)
	abs(d, 0, evcode.AbsMtPositionY, 1000)
	key(d, 0, evcode.BtnTouch, true)
	key(d, 0, evcode.BtnToolFinger, true)
	syn(d, 0)

	if len(out.motions) != 0 {
		t.Fatalf("motions after begin = %v, want none", out.motions)
	}

	abs(d, 12_000, evcode.AbsMtPositionX, 1050)
	syn(d, 12_000)

	if len(out.motions) != 1 {
		t.Fatalf("motions after move = %v, want exactly one", out.motions)
	}
	if got := out.motions[0]; got.X != 50 || got.Y != 0 {
		t.Fatalf("motion delta = %+v, want (50, 0)", got)
	}

	abs(d, 24_000, evcode.AbsMtTrackingID, -1)
	key(d, 24_000, evcode.BtnTouch, false)
	key(d, 24_000, evcode.BtnToolFinger, false)
	syn(d, 24_000)

	if len(out.motions) != 1 {
		t.Fatalf("motions after end = %v, want still exactly one", out.motions)
	}
}

func TestKeyEventDrivesDWT(t *testing.T) {
	d := newTestDispatcher(t)
	d.KeyEvent(keyA, true, 0)
	if !d.dwt.Active() {
		t.Fatal("KeyEvent with a non-modifier key-down should activate DWT")
	}
}

// TestWireTimerSharesQueueWithCaller guards against WireTimer copying
// the timer.Queue by value: the DWT timeout must fire when the SAME
// queue instance the caller holds (and hands to internal/evsource) is
// expired, not some private copy the dispatcher keeps to itself.
func TestWireTimerSharesQueueWithCaller(t *testing.T) {
	d := newTestDispatcher(t)
	var q timer.Queue
	d.WireTimer(&q)

	d.KeyEvent(keyA, true, 0)
	if !d.dwt.Active() {
		t.Fatal("DWT should activate on first non-modifier key-down")
	}
	d.KeyEvent(keyA, false, 0)

	q.Expire(evcode.Now() + 300_000)

	if d.dwt.Active() {
		t.Fatal("DWT should have ended once its timer fired on the caller's queue")
	}
}
