package dispatcher

import (
	"touchpadd/internal/evcode"
	"touchpadd/internal/touch"
)

// HandleEvent implements C1: it consumes one raw (type, code, value,
// time) tuple, mutating the current frame's per-touch and per-device
// state, and runs the full frame pipeline (§4.11) when it sees
// SYN_REPORT.
func (d *Dispatcher) HandleEvent(ev evcode.Event) {
	d.frameTime = ev.Time

	switch ev.Type {
	case evcode.EvAbs:
		d.handleAbs(ev)
	case evcode.EvKey:
		d.handleKey(ev)
	case evcode.EvMsc:
		if ev.Code == evcode.MscTimestamp {
			d.mscNow = int64(ev.Value)
			d.queued |= queuedTimestamp
		}
	case evcode.EvSyn:
		if ev.Code == evcode.SynReport {
			d.runPipeline()
		}
	}
}

func (d *Dispatcher) handleAbs(ev evcode.Event) {
	switch ev.Code {
	case evcode.AbsMtSlot:
		slot := int(ev.Value)
		if slot >= len(d.touches) {
			slot = len(d.touches) - 1
		}
		d.activeSlot = slot
		return
	}

	t := d.touchAt(d.activeSlot)
	if t == nil {
		return
	}

	switch ev.Code {
	case evcode.AbsMtPositionX, evcode.AbsX:
		t.Point.X = d.rotateX(ev.Value)
		t.Dirty = true
	case evcode.AbsMtPositionY, evcode.AbsY:
		t.Point.Y = d.rotateY(ev.Value)
		t.Dirty = true
	case evcode.AbsMtTrackingID:
		if ev.Value >= 0 {
			t.Reset()
			t.Slot = d.activeSlot
			t.State = touch.StateHovering
			t.Time = ev.Time
		} else {
			t.HasEnded = true
			if t.State.Active() || t.State == touch.StateHovering {
				t.State = touch.StateMaybeEnd
			}
		}
		t.Dirty = true
	case evcode.AbsMtPressure, evcode.AbsPressure:
		t.Pressure = ev.Value
		t.Dirty = true
		d.queued |= queuedOtherAxis
	case evcode.AbsMtTouchMajor:
		t.Major = ev.Value
		t.Dirty = true
		d.queued |= queuedOtherAxis
	case evcode.AbsMtTouchMinor:
		t.Minor = ev.Value
		t.Dirty = true
		d.queued |= queuedOtherAxis
	case evcode.AbsMtToolType:
		t.IsToolPalm = ev.Value == evcode.MtToolPalm
		t.Dirty = true
		d.queued |= queuedOtherAxis
	}

	if t.Time < ev.Time {
		t.Time = ev.Time
	}
}

// rotateX/rotateY apply the left-handed axis rotation of spec.md §4.1:
// max - (value - min), applied to both axes iff left_handed is enabled
// and configured to rotate (reversible devices, e.g. Wacom) rather than
// a plain button swap.
func (d *Dispatcher) rotateX(v int32) int32 {
	if !d.dev.LeftHanded.Enabled || !d.dev.LeftHanded.Rotate {
		return v
	}
	return d.dev.X.Maximum - (v - d.dev.X.Minimum)
}

func (d *Dispatcher) rotateY(v int32) int32 {
	if !d.dev.LeftHanded.Enabled || !d.dev.LeftHanded.Rotate {
		return v
	}
	return d.dev.Y.Maximum - (v - d.dev.Y.Minimum)
}

func (d *Dispatcher) handleKey(ev evcode.Event) {
	down := ev.Value != 0

	switch ev.Code {
	case evcode.BtnLeft, evcode.BtnMiddle, evcode.BtnRight:
		if down {
			d.physicalClickQueued = true
			d.physicalButtonsHeld++
		} else if d.physicalButtonsHeld > 0 {
			d.physicalButtonsHeld--
		}
		if d.output != nil {
			d.output.Button(ev.Code, down)
		}

	case evcode.BtnTouch:
		d.fake.SetTouch(down)
		if down && len(d.touches) > 0 && d.touches[0].State == touch.StateNone {
			d.touches[0].State = touch.StateHovering
			d.touches[0].Dirty = true
		}
	case evcode.BtnToolFinger:
		d.fake.SetFinger(down)
	case evcode.BtnToolDoubletap:
		d.fake.SetDouble(down)
	case evcode.BtnToolTripletap:
		d.fake.SetTriple(down)
	case evcode.BtnToolQuadtap:
		d.fake.SetQuad(down)
	case evcode.BtnToolQuinttap:
		d.fake.SetQuint(down)

	case evcode.Btn0, evcode.Btn1, evcode.Btn2:
		if d.trackpointForward != nil {
			d.trackpointForward(remapTrackpointButton(ev.Code), ev.Value)
		}
	}

	if d.fake.MultipleAsserted() {
		d.logf("[dispatcher] kernel bug: multiple BTN_TOOL_* bits asserted simultaneously")
	}
}

// remapTrackpointButton maps a touchpad's BTN_0/1/2 (physically wired
// to a paired trackpoint's buttons) onto BTN_LEFT/RIGHT/MIDDLE, per
// spec.md §4.1.
func remapTrackpointButton(code uint16) uint16 {
	switch code {
	case evcode.Btn0:
		return evcode.BtnLeft
	case evcode.Btn1:
		return evcode.BtnRight
	case evcode.Btn2:
		return evcode.BtnMiddle
	default:
		return code
	}
}
