package dispatcher

import (
	"math"

	"touchpadd/internal/device"
	"touchpadd/internal/fakefinger"
	"touchpadd/internal/history"
	"touchpadd/internal/jump"
	"touchpadd/internal/msctime"
	"touchpadd/internal/palm"
	"touchpadd/internal/thumb"
	"touchpadd/internal/touch"
)

// fastSpeedThresholdMMPerSec is the single-finger speed above which
// Speed.ExceededCount climbs toward the thumb classifier's
// sustained-speed rule E threshold (spec.md §4.8).
const fastSpeedThresholdMMPerSec = 150.0

// runPipeline is C11: the fixed per-frame pipeline of spec.md §4.11,
// run once per SYN_REPORT.
func (d *Dispatcher) runPipeline() {
	d.preProcess()
	d.process()
	d.postEvents()
	d.postProcess()
}

// --- 1. pre_process ---

func (d *Dispatcher) preProcess() {
	if d.queued&queuedTimestamp != 0 {
		if rw := d.msc.Observe(d.mscNow, d.frameTime); rw != nil {
			d.applyMSCRewrite(rw)
		}
	}

	d.resolveHover()

	for i := range d.touches {
		t := &d.touches[i]
		if t.State != touch.StateMaybeEnd {
			continue
		}
		if d.resurrectSynaptics(t) {
			continue
		}
		t.State = touch.StateEnd
		if t.History.Count > 0 {
			t.Point = t.History.Offset(0).Point
		}
	}
}

func (d *Dispatcher) applyMSCRewrite(rw *msctime.Rewrite) {
	for i := range d.touches {
		t := &d.touches[i]
		t.History.RewriteTimestamps(t.Time, rw.TimestampDeltaUS, rw.Interval)
	}
	d.filter.Restart(rw.RestartFilterAtTime)
	d.logf("[dispatcher] msc timestamp jump corrected, interval=%dus delta=%dus", rw.Interval, rw.TimestampDeltaUS)
}

// resurrectSynaptics implements the Synaptics touch-2 resurrection
// quirk: when at least 3 fake fingers are asserted and a slot sits in
// MAYBE_END, the kernel's own slot bookkeeping is known to undercount;
// resurrect the touch to UPDATE instead of finalizing it to END.
func (d *Dispatcher) resurrectSynaptics(t *touch.Touch) bool {
	count := d.fake.Count()
	atLeast3 := count == fakefinger.Overflow || int(count) >= 3
	if !atLeast3 {
		return false
	}
	t.State = touch.StateUpdate
	t.HasEnded = false
	return true
}

func (d *Dispatcher) resolveHover() {
	if d.hoverResolver != nil {
		for i := range d.touches {
			t := &d.touches[i]
			if !t.Dirty {
				continue
			}
			switch t.State {
			case touch.StateHovering:
				if d.hoverResolver.ShouldBegin(t.Pressure, t.Major, t.Minor) {
					t.BeginFrom(t.State)
					t.History.Reset()
				}
			case touch.StateBegin, touch.StateUpdate:
				if d.hoverResolver.ShouldEnd(t.Pressure, t.Major, t.Minor) {
					t.State = touch.StateMaybeEnd
				}
			}
		}
		return
	}

	target := int(d.fake.Count())
	if d.fake.Count() == fakefinger.Overflow {
		target = len(d.touches)
	}

	for i := 0; i < len(d.touches) && d.countActive() < target; i++ {
		t := &d.touches[i]
		switch t.State {
		case touch.StateHovering:
			t.BeginFrom(t.State)
			t.History.Reset()
		case touch.StateNone:
			t.State = touch.StateHovering
			t.BeginFrom(touch.StateHovering)
			t.History.Reset()
		}
	}
	for i := len(d.touches) - 1; i >= 0 && d.countActive() > target; i-- {
		t := &d.touches[i]
		if t.State.Active() {
			t.State = touch.StateMaybeEnd
		}
	}
}

// --- 2. process ---

func (d *Dispatcher) process() {
	d.copyFakeSlotCoordinates()

	newNFingers := d.countActive()
	if newNFingers != d.oldNfingersDown {
		d.resetAllHistories()
	}

	var beganAny bool
	var newFinger *touch.Touch

	for i := range d.touches {
		t := &d.touches[i]
		if !t.Dirty {
			continue
		}

		wasBegin := t.State == touch.StateBegin
		if wasBegin {
			beganAny = true
		}

		d.runJump(t)
		d.runThumb(t, wasBegin)
		d.runPalm(t, wasBegin)
		d.runWobbleAndHysteresis(t, newNFingers)
		t.History.Push(touch.Sample{Point: t.Point, Time: t.Time})
		d.updateSpeed(t)
		d.unpinCheck(t)

		if wasBegin && newNFingers == 2 {
			newFinger = t
		}
	}

	d.applyThumbRuleC()

	if newNFingers == 2 && newFinger != nil {
		if fast := d.findFastFinger(newFinger); fast != nil {
			delta := thumb.SpeedThumbZoneMM{
				X: d.dev.X.UnitsToMM(float64(newFinger.Point.X - fast.Point.X)),
				Y: d.dev.Y.UnitsToMM(float64(newFinger.Point.Y - fast.Point.Y)),
			}
			thumb.ApplyRuleE(fast, newFinger, delta, d.thumbCfg, thumb.DefaultSpeedThumbZone)
		}
	}

	if beganAny {
		d.filter.Restart(d.frameTime)
	}

	d.buttonSuppressed = d.button.HandleState(d.frameTime)
	d.edgeScroll.HandleState(d.frameTime)

	if d.physicalClickQueued && d.dev.Quirks.IsClickpad {
		d.pinAllFingers()
	}

	d.dispatchMotion(newNFingers)

	d.nfingersDown = newNFingers
}

// dispatchMotion posts a single accelerated pointer-motion event when
// exactly one touch is down and that touch is neither a palm nor a
// thumb, per spec.md §4.7/§4.8's "ceases to contribute to pointer
// motion" rule. Two or more fingers are a gesture's business
// (internal/dispatcher never itself emits motion for those), not the
// dispatcher's.
func (d *Dispatcher) dispatchMotion(nfingersDown int) {
	if nfingersDown != 1 {
		return
	}
	var t *touch.Touch
	for i := range d.touches {
		if d.touches[i].State.Active() {
			t = &d.touches[i]
			break
		}
	}
	if t == nil || !palm.ContributesToPointer(t.Palm.State) || t.Thumb.State == touch.ThumbYes {
		return
	}
	if t.History.Count < 2 {
		return
	}
	prev := t.History.Offset(1)
	raw := touch.Point{X: t.Point.X - prev.Point.X, Y: t.Point.Y - prev.Point.Y}
	if raw.X == 0 && raw.Y == 0 {
		return
	}
	accel := d.filter.Dispatch(raw, d.frameTime)
	if d.output != nil {
		d.output.Motion(float64(accel.X), float64(accel.Y))
	}
}

func (d *Dispatcher) copyFakeSlotCoordinates() {
	count := d.fake.Count()
	if count == fakefinger.Overflow || int(count) <= d.dev.NumSlots || d.dev.NumSlots == 0 {
		return
	}
	var top *touch.Touch
	for i := 0; i < d.dev.NumSlots && i < len(d.touches); i++ {
		t := &d.touches[i]
		if t.State.Active() || t.State == touch.StateHovering {
			if top == nil || t.Point.Y < top.Point.Y {
				top = t
			}
		}
	}
	if top == nil {
		return
	}
	for i := d.dev.NumSlots; i < len(d.touches); i++ {
		t := &d.touches[i]
		if t.State != touch.StateNone {
			t.Point = top.Point
			t.Dirty = true
		}
	}
}

func (d *Dispatcher) resetAllHistories() {
	for i := range d.touches {
		d.touches[i].History.Reset()
	}
}

func (d *Dispatcher) runJump(t *touch.Touch) {
	if t.History.Count == 0 {
		return
	}
	last := t.History.Offset(0)
	dtUS := t.Time - last.Time
	dxMM := d.dev.X.UnitsToMM(float64(t.Point.X - last.Point.X))
	dyMM := d.dev.Y.UnitsToMM(float64(t.Point.Y - last.Point.Y))

	deltaMM, isJump := jump.Detect(dxMM, dyMM, dtUS, t.Jumps.LastDeltaMM, d.dev.Quirks.IsWacom)
	if isJump {
		t.History.Reset()
		d.logf("[dispatcher] jump detected on slot %d: %.1fmm", t.Slot, deltaMM)
		return
	}
	if dtUS > 0 && dtUS <= jump.MaxRegularIntervalUS {
		t.Jumps.LastDeltaMM = deltaMM
	}
}

func (d *Dispatcher) runThumb(t *touch.Touch, atBegin bool) {
	if !d.thumbActive() {
		return
	}
	if atBegin {
		t.Thumb.Initial = t.Point
		t.Thumb.FirstTouchTime = t.Time
	}

	if t.Point.Y < d.thumbCfg.LowerLineY {
		d.thumbZoneSince[t.Slot] = 0
	} else if d.thumbZoneSince[t.Slot] == 0 {
		d.thumbZoneSince[t.Slot] = t.Time
	}

	dxMM := d.dev.X.UnitsToMM(float64(t.Point.X - t.Thumb.Initial.X))
	dyMM := d.dev.Y.UnitsToMM(float64(t.Point.Y - t.Thumb.Initial.Y))
	mmMoved := hypot(dxMM, dyMM)

	thumb.Classify(t, d.thumbCfg, atBegin, mmMoved, t.Time, d.thumbZoneSince[t.Slot])
}

func (d *Dispatcher) thumbActive() bool {
	return d.dev.Quirks.ThumbDetectThumbs && d.dev.Quirks.IsClickpad &&
		d.dev.PhysicalHeightMM >= thumb.MinPhysicalHeightMM
}

func (d *Dispatcher) applyThumbRuleC() {
	var active []*touch.Touch
	for i := range d.touches {
		t := &d.touches[i]
		if t.State.Active() && t.Thumb.State == touch.ThumbMaybe {
			active = append(active, t)
		}
	}
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			thumb.ApplyRuleC(active[i], active[j], d.thumbCfg)
		}
	}
}

func (d *Dispatcher) findFastFinger(exclude *touch.Touch) *touch.Touch {
	for i := range d.touches {
		t := &d.touches[i]
		if t == exclude {
			continue
		}
		if t.State.Active() && t.Speed.ExceededCount > thumb.SpeedThumbExceededThreshold {
			return t
		}
	}
	return nil
}

func (d *Dispatcher) runPalm(t *touch.Touch, atBegin bool) {
	in := palm.Inputs{
		ArbitrationActive:         d.arbitrationActive,
		KeyboardActive:            d.dwt.Active(),
		TrackpointActive:          d.trackpointActive,
		AnotherActiveNonPalmTouch: d.anotherActiveNonPalm(t),
		LastKeyTime:               d.dwt.LastKeyTime(),
		Now:                       t.Time,
	}
	palm.Classify(t, d.palmCfg, in, atBegin)
}

func (d *Dispatcher) anotherActiveNonPalm(exclude *touch.Touch) bool {
	for i := range d.touches {
		t := &d.touches[i]
		if t == exclude {
			continue
		}
		if t.State.Active() && t.Palm.State == touch.PalmNone {
			return true
		}
	}
	return false
}

func (d *Dispatcher) runWobbleAndHysteresis(t *touch.Touch, nfingersDown int) {
	if !d.hysteresisEnabled && nfingersDown == 1 && t.History.Count > 0 {
		last := t.History.Offset(0)
		dx := t.Point.X - last.Point.X
		dy := t.Point.Y - last.Point.Y
		dt := t.Time - last.Time
		if history.Wobble(&t.Hysteresis.XMotionHistory, dx, dy, dt) {
			d.hysteresisEnabled = true
			t.Hysteresis.Center = t.Point
		}
	}
	if d.hysteresisEnabled {
		mx, my := device.HysteresisMargin(d.dev.X, d.dev.Y)
		t.Point = history.Apply(&t.Hysteresis, history.Margin{X: mx, Y: my}, t.Point)
	}
}

func (d *Dispatcher) updateSpeed(t *touch.Touch) {
	// Runs right after History.Push, so Offset(0) is the current sample
	// and Offset(1) the previous one.
	if t.History.Count < 2 {
		return
	}
	last := t.History.Offset(1)
	dtUS := t.Time - last.Time
	if dtUS <= 0 {
		return
	}
	dxMM := d.dev.X.UnitsToMM(float64(t.Point.X - last.Point.X))
	dyMM := d.dev.Y.UnitsToMM(float64(t.Point.Y - last.Point.Y))
	speed := hypot(dxMM, dyMM) / (float64(dtUS) / 1_000_000)
	t.Speed.LastSpeed = speed

	if speed > fastSpeedThresholdMMPerSec {
		if t.Speed.ExceededCount < thumb.MaxExceededCount {
			t.Speed.ExceededCount++
		}
	} else if t.Speed.ExceededCount > 0 {
		t.Speed.ExceededCount--
	}
}

func (d *Dispatcher) unpinCheck(t *touch.Touch) {
	if t.Pinned.IsPinned && d.physicalButtonsHeld == 0 {
		t.Pinned.IsPinned = false
	}
}

func (d *Dispatcher) pinAllFingers() {
	for i := range d.touches {
		t := &d.touches[i]
		if t.State.Active() {
			t.Pinned = touch.Pinned{IsPinned: true, Center: t.Point}
		}
	}
}

func (d *Dispatcher) countActive() int {
	n := 0
	for i := range d.touches {
		if d.touches[i].State.Active() {
			n++
		}
	}
	return n
}

// --- 3. post_events ---

func (d *Dispatcher) postEvents() {
	if d.arb.Suspended() {
		d.button.PostEvents(d.frameTime)
		return
	}

	tapSuppressed := d.tap.HandleState(d.frameTime)
	d.tap.PostProcessState(d.frameTime)

	if tapSuppressed || d.buttonSuppressed || d.trackpointActive || d.dwt.Active() {
		d.edgeScroll.StopEvents()
		d.gesture.Cancel()
		return
	}

	if d.anyEdgeScrollActive() {
		d.edgeScroll.PostEvents(d.frameTime)
		return
	}
	d.gesture.PostEvents(d.frameTime)
}

func (d *Dispatcher) anyEdgeScrollActive() bool {
	for i := range d.touches {
		if d.touches[i].State.Active() && d.edgeScroll.TouchActive(i) {
			return true
		}
	}
	return false
}

// --- 4. post_process ---

func (d *Dispatcher) postProcess() {
	for i := range d.touches {
		t := &d.touches[i]
		t.CommitEndOfFrame()
		t.Dirty = false
	}
	d.oldNfingersDown = d.nfingersDown
	d.queued = 0
	d.physicalClickQueued = false
}

func hypot(a, b float64) float64 {
	return math.Hypot(a, b)
}
