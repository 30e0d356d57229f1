package thumb

import (
	"testing"

	"touchpadd/internal/touch"
)

func baseConfig() Config {
	return Config{
		UpperLineY:        850,
		LowerLineY:        920,
		PressureThreshold: 100,
		SizeThreshold:      60,
	}
}

func TestLinesFromHeight(t *testing.T) {
	upper, lower := LinesFromHeight(0, 1000)
	if upper != 850 {
		t.Errorf("upper = %d, want 850", upper)
	}
	if lower != 920 {
		t.Errorf("lower = %d, want 920", lower)
	}
}

func TestClassifyRuleABelowUpperLineAtBegin(t *testing.T) {
	cfg := baseConfig()
	tp := &touch.Touch{Point: touch.Point{Y: 500}}
	Classify(tp, cfg, true, 0, 0, 0)
	if tp.Thumb.State != touch.ThumbNo {
		t.Fatalf("Thumb.State = %v, want ThumbNo (rule A)", tp.Thumb.State)
	}
}

func TestClassifyRuleBExcessiveMovement(t *testing.T) {
	cfg := baseConfig()
	tp := &touch.Touch{Point: touch.Point{Y: 950}}
	Classify(tp, cfg, false, MaxMoveMM+1, 0, 0)
	if tp.Thumb.State != touch.ThumbNo {
		t.Fatalf("Thumb.State = %v, want ThumbNo (rule B)", tp.Thumb.State)
	}
}

func TestClassifyRuleDPressurePromotesYes(t *testing.T) {
	cfg := baseConfig()
	tp := &touch.Touch{Point: touch.Point{Y: 950}, Pressure: 200}
	Classify(tp, cfg, false, 1, 0, 0)
	if tp.Thumb.State != touch.ThumbYes {
		t.Fatalf("Thumb.State = %v, want ThumbYes", tp.Thumb.State)
	}
}

func TestClassifyRuleDElongatedTouchPromotesYes(t *testing.T) {
	cfg := baseConfig()
	tp := &touch.Touch{Point: touch.Point{Y: 950}, Major: 70, Minor: 10}
	Classify(tp, cfg, false, 1, 0, 0)
	if tp.Thumb.State != touch.ThumbYes {
		t.Fatalf("Thumb.State = %v, want ThumbYes", tp.Thumb.State)
	}
}

func TestClassifyRuleDTimeoutInLowerZone(t *testing.T) {
	cfg := baseConfig()
	cfg.ScrollMethodIsEdge = false
	tp := &touch.Touch{Point: touch.Point{Y: 950}}
	Classify(tp, cfg, false, 1, 400_000, 0)
	if tp.Thumb.State != touch.ThumbYes {
		t.Fatalf("Thumb.State = %v, want ThumbYes after timeout in lower zone", tp.Thumb.State)
	}
}

func TestClassifyNeverRevertsOutOfMaybe(t *testing.T) {
	cfg := baseConfig()
	tp := &touch.Touch{Point: touch.Point{Y: 950}}
	tp.Thumb.State = touch.ThumbNo
	Classify(tp, cfg, false, 1, 0, 0)
	if tp.Thumb.State != touch.ThumbNo {
		t.Fatalf("Thumb.State changed from ThumbNo, want unchanged")
	}
}

func TestApplyRuleCBothBelowUpperLine(t *testing.T) {
	cfg := baseConfig()
	a := &touch.Touch{Point: touch.Point{Y: 900}}
	b := &touch.Touch{Point: touch.Point{Y: 900}}
	ApplyRuleC(a, b, cfg)
	if a.Thumb.State != touch.ThumbNo || b.Thumb.State != touch.ThumbNo {
		t.Fatalf("rule C should mark both ThumbNo, got a=%v b=%v", a.Thumb.State, b.Thumb.State)
	}
}

func TestApplyRuleCOneAboveUpperLine(t *testing.T) {
	cfg := baseConfig()
	a := &touch.Touch{Point: touch.Point{Y: 100}}
	b := &touch.Touch{Point: touch.Point{Y: 900}}
	ApplyRuleC(a, b, cfg)
	if a.Thumb.State != touch.ThumbMaybe || b.Thumb.State != touch.ThumbMaybe {
		t.Fatalf("rule C should not fire when one touch is above the upper line")
	}
}

func TestApplyRuleESpeedBasedPromotion(t *testing.T) {
	cfg := baseConfig()
	fast := &touch.Touch{Speed: touch.Speed{ExceededCount: SpeedThumbExceededThreshold + 1}}
	newFinger := &touch.Touch{}
	ApplyRuleE(fast, newFinger, SpeedThumbZoneMM{X: 50, Y: 50}, cfg, DefaultSpeedThumbZone)
	if newFinger.Thumb.State != touch.ThumbYes {
		t.Fatalf("Thumb.State = %v, want ThumbYes (outside exemption zone)", newFinger.Thumb.State)
	}
}

func TestApplyRuleEExemptWithinZoneAndTwoFingerScroll(t *testing.T) {
	cfg := baseConfig()
	cfg.TwoFingerScrollEnabled = true
	fast := &touch.Touch{Speed: touch.Speed{ExceededCount: SpeedThumbExceededThreshold + 1}}
	newFinger := &touch.Touch{}
	ApplyRuleE(fast, newFinger, SpeedThumbZoneMM{X: 5, Y: 5}, cfg, DefaultSpeedThumbZone)
	if newFinger.Thumb.State != touch.ThumbMaybe {
		t.Fatalf("Thumb.State = %v, want ThumbMaybe (exempted within zone)", newFinger.Thumb.State)
	}
}

func TestApplyRuleENilGuards(t *testing.T) {
	cfg := baseConfig()
	// Must not panic when either touch is nil.
	ApplyRuleE(nil, &touch.Touch{}, SpeedThumbZoneMM{}, cfg, DefaultSpeedThumbZone)
	ApplyRuleE(&touch.Touch{}, nil, SpeedThumbZoneMM{}, cfg, DefaultSpeedThumbZone)
}
