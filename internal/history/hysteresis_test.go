package history

import (
	"testing"

	"touchpadd/internal/touch"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		center touch.Point
		margin Margin
		p      touch.Point
		want   touch.Point
	}{
		{"within margin stays at center", touch.Point{X: 100, Y: 100}, Margin{X: 5, Y: 5}, touch.Point{X: 103, Y: 102}, touch.Point{X: 100, Y: 100}},
		{"beyond margin on X moves", touch.Point{X: 100, Y: 100}, Margin{X: 5, Y: 5}, touch.Point{X: 110, Y: 100}, touch.Point{X: 105, Y: 100}},
		{"beyond margin on Y moves", touch.Point{X: 100, Y: 100}, Margin{X: 5, Y: 5}, touch.Point{X: 100, Y: 90}, touch.Point{X: 100, Y: 95}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &touch.Hysteresis{Center: tt.center}
			got := Apply(h, tt.margin, tt.p)
			if got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
			if h.Center != tt.want {
				t.Errorf("Center after Apply = %+v, want %+v", h.Center, tt.want)
			}
		})
	}
}

func TestWobbleTriggerPattern(t *testing.T) {
	var reg uint8
	moves := []struct{ dx, dy int32 }{
		{1, 0},  // right: bit 1
		{-1, 0}, // left: bit 0
		{1, 0},  // right: bit 1 -> register 0b101
	}
	var enabled bool
	for _, m := range moves {
		enabled = Wobble(&reg, m.dx, m.dy, 1000)
	}
	if !enabled {
		t.Fatalf("Wobble did not enable after right-left-right, register=%03b", reg)
	}
}

func TestWobbleResetsOnLongGap(t *testing.T) {
	var reg uint8
	Wobble(&reg, 1, 0, 1000)
	Wobble(&reg, -1, 0, 1000)
	if Wobble(&reg, 1, 0, MaxWobbleIntervalUS+1) {
		t.Fatal("Wobble should not trigger across a >40ms gap")
	}
	if reg != 0 {
		t.Errorf("register = %03b after long gap, want reset to 0", reg)
	}
}

func TestWobbleIgnoresPureVerticalMotion(t *testing.T) {
	var reg uint8
	if Wobble(&reg, 0, 5, 1000) {
		t.Fatal("pure vertical motion should never enable wobble")
	}
	if reg != 0 {
		t.Errorf("register = %03b, want reset to 0 on pure vertical motion", reg)
	}
}

func TestWobbleNoHorizontalMotionIsNoop(t *testing.T) {
	var reg uint8
	reg = 0b11
	if Wobble(&reg, 0, 0, 1000) {
		t.Fatal("zero motion should not trigger")
	}
	if reg != 0b11 {
		t.Errorf("register = %03b, want unchanged 0b011", reg)
	}
}
