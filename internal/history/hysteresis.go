// Package history implements C4: pushing samples into each touch's
// motion-history ring buffer, hysteresis-based jitter suppression, and
// the wobble detector that auto-enables hysteresis.
//
// The ring buffer itself lives on touch.Touch (touch.History) so every
// component can read a slot's recent samples without importing this
// package; the functions here are the stateful operations spec.md §4.4
// describes over that buffer plus the sibling Hysteresis/wobble fields.
package history

import "touchpadd/internal/touch"

// Margin is the per-axis hysteresis margin {mx, my} spec.md §4.4
// derives from axis fuzz/resolution (device.HysteresisMargin).
type Margin struct {
	X, Y int32
}

// Apply rounds a reported point toward the current hysteresis center:
// if |delta| < margin on an axis, that axis's output does not move;
// otherwise the excess carries through (the output trails p by the
// margin) and the center advances with the output. Returns the point to
// actually report.
//
// Apply has no first-call special case: p is always measured against
// whatever Center holds, including a zero Center on a fresh touch.
func Apply(h *touch.Hysteresis, m Margin, p touch.Point) touch.Point {
	out := p
	dx := p.X - h.Center.X
	if abs32(dx) < m.X {
		out.X = h.Center.X
	} else if dx > 0 {
		out.X = p.X - m.X
	} else {
		out.X = p.X + m.X
	}
	dy := p.Y - h.Center.Y
	if abs32(dy) < m.Y {
		out.Y = h.Center.Y
	} else if dy > 0 {
		out.Y = p.Y - m.Y
	} else {
		out.Y = p.Y + m.Y
	}
	h.Center = out
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// WobbleWindowMask keeps only the low 3 bits of the shift register, per
// spec.md §4.4's "3-bit shift-register".
const WobbleWindowMask = 0b111

// WobbleTriggerPattern is the pattern ("right, left, right") that
// enables hysteresis.
const WobbleTriggerPattern = 0b101

// MaxWobbleIntervalUS is the inter-event gap above which the wobble
// detector's shift register is reset instead of shifted, per spec.md
// §4.4 ("Δt > 40 ms").
const MaxWobbleIntervalUS = 40_000

// Wobble tracks, for a single actively-down finger, whether recent
// horizontal direction reversals match the enable-hysteresis pattern.
// It is only meaningful while hysteresis is not yet enabled and exactly
// one finger is down; callers gate on that themselves.
func Wobble(reg *uint8, dx, dy int32, dtUS int64) (enable bool) {
	if dtUS > MaxWobbleIntervalUS {
		*reg = 0
		return false
	}
	if dy != 0 && dx == 0 {
		*reg = 0
		return false
	}
	if dx == 0 {
		return false
	}
	bit := uint8(0)
	if dx > 0 {
		bit = 1
	}
	*reg = ((*reg << 1) | bit) & WobbleWindowMask
	return *reg == WobbleTriggerPattern
}
