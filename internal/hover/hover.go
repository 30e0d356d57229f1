// Package hover implements C3: deciding which slots are actually
// touching, via one of three strategies selected at device init.
package hover

import "touchpadd/internal/device"

// Resolver is satisfied by any of the three hover strategies.
type Resolver interface {
	// ShouldBegin reports whether a currently-hovering touch should
	// promote to BEGIN this frame.
	ShouldBegin(pressure, major, minor int32) bool
	// ShouldEnd reports whether a currently-touching touch should
	// demote to MAYBE_END this frame.
	ShouldEnd(pressure, major, minor int32) bool
}

// Pressure is the pressure-based strategy (spec.md §4.3), the default
// when pressure thresholds are configured.
type Pressure struct {
	Thresholds device.PressureThresholds
}

func (p Pressure) ShouldBegin(pressure, _, _ int32) bool {
	return pressure >= p.Thresholds.High
}

func (p Pressure) ShouldEnd(pressure, _, _ int32) bool {
	return pressure < p.Thresholds.Low
}

// Size is the size-based strategy, requiring num_slots >= 5 and a
// quirk-supplied size range (spec.md §4.3). Callers are responsible for
// only selecting this strategy when that precondition holds.
type Size struct {
	Thresholds device.SizeThresholds
}

func (s Size) ShouldBegin(_, major, minor int32) bool {
	return (major > s.Thresholds.High && minor > s.Thresholds.Low) ||
		(major > s.Thresholds.Low && minor > s.Thresholds.High)
}

func (s Size) ShouldEnd(_, major, minor int32) bool {
	return major < s.Thresholds.Low || minor < s.Thresholds.Low
}

// FakeFinger is the fallback strategy: begin hovering slots until
// nfingers_down matches the fake-finger count; end touches in reverse
// slot order to bring the count down. Unlike Pressure and Size, this
// strategy's decision depends on cross-slot state (the target count),
// so it is driven directly by the orchestrator rather than through the
// Resolver interface — see internal/dispatcher's pre_process stage.
type FakeFinger struct{}
