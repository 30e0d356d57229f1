package hover

import (
	"testing"

	"touchpadd/internal/device"
)

func TestPressureStrategy(t *testing.T) {
	p := Pressure{Thresholds: device.PressureThresholds{Low: 10, High: 30}}
	if !p.ShouldBegin(30, 0, 0) {
		t.Error("ShouldBegin at high threshold should be true")
	}
	if p.ShouldBegin(29, 0, 0) {
		t.Error("ShouldBegin below high threshold should be false")
	}
	if !p.ShouldEnd(9, 0, 0) {
		t.Error("ShouldEnd below low threshold should be true")
	}
	if p.ShouldEnd(10, 0, 0) {
		t.Error("ShouldEnd at low threshold should be false")
	}
}

func TestSizeStrategy(t *testing.T) {
	s := Size{Thresholds: device.SizeThresholds{Low: 5, High: 20}}
	if !s.ShouldBegin(0, 25, 10) {
		t.Error("ShouldBegin with major>high, minor>low should be true")
	}
	if !s.ShouldBegin(0, 10, 25) {
		t.Error("ShouldBegin with minor>high, major>low should be true")
	}
	if s.ShouldBegin(0, 3, 3) {
		t.Error("ShouldBegin below both thresholds should be false")
	}
	if !s.ShouldEnd(0, 2, 20) {
		t.Error("ShouldEnd when major below low should be true")
	}
}
