// Package uinputsink implements a dispatcher.Output backed by a
// synthesized virtual mouse, via github.com/bendahl/uinput — the
// library the teacher repo declares but never wires up (it hand-rolls
// its own /dev/uinput ioctl calls instead, see DESIGN.md). This is the
// demo sink cmd/touchpadd uses in place of the real outgoing event bus
// spec.md §1 scopes out.
package uinputsink

import (
	"fmt"

	"github.com/bendahl/uinput"

	"touchpadd/internal/evcode"
)

// Sink adapts a uinput.Mouse to dispatcher.Output.
type Sink struct {
	mouse uinput.Mouse
}

// Open creates a new virtual mouse device named name.
func Open(name string) (*Sink, error) {
	m, err := uinput.CreateMouse("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("uinputsink: create mouse: %w", err)
	}
	return &Sink{mouse: m}, nil
}

// Motion reports relative pointer motion, already run through the
// caller's acceleration filter.
func (s *Sink) Motion(dx, dy float64) {
	ix, iy := int32(dx), int32(dy)
	if ix == 0 && iy == 0 {
		return
	}
	if err := s.mouse.Move(ix, iy); err != nil {
		return
	}
}

// Button reports a physical or click-finger button edge.
func (s *Sink) Button(code uint16, pressed bool) {
	switch code {
	case evcode.BtnLeft:
		if pressed {
			s.mouse.LeftPress()
		} else {
			s.mouse.LeftRelease()
		}
	case evcode.BtnRight:
		if pressed {
			s.mouse.RightPress()
		} else {
			s.mouse.RightRelease()
		}
	case evcode.BtnMiddle:
		if pressed {
			s.mouse.MiddlePress()
		} else {
			s.mouse.MiddleRelease()
		}
	}
}

// Scroll reports an edge-scroll or gesture-driven wheel event; a real
// EdgeScroll/Gesture collaborator implementation calls this directly
// rather than going through dispatcher.Output, since wheel events are
// outside the pointer-motion/button surface that interface covers.
func (s *Sink) Scroll(horizontal bool, delta int32) {
	s.mouse.Wheel(horizontal, delta)
}

// Close releases the virtual device.
func (s *Sink) Close() error {
	return s.mouse.Close()
}
