package device

import (
	"fmt"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// absInfo mirrors struct input_absinfo from <linux/input.h>: the kernel
// reply to an EVIOCGABS ioctl.
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// eviocgabs builds the EVIOCGABS(abs) request code: _IOR('E', 0x40+abs,
// struct input_absinfo). The teacher hand-rolls its own UI_* request
// constants the same way for uinput; this is the read-side counterpart.
func eviocgabs(abs uintptr) uintptr {
	const (
		iocRead  = 2
		iocNRBits = 8
		iocTypeBits = 8
		iocSizeBits = 14
		iocNRShift   = 0
		iocTypeShift = iocNRShift + iocNRBits
		iocSizeShift = iocTypeShift + iocTypeBits
		iocDirShift  = iocSizeShift + iocSizeBits
	)
	size := uintptr(unsafe.Sizeof(absInfo{}))
	return (iocRead << iocDirShift) | ('E' << iocTypeShift) | ((0x40 + abs) << iocNRShift) | (size << iocSizeShift)
}

func readAbsInfo(fd uintptr, code uintptr) (absInfo, bool) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, eviocgabs(code), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return absInfo{}, false
	}
	return info, true
}

// Probe fills in a Device's axis geometry by querying an already-open
// evdev node's EVIOCGABS ioctls directly (via golang.org/x/sys/unix,
// see SPEC_FULL.md's DOMAIN STACK table), the way the teacher opens and
// reads its device before entering the read loop. Device enumeration
// and udev/hwdb matching remain out of scope per spec.md §1 — this only
// reads the capabilities of a device the caller already found and
// opened.
//
// NumSlots comes from the ABS_MT_SLOT range (1 without it), and the
// default hover pressure thresholds from the pressure axis range.
// HoverStrategy is always the fake-finger fallback. BtnToolMax (left at
// 1) and the Quirks fields are not derived here: golang-evdev's
// capability map is not a stable enough surface to introspect
// finger-count bits from, so callers set what they need after Probe
// returns (cmd/touchpadd sets several Quirks fields from its flags).
func Probe(dev *evdev.InputDevice) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("device: probe: nil evdev device")
	}
	if dev.File == nil {
		return nil, fmt.Errorf("device: probe: %s has no open file", dev.Name)
	}
	fd := dev.File.Fd()

	d := &Device{Name: dev.Name, NumSlots: 1, BtnToolMax: 1}

	const absMtPositionX, absMtPositionY = 0x35, 0x36
	const absX, absY = 0x00, 0x01

	if info, ok := readAbsInfo(fd, absMtPositionX); ok {
		d.X = toAxisRange(info)
	} else if info, ok := readAbsInfo(fd, absX); ok {
		d.X = toAxisRange(info)
	} else {
		return nil, fmt.Errorf("device: probe: %s reports no X axis", dev.Name)
	}

	if info, ok := readAbsInfo(fd, absMtPositionY); ok {
		d.Y = toAxisRange(info)
	} else if info, ok := readAbsInfo(fd, absY); ok {
		d.Y = toAxisRange(info)
	} else {
		return nil, fmt.Errorf("device: probe: %s reports no Y axis", dev.Name)
	}

	const absMtSlot = 0x2f
	if info, ok := readAbsInfo(fd, absMtSlot); ok {
		d.NumSlots = int(info.Maximum) + 1
	}

	if d.X.Resolution > 0 {
		d.PhysicalWidthMM = float64(d.X.Span()) / float64(d.X.Resolution)
	}
	if d.Y.Resolution > 0 {
		d.PhysicalHeightMM = float64(d.Y.Span()) / float64(d.Y.Resolution)
	}

	const absMtPressure, absPressure = 0x3a, 0x18
	if info, ok := readAbsInfo(fd, absMtPressure); ok {
		d.Pressure = DefaultPressureThresholds(toAxisRange(info))
	} else if info, ok := readAbsInfo(fd, absPressure); ok {
		d.Pressure = DefaultPressureThresholds(toAxisRange(info))
	}
	d.HoverStrategy = HoverStrategyFakeFinger

	return d, nil
}

func toAxisRange(info absInfo) AxisRange {
	return AxisRange{
		Minimum:    info.Minimum,
		Maximum:    info.Maximum,
		Resolution: info.Resolution,
		Fuzz:       info.Fuzz,
	}
}
