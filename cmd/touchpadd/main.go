// Command touchpadd is a demo binary wiring the dispatcher to a real
// touchpad evdev node and a synthesized uinput mouse, the way the
// teacher repo's own main() opens one touchpad and one virtual device
// and runs a single read loop — generalized here into device probing,
// the epoll event loop, and the no-op collaborator defaults.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"

	"touchpadd/internal/collaborators"
	"touchpadd/internal/device"
	"touchpadd/internal/dispatcher"
	"touchpadd/internal/evsource"
	"touchpadd/internal/palm"
	"touchpadd/internal/timer"
	"touchpadd/internal/uinputsink"
)

func main() {
	nameMatch := flag.String("device", "touchpad", "substring to match against evdev device names")
	keyboardMatch := flag.String("keyboard", "", "substring to match a paired keyboard for disable-while-typing (empty disables it)")
	leftHanded := flag.Bool("left-handed", false, "rotate axes for left-handed use")
	clickpad := flag.Bool("clickpad", true, "treat the device as a clickpad")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	touchpadPath, err := findDevice(*nameMatch)
	if err != nil {
		log.Fatalf("touchpadd: %v", err)
	}

	tpDev, err := evdev.Open(touchpadPath)
	if err != nil {
		log.Fatalf("touchpadd: open %s: %v", touchpadPath, err)
	}
	if err := tpDev.Grab(); err != nil {
		log.Fatalf("touchpadd: grab %s: %v", touchpadPath, err)
	}
	defer tpDev.Release()

	dev, err := device.Probe(tpDev)
	if err != nil {
		log.Fatalf("touchpadd: %v", err)
	}
	dev.LeftHanded = device.LeftHanded{Enabled: *leftHanded, Rotate: *leftHanded}
	dev.Quirks.IsClickpad = *clickpad
	dev.Quirks.ThumbDetectThumbs = *clickpad
	dev.Quirks.PalmPressureThreshold = dev.Pressure.High * 3
	dev.Quirks.ThumbPressureThreshold = dev.Pressure.High * 3

	sink, err := uinputsink.Open("touchpadd-virtual-mouse")
	if err != nil {
		log.Fatalf("touchpadd: %v", err)
	}
	defer sink.Close()

	logf := log.Printf
	if !*verbose {
		logf = func(string, ...any) {}
	}

	d := dispatcher.New(dispatcher.Config{
		Device:     dev,
		Filter:     collaborators.IdentityFilter{},
		Tap:        collaborators.NoTap{},
		Button:     collaborators.NoButton{},
		EdgeScroll: collaborators.NoEdgeScroll{},
		Gesture:    collaborators.NoGesture{},
		Output:     sink,
		PalmEdge:   defaultPalmEdge(dev),
		Logf:       logf,
	})

	var timers timer.Queue
	d.WireTimer(&timers)

	loop, err := evsource.New(&timers)
	if err != nil {
		log.Fatalf("touchpadd: %v", err)
	}
	defer loop.Close()

	if err := loop.Add(evsource.NewTouchpadSource(tpDev, d.HandleEvent)); err != nil {
		log.Fatalf("touchpadd: %v", err)
	}

	if *keyboardMatch != "" {
		if kbPath, err := findDevice(*keyboardMatch); err == nil {
			if kbDev, err := evdev.Open(kbPath); err == nil {
				loop.Add(evsource.NewKeyboardSource(kbDev, d.KeyEvent))
			} else {
				logf("touchpadd: open keyboard %s: %v", kbPath, err)
			}
		} else {
			logf("touchpadd: no keyboard matching %q found, disable-while-typing stays off", *keyboardMatch)
		}
	}

	log.Printf("touchpadd: %s ready (%dx%d units, %d slots)", dev.Name, dev.X.Span(), dev.Y.Span(), dev.NumSlots)

	if err := loop.Run(nil); err != nil {
		log.Fatalf("touchpadd: %v", err)
	}
}

func defaultPalmEdge(dev *device.Device) palm.EdgeZone {
	widthBand := dev.X.Span() * 8 / 100
	if dev.X.Resolution > 0 && float64(widthBand)/float64(dev.X.Resolution) > 8 {
		widthBand = int32(8 * float64(dev.X.Resolution))
	}
	hasTop := !dev.Quirks.HasTopSoftwareButtons && dev.PhysicalHeightMM > 55
	topBand := dev.Y.Minimum
	if hasTop {
		topBand = dev.Y.Minimum + dev.Y.Span()*5/100
	}
	return palm.EdgeZone{
		Left:   dev.X.Minimum + widthBand,
		Right:  dev.X.Maximum - widthBand,
		Top:    topBand,
		HasTop: hasTop,
	}
}

func findDevice(nameSubstr string) (string, error) {
	devices, err := evdev.ListInputDevices()
	if err != nil {
		return "", fmt.Errorf("list input devices: %w", err)
	}
	needle := strings.ToLower(nameSubstr)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d.Fn, nil
		}
	}
	return "", fmt.Errorf("no device matching %q", nameSubstr)
}
