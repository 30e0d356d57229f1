// Package evsource implements the single-threaded cooperative event
// loop of spec.md §5: one epoll instance multiplexing every evdev node
// (the touchpad itself, a paired keyboard, a paired trackpoint) plus
// the scheduled-timer queue, with no per-device goroutine. The loop's
// only synchronization primitive is epoll_wait's timeout, computed from
// internal/timer's next deadline (and capped at a short poll interval
// when Run is given a stop channel) — mirrored on the teacher's own
// single-goroutine "for { dev.Read() }" shape, generalized to multiple
// fds the way gio's wayland backend multiplexes a display fd and a
// wake-up pipe with ppoll (see other_examples' gio wayland.go).
package evsource

import (
	"fmt"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"

	"touchpadd/internal/evcode"
	"touchpadd/internal/timer"
)

// Source is one fd the loop multiplexes, typically a raw input device;
// any readable fd can be wrapped as a Source.
type Source interface {
	Fd() int
	// Readable is called when epoll reports EPOLLIN on this fd. It
	// should drain all currently available data; epoll is level
	// triggered here, so leaving data unread simply wakes the loop
	// again next iteration.
	Readable()
	Close()
}

// Loop is the epoll-driven event loop. It owns no touchpad-specific
// state; TouchpadSource and KeyboardSource adapt evdev nodes into
// Dispatcher calls.
type Loop struct {
	epfd    int
	sources map[int]Source
	timers  *timer.Queue
}

// New creates an epoll instance bound to q: the loop's epoll_wait
// timeout is always clamped to q's next deadline, so a DWT timeout or
// any other scheduled callback fires on time even with no device
// activity.
func New(q *timer.Queue) (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("evsource: epoll_create1: %w", err)
	}
	return &Loop{epfd: epfd, sources: make(map[int]Source), timers: q}, nil
}

// Add registers a source for EPOLLIN.
func (l *Loop) Add(s Source) error {
	fd := s.Fd()
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("evsource: epoll_ctl add fd %d: %w", fd, err)
	}
	l.sources[fd] = s
	return nil
}

// Remove unregisters and closes a source previously added with Add.
func (l *Loop) Remove(s Source) {
	fd := s.Fd()
	unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(l.sources, fd)
	s.Close()
}

// Run blocks, servicing sources and expiring timers, until stop is
// closed or an unrecoverable epoll_wait error occurs. With a non-nil
// stop, each epoll_wait is capped at stopPollMS so a closed stop is
// noticed even when no fd is readable and no timer is pending.
func (l *Loop) Run(stop <-chan struct{}) error {
	const stopPollMS = 50
	var events [16]unix.EpollEvent
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		timeoutMS := -1
		if deadline, ok := l.timers.NextDeadline(); ok {
			now := evcode.Now()
			if deadline <= now {
				timeoutMS = 0
			} else {
				timeoutMS = int((deadline - now) / 1000)
				if timeoutMS == 0 {
					timeoutMS = 1
				}
			}
		}
		if stop != nil && (timeoutMS < 0 || timeoutMS > stopPollMS) {
			timeoutMS = stopPollMS
		}

		n, err := unix.EpollWait(l.epfd, events[:], timeoutMS)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("evsource: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			if src, ok := l.sources[int(events[i].Fd)]; ok {
				src.Readable()
			}
		}

		l.timers.Expire(evcode.Now())
	}
}

// Close tears down every remaining source and the epoll fd itself.
func (l *Loop) Close() {
	for _, s := range l.sources {
		s.Close()
	}
	l.sources = nil
	unix.Close(l.epfd)
}

// TouchpadSource adapts an open evdev touchpad node into the loop,
// translating each decoded event into the evcode.Event tuple the
// dispatcher's C1 decoder consumes.
type TouchpadSource struct {
	dev     *evdev.InputDevice
	handler func(evcode.Event)
}

// NewTouchpadSource wraps dev (already opened and, per spec.md §1's
// grab-on-start device policy, grabbed) for the loop.
func NewTouchpadSource(dev *evdev.InputDevice, handler func(evcode.Event)) *TouchpadSource {
	return &TouchpadSource{dev: dev, handler: handler}
}

func (s *TouchpadSource) Fd() int { return int(s.dev.File.Fd()) }

func (s *TouchpadSource) Readable() {
	events, err := s.dev.Read()
	if err != nil {
		return
	}
	for _, ev := range events {
		s.handler(evcode.Event{
			Time:  int64(ev.Time.Sec)*1_000_000 + int64(ev.Time.Usec),
			Type:  ev.Type,
			Code:  ev.Code,
			Value: ev.Value,
		})
	}
}

func (s *TouchpadSource) Close() {
	s.dev.Release()
}

// KeyboardSource adapts a paired keyboard node, forwarding only EV_KEY
// events to a dispatcher's DWT state machine (spec.md §4.10); it is
// never grabbed, since the keyboard must keep delivering to its normal
// consumer.
type KeyboardSource struct {
	dev   *evdev.InputDevice
	onKey func(code uint16, down bool, timeUS int64)
}

func NewKeyboardSource(dev *evdev.InputDevice, onKey func(code uint16, down bool, timeUS int64)) *KeyboardSource {
	return &KeyboardSource{dev: dev, onKey: onKey}
}

func (s *KeyboardSource) Fd() int { return int(s.dev.File.Fd()) }

func (s *KeyboardSource) Readable() {
	events, err := s.dev.Read()
	if err != nil {
		return
	}
	for _, ev := range events {
		if ev.Type == evcode.EvKey {
			timeUS := int64(ev.Time.Sec)*1_000_000 + int64(ev.Time.Usec)
			s.onKey(ev.Code, ev.Value != 0, timeUS)
		}
	}
}

func (s *KeyboardSource) Close() {}
