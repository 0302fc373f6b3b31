// Package hotkey provides a global push-to-talk hotkey using gohook.
// In "hold" mode pressing the combo starts recording and releasing it stops;
// in "toggle" mode each press flips between the two.
package hotkey

import (
	"context"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/config"
)

// EventType indicates whether recording should start or stop.
type EventType int

const (
	EventStart EventType = iota
	EventStop
)

func (t EventType) String() string {
	if t == EventStart {
		return "start"
	}
	return "stop"
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// Listener watches a global key combo and emits start/stop events.
type Listener struct {
	keys   []string
	toggle bool
	ch     chan Event
	logger *zap.Logger

	mu     sync.Mutex
	active bool
}

// New creates a Listener for cfg.Keys (lowercase gohook key names such as
// "ctrl", "shift", "r").
func New(cfg config.HotkeyConfig, logger *zap.Logger) *Listener {
	return &Listener{
		keys:   cfg.Keys,
		toggle: cfg.Mode == "toggle",
		ch:     make(chan Event, 16),
		logger: logger,
	}
}

// Combo returns the key combo as shown to the user, e.g. "ctrl+shift+r".
func (l *Listener) Combo() string {
	return strings.Join(l.keys, "+")
}

// Events returns the channel that receives hotkey events. It is closed when
// Run returns.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Run hooks the keyboard and blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.ch)

	hook.Register(hook.KeyDown, l.keys, func(hook.Event) { l.keyDown() })
	if !l.toggle {
		hook.Register(hook.KeyUp, l.keys, func(hook.Event) { l.keyUp() })
	}

	evChan := hook.Start()
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			hook.End()
		case <-stopped:
		}
	}()

	l.logger.Debug("Hotkey listener started", zap.String("combo", l.Combo()), zap.Bool("toggle", l.toggle))
	<-hook.Process(evChan)
}

// keyDown starts recording, or in toggle mode flips the state. Key repeat
// while held does not emit duplicate starts.
func (l *Listener) keyDown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case !l.active:
		l.active = true
		l.emit(EventStart)
	case l.toggle:
		l.active = false
		l.emit(EventStop)
	}
}

func (l *Listener) keyUp() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		l.active = false
		l.emit(EventStop)
	}
}

// emit never blocks the hook goroutine; events are dropped when the
// consumer falls behind.
func (l *Listener) emit(t EventType) {
	select {
	case l.ch <- Event{Type: t}:
	default:
		l.logger.Debug("Dropped hotkey event", zap.Stringer("type", t))
	}
}
