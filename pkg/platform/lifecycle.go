package platform

import (
	"sync"

	"github.com/go-drift/geolocation/pkg/errors"
)

// Lifecycle is the singleton lifecycle service.
var Lifecycle = &LifecycleService{
	channel:  NewMethodChannel("drift/lifecycle"),
	events:   NewEventChannel("drift/lifecycle/events"),
	state:    LifecycleStateResumed,
	handlers: make(map[int64]LifecycleHandler),
}

// LifecycleState represents the current app lifecycle state.
type LifecycleState string

const (
	// LifecycleStateResumed indicates the app is visible and responding to user input.
	LifecycleStateResumed LifecycleState = "resumed"

	// LifecycleStateInactive indicates the app is transitioning (e.g., a system
	// dialog such as the location authorization prompt is shown).
	LifecycleStateInactive LifecycleState = "inactive"

	// LifecycleStatePaused indicates the app is not visible but still running,
	// e.g. while the user is in the OS settings screen.
	LifecycleStatePaused LifecycleState = "paused"

	// LifecycleStateDetached indicates the app is still hosted but detached from any view.
	LifecycleStateDetached LifecycleState = "detached"
)

// LifecycleHandler is called when lifecycle state changes.
type LifecycleHandler func(state LifecycleState)

// LifecycleService tracks the app lifecycle and notifies handlers of changes.
type LifecycleService struct {
	channel *MethodChannel
	events  *EventChannel

	mu       sync.RWMutex
	state    LifecycleState
	handlers map[int64]LifecycleHandler
	nextID   int64
}

func init() {
	initLifecycleListeners()
	registerBuiltinInit(initLifecycleListeners)

	Lifecycle.channel.SetHandler(func(method string, args any) (any, error) {
		switch method {
		case "didChangeState":
			state, ok := parseLifecycleState(args)
			if !ok {
				return nil, ErrInvalidArguments
			}
			Lifecycle.updateState(state)
			return nil, nil
		default:
			return nil, ErrMethodNotFound
		}
	})
}

func initLifecycleListeners() {
	Lifecycle.events.Listen(EventHandler{
		OnEvent: func(data any) {
			state, ok := parseLifecycleState(data)
			if !ok {
				errors.Report(&errors.DriftError{
					Op:      "lifecycle.parseEvent",
					Kind:    errors.KindParsing,
					Channel: Lifecycle.events.Name(),
					Err: &errors.ParseError{
						Channel:  Lifecycle.events.Name(),
						DataType: "LifecycleState",
						Got:      data,
					},
				})
				return
			}
			Lifecycle.updateState(state)
		},
		OnError: func(err error) {
			errors.Report(&errors.DriftError{
				Op:      "lifecycle.streamError",
				Kind:    errors.KindPlatform,
				Channel: Lifecycle.events.Name(),
				Err:     err,
			})
		},
	})
}

func parseLifecycleState(data any) (LifecycleState, bool) {
	m, ok := parseMap(data)
	if !ok {
		return "", false
	}
	state, ok := m["state"].(string)
	if !ok || state == "" {
		return "", false
	}
	return LifecycleState(state), true
}

// State returns the current lifecycle state.
func (l *LifecycleService) State() LifecycleState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsResumed returns true if the app is in the resumed state.
func (l *LifecycleService) IsResumed() bool {
	return l.State() == LifecycleStateResumed
}

// AddHandler registers a handler to be called on lifecycle changes.
// Returns a function that removes the handler; calling it again is a no-op.
func (l *LifecycleService) AddHandler(handler LifecycleHandler) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.handlers[id] = handler
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.handlers, id)
		l.mu.Unlock()
	}
}

// NextResume watches for the next transition into the resumed state.
//
// The returned channel is closed exactly once, when the app comes back to the
// foreground after having left it. A transition that happened before the call
// is not observed, so arm the watch before sending the user elsewhere.
// release stops the watch and may be called any number of times.
func (l *LifecycleService) NextResume() (resumed <-chan struct{}, release func()) {
	done := make(chan struct{})
	var fired sync.Once
	remove := l.AddHandler(func(state LifecycleState) {
		if state == LifecycleStateResumed {
			fired.Do(func() { close(done) })
		}
	})
	var released sync.Once
	return done, func() { released.Do(remove) }
}

// updateState updates the lifecycle state and notifies handlers.
func (l *LifecycleService) updateState(newState LifecycleState) {
	l.mu.Lock()
	if l.state == newState {
		l.mu.Unlock()
		return
	}
	l.state = newState
	handlers := make([]LifecycleHandler, 0, len(l.handlers))
	for _, h := range l.handlers {
		handlers = append(handlers, h)
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(newState)
	}
}

func (l *LifecycleService) reset() {
	l.mu.Lock()
	l.state = LifecycleStateResumed
	l.handlers = make(map[int64]LifecycleHandler)
	l.mu.Unlock()
}
