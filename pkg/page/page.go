// Package page holds the state of a location screen: whether access is
// authorized, the last position and the last error, with the actions that
// update them.
package page

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/go-drift/geolocation/pkg/geolocation"
)

// Negotiator is the part of *geolocation.Negotiator a Page drives.
type Negotiator interface {
	GetPosition(ctx context.Context, opts ...geolocation.FetchOptions) (geolocation.Position, error)
	ChangeAuthorization(ctx context.Context) (bool, error)
	IsAuthorized(ctx context.Context) (bool, error)
}

// State is what the screen displays.
type State struct {
	Authorized bool
	// Position is nil until a fetch succeeds, and again after one fails.
	Position *geolocation.Position
	Error    string
}

// Page is a location screen. Its methods may be called from any goroutine.
type Page struct {
	negotiator Negotiator
	guard      geolocation.Guard
	metrics    *geolocation.Metrics
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	onChange func(State)
}

// Option configures a Page.
type Option func(*Page)

// WithMetrics counts dropped position requests in m.
func WithMetrics(m *geolocation.Metrics) Option {
	return func(p *Page) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// OnChange registers fn to be called with a snapshot after every update.
func OnChange(fn func(State)) Option {
	return func(p *Page) { p.onChange = fn }
}

// New returns a Page driving n.
func New(n Negotiator, opts ...Option) *Page {
	p := &Page{negotiator: n, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("page")
	return p
}

// Load reads the current authorization.
func (p *Page) Load(ctx context.Context) {
	authorized, err := p.negotiator.IsAuthorized(ctx)
	p.update(func(s *State) {
		if err != nil {
			s.Error = Describe(err)
			return
		}
		s.Authorized = authorized
	})
}

// GetPosition negotiates and fetches a position unless a fetch started by
// this page is still running, in which case the call is dropped and false
// is returned.
func (p *Page) GetPosition(ctx context.Context, opts ...geolocation.FetchOptions) bool {
	ran := p.guard.Do(func() {
		pos, err := p.negotiator.GetPosition(ctx, opts...)
		p.update(func(s *State) {
			if err != nil {
				s.Position = nil
				s.Error = Describe(err)
				return
			}
			s.Authorized = true
			s.Position = &pos
			s.Error = ""
		})
	})
	if !ran {
		p.metrics.ObserveDropped()
		p.logger.Debug("position request dropped, one is in flight")
	}
	return ran
}

// Change toggles the authorization.
func (p *Page) Change(ctx context.Context) {
	authorized, err := p.negotiator.ChangeAuthorization(ctx)
	p.update(func(s *State) {
		if err != nil {
			s.Error = Describe(err)
			return
		}
		s.Authorized = authorized
	})
}

// Busy reports whether a position request is running.
func (p *Page) Busy() bool {
	return p.guard.Busy()
}

// Snapshot returns a copy of the displayed state.
func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

func (p *Page) update(fn func(*State)) {
	p.mu.Lock()
	fn(&p.state)
	snapshot := p.state.clone()
	onChange := p.onChange
	p.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
}

func (s State) clone() State {
	if s.Position != nil {
		pos := *s.Position
		s.Position = &pos
	}
	return s
}

// Describe renders err for display: "{kind}: {message}" for negotiation
// errors, "Error: {err}" for anything else.
func Describe(err error) string {
	var gerr *geolocation.Error
	if errors.As(err, &gerr) {
		return gerr.Error()
	}
	return "Error: " + err.Error()
}
