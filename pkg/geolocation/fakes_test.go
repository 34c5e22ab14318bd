package geolocation

import (
	"context"
	"sync"
)

// fakeProvider is a scripted CapabilityProvider that records every call.
type fakeProvider struct {
	mu    sync.Mutex
	calls []string

	enabled       bool
	status        AuthorizationStatus
	requestResult AuthorizationStatus
	position      Position
	fetchErr      error
	queryErr      error
	openErr       error
	fetchOptions  []FetchOptions

	// fetchGate, when set, blocks CurrentPosition until it is closed.
	fetchGate chan struct{}

	// onSettings runs when a settings screen is opened, before resume fires.
	onSettings func(p *fakeProvider)
	resume     *fakeResume
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		enabled:       true,
		status:        StatusGranted,
		requestResult: StatusGranted,
		position:      Position{Latitude: 48.85, Longitude: 2.35},
		resume:        &fakeResume{},
	}
}

func (p *fakeProvider) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakeProvider) IsEnabled(ctx context.Context) (bool, error) {
	p.record("IsEnabled")
	if p.queryErr != nil {
		return false, p.queryErr
	}
	return p.enabled, nil
}

func (p *fakeProvider) AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error) {
	p.record("AuthorizationStatus")
	if p.queryErr != nil {
		return StatusUnknown, p.queryErr
	}
	return p.status, nil
}

func (p *fakeProvider) RequestAuthorization(ctx context.Context) (AuthorizationStatus, error) {
	p.record("RequestAuthorization")
	p.status = p.requestResult
	return p.requestResult, nil
}

func (p *fakeProvider) CurrentPosition(ctx context.Context, opts FetchOptions) (Position, error) {
	p.record("CurrentPosition")
	p.mu.Lock()
	p.fetchOptions = append(p.fetchOptions, opts)
	p.mu.Unlock()
	if p.fetchGate != nil {
		select {
		case <-p.fetchGate:
		case <-ctx.Done():
			return Position{}, ctx.Err()
		}
	}
	if p.fetchErr != nil {
		return Position{}, p.fetchErr
	}
	return p.position, nil
}

func (p *fakeProvider) OpenSettings(ctx context.Context) error {
	p.record("OpenSettings")
	return p.openSettings()
}

func (p *fakeProvider) OpenLocationSettings(ctx context.Context) error {
	p.record("OpenLocationSettings")
	return p.openSettings()
}

// openSettings simulates a synchronous round trip: the user changes what
// onSettings says and the application is resumed before the launch returns.
func (p *fakeProvider) openSettings() error {
	if p.openErr != nil {
		return p.openErr
	}
	if p.onSettings != nil {
		p.onSettings(p)
	}
	if p.resume != nil {
		p.resume.fire()
	}
	return nil
}

// fakeResume is a ResumeSignal fired by hand.
type fakeResume struct {
	mu       sync.Mutex
	watches  []chan struct{}
	armed    int
	released int
	// silent makes fire a no-op, as if the user never came back.
	silent bool
}

func (r *fakeResume) NextResume() (<-chan struct{}, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.watches = append(r.watches, ch)
	r.armed++
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			r.released++
			r.mu.Unlock()
		})
	}
}

func (r *fakeResume) fire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.silent {
		return
	}
	for _, ch := range r.watches {
		close(ch)
	}
	r.watches = nil
}

func (r *fakeResume) counts() (armed, released int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed, r.released
}

// fakePrompter answers prompts from a fixed table and records what it showed.
type fakePrompter struct {
	mu      sync.Mutex
	answers map[PromptKind]bool
	err     error
	shown   []Prompt
}

func answering(answers map[PromptKind]bool) *fakePrompter {
	return &fakePrompter{answers: answers}
}

func (f *fakePrompter) Confirm(ctx context.Context, p Prompt) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, p)
	if f.err != nil {
		return false, f.err
	}
	return f.answers[p.Kind], nil
}

func (f *fakePrompter) Shown() []PromptKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]PromptKind, 0, len(f.shown))
	for _, p := range f.shown {
		kinds = append(kinds, p.Kind)
	}
	return kinds
}
