package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Negotiator runs location negotiations against its collaborators.
//
// A Negotiator holds no state between calls; concurrent calls are allowed
// but each may show prompts and launch settings on its own. Use a Guard to
// keep a single position request in flight.
type Negotiator struct {
	provider CapabilityProvider
	prompter Prompter
	resume   ResumeSignal

	defaults FetchOptions
	logger   *zap.Logger
	metrics  *Metrics
	clock    clockwork.Clock
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithLogger sets the logger. Steps are logged at debug level, outcomes at
// info.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Negotiator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMetrics records negotiations into m.
func WithMetrics(m *Metrics) Option {
	return func(n *Negotiator) { n.metrics = m }
}

// WithClock sets the clock used to time negotiations.
func WithClock(clock clockwork.Clock) Option {
	return func(n *Negotiator) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithDefaultFetchOptions replaces DefaultFetchOptions for calls to
// GetPosition that pass no options.
func WithDefaultFetchOptions(opts FetchOptions) Option {
	return func(n *Negotiator) { n.defaults = opts }
}

// New returns a Negotiator over the given collaborators.
func New(provider CapabilityProvider, prompter Prompter, resume ResumeSignal, opts ...Option) *Negotiator {
	n := &Negotiator{
		provider: provider,
		prompter: prompter,
		resume:   resume,
		defaults: DefaultFetchOptions,
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.Named("geolocation")
	return n
}

// IsAuthorized reports whether location access is currently authorized. It
// never prompts and never requests authorization.
func (n *Negotiator) IsAuthorized(ctx context.Context) (bool, error) {
	a := n.begin("IsAuthorized", "authorized")
	authorized, err := a.authorized(ctx)
	return authorized, a.finish(err)
}

// attempt carries the bookkeeping of one public call.
type attempt struct {
	n      *Negotiator
	op     string
	flow   string
	id     string
	log    *zap.Logger
	start  time.Time
	result string
}

func (n *Negotiator) begin(op, flow string) *attempt {
	id := uuid.NewString()
	a := &attempt{
		n:     n,
		op:    op,
		flow:  flow,
		id:    id,
		log:   n.logger.With(zap.String("flow", flow), zap.String("attempt", id)),
		start: n.clock.Now(),
	}
	a.log.Debug("negotiation started")
	return a
}

// finish records the outcome of the attempt and returns err unchanged.
func (a *attempt) finish(err error) error {
	outcome := outcomeOf(err)
	elapsed := a.n.clock.Since(a.start)
	a.n.metrics.observeNegotiation(a.flow, outcome, elapsed)

	fields := []zap.Field{zap.String("outcome", outcome), zap.Duration("elapsed", elapsed)}
	if a.result != "" {
		fields = append(fields, zap.String("result", a.result))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	switch outcome {
	case "query_error", "error":
		a.log.Warn("negotiation finished", fields...)
	default:
		a.log.Info("negotiation finished", fields...)
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline"
	}
	switch KindOf(err) {
	case KindUserDeclinedEnable:
		return "declined_enable"
	case KindUserDeclinedAuthorize:
		return "declined_authorize"
	case KindAcquisitionFailed:
		return "acquisition_failed"
	case KindCapabilityQuery:
		return "query_error"
	default:
		return "error"
	}
}

// fail turns a collaborator failure into the error the attempt returns.
// Once ctx is done the context error wins over whatever the collaborator
// made of it.
func (a *attempt) fail(ctx context.Context, kind ErrorKind, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &Error{Op: a.op, Kind: kind, Message: message, Err: err}
}

func (a *attempt) queryFailed(ctx context.Context, what string, err error) error {
	return a.fail(ctx, KindCapabilityQuery, what+": "+err.Error(), err)
}

func (a *attempt) enabled(ctx context.Context) (bool, error) {
	enabled, err := a.n.provider.IsEnabled(ctx)
	if err != nil {
		return false, a.queryFailed(ctx, "query location enablement", err)
	}
	a.log.Debug("location enablement", zap.Bool("enabled", enabled))
	return enabled, nil
}

func (a *attempt) authorized(ctx context.Context) (bool, error) {
	status, err := a.n.provider.AuthorizationStatus(ctx)
	if err != nil {
		return false, a.queryFailed(ctx, "query location authorization", err)
	}
	a.log.Debug("location authorization", zap.String("status", string(status)))
	return status.Authorized(), nil
}

func (a *attempt) requestAuthorization(ctx context.Context) (bool, error) {
	status, err := a.n.provider.RequestAuthorization(ctx)
	if err != nil {
		return false, a.queryFailed(ctx, "request location authorization", err)
	}
	a.log.Debug("authorization answered", zap.String("status", string(status)))
	return status.Authorized(), nil
}

// confirm shows p. Errors from the prompter are returned as-is unless ctx
// is done.
func (a *attempt) confirm(ctx context.Context, p Prompt) (bool, error) {
	ok, err := a.n.prompter.Confirm(ctx, p)
	if err != nil {
		a.n.metrics.observePrompt(p.Kind, "dismissed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("%s: %s prompt: %w", a.op, p.Kind, err)
	}
	answer := "cancel"
	if ok {
		answer = "confirm"
	}
	a.n.metrics.observePrompt(p.Kind, answer)
	a.log.Debug("prompt answered", zap.Stringer("prompt", p.Kind), zap.String("answer", answer))
	return ok, nil
}

// settingsRoundTrip launches a settings screen and waits until the
// application is resumed. The resume watch is armed before the launch so a
// resume that happens during the launch call is not missed.
func (a *attempt) settingsRoundTrip(ctx context.Context, target string, open func(context.Context) error) error {
	resumed, release := a.n.resume.NextResume()
	defer release()

	if err := open(ctx); err != nil {
		return a.queryFailed(ctx, "open "+target+" settings", err)
	}
	a.n.metrics.observeSettings(target)
	a.log.Debug("settings opened, waiting for resume", zap.String("target", target))

	select {
	case <-resumed:
		a.log.Debug("resumed from settings", zap.String("target", target))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
