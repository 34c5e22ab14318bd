package geolocation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// positionState is a step of the GetPosition negotiation.
type positionState int

const (
	positionCheckEnabled positionState = iota
	positionPromptEnable
	positionSettingsRoundTrip
	positionCheckAuthorized
	positionRequestAuthorization
	positionFetch

	// Terminal states.
	positionSucceeded
	positionDeclinedEnable
	positionDeclinedAuthorize
	positionAcquisitionFailed
)

var positionStateNames = [...]string{
	positionCheckEnabled:         "CheckEnabled",
	positionPromptEnable:         "PromptEnable",
	positionSettingsRoundTrip:    "SettingsRoundTrip",
	positionCheckAuthorized:      "CheckAuthorized",
	positionRequestAuthorization: "RequestAuthorization",
	positionFetch:                "FetchPosition",
	positionSucceeded:            "Succeeded",
	positionDeclinedEnable:       "DeclinedEnable",
	positionDeclinedAuthorize:    "DeclinedAuthorize",
	positionAcquisitionFailed:    "AcquisitionFailed",
}

func (s positionState) String() string {
	if s < 0 || int(s) >= len(positionStateNames) {
		return fmt.Sprintf("positionState(%d)", int(s))
	}
	return positionStateNames[s]
}

func (s positionState) terminal() bool {
	return s >= positionSucceeded
}

// nextPositionState is the transition function of GetPosition. ok is the
// boolean answer of the step just executed: enabled, confirmed, authorized
// or fetched. Terminal states map to themselves.
func nextPositionState(s positionState, ok bool) positionState {
	switch s {
	case positionCheckEnabled:
		if ok {
			return positionCheckAuthorized
		}
		return positionPromptEnable
	case positionPromptEnable:
		if ok {
			return positionSettingsRoundTrip
		}
		return positionDeclinedEnable
	case positionSettingsRoundTrip:
		if ok {
			return positionCheckAuthorized
		}
		return positionDeclinedEnable
	case positionCheckAuthorized:
		if ok {
			return positionFetch
		}
		return positionRequestAuthorization
	case positionRequestAuthorization:
		if ok {
			return positionFetch
		}
		return positionDeclinedAuthorize
	case positionFetch:
		if ok {
			return positionSucceeded
		}
		return positionAcquisitionFailed
	default:
		return s
	}
}

// GetPosition negotiates enablement and authorization, then takes one
// position sample.
//
// If location is off the user is asked whether to switch it on; on yes the
// location settings are opened and enablement is checked again once the
// application resumes. If access is not authorized it is requested without
// a prompt. Failures are *Error values of kind KindUserDeclinedEnable,
// KindUserDeclinedAuthorize, KindAcquisitionFailed or KindCapabilityQuery.
// If ctx ends first, the context error is returned.
//
// At most one FetchOptions is used; without one the negotiator defaults
// apply.
func (n *Negotiator) GetPosition(ctx context.Context, opts ...FetchOptions) (Position, error) {
	run := &positionRun{
		attempt: n.begin("GetPosition", "position"),
		options: n.defaults,
	}
	if len(opts) > 0 {
		run.options = opts[0]
	}

	state := positionCheckEnabled
	for !state.terminal() {
		ok, err := run.step(ctx, state)
		if err != nil {
			return Position{}, run.finish(err)
		}
		next := nextPositionState(state, ok)
		run.log.Debug("transition",
			zap.Stringer("state", state),
			zap.Bool("ok", ok),
			zap.Stringer("next", next),
		)
		state = next
	}

	switch state {
	case positionSucceeded:
		run.result = fmt.Sprintf("%g,%g", run.position.Latitude, run.position.Longitude)
		return run.position, run.finish(nil)
	case positionDeclinedEnable:
		return Position{}, run.finish(&Error{Op: run.op, Kind: KindUserDeclinedEnable, Message: messageNotEnabled})
	case positionDeclinedAuthorize:
		return Position{}, run.finish(&Error{Op: run.op, Kind: KindUserDeclinedAuthorize, Message: messageNotAuthorized})
	default:
		return Position{}, run.finish(&Error{
			Op:      run.op,
			Kind:    KindAcquisitionFailed,
			Message: nativeMessage(run.fetchErr),
			Err:     run.fetchErr,
		})
	}
}

type positionRun struct {
	*attempt
	options  FetchOptions
	position Position
	fetchErr error
}

// step executes the action of a non-terminal state.
func (r *positionRun) step(ctx context.Context, s positionState) (bool, error) {
	switch s {
	case positionCheckEnabled:
		return r.enabled(ctx)
	case positionPromptEnable:
		return r.confirm(ctx, EnablePrompt)
	case positionSettingsRoundTrip:
		if err := r.settingsRoundTrip(ctx, "location", r.n.provider.OpenLocationSettings); err != nil {
			return false, err
		}
		return r.enabled(ctx)
	case positionCheckAuthorized:
		return r.authorized(ctx)
	case positionRequestAuthorization:
		return r.requestAuthorization(ctx)
	case positionFetch:
		return r.fetch(ctx)
	default:
		return false, fmt.Errorf("%s: no action for state %s", r.op, s)
	}
}

func (r *positionRun) fetch(ctx context.Context) (bool, error) {
	pos, err := r.n.provider.CurrentPosition(ctx, r.options)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		r.fetchErr = err
		return false, nil
	}
	r.position = pos
	return true, nil
}
