package geolocation

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// changeState is a step of the ChangeAuthorization negotiation.
type changeState int

const (
	changeCheckAuthorized changeState = iota
	changePromptUnauthorize
	changeSettingsRoundTrip
	changeRequestAuthorization

	// Terminal states. The result is the authorization after the step.
	changeDone
)

var changeStateNames = [...]string{
	changeCheckAuthorized:      "CheckAuthorized",
	changePromptUnauthorize:    "PromptUnauthorize",
	changeSettingsRoundTrip:    "SettingsRoundTrip",
	changeRequestAuthorization: "RequestAuthorization",
	changeDone:                 "Done",
}

func (s changeState) String() string {
	if s < 0 || int(s) >= len(changeStateNames) {
		return fmt.Sprintf("changeState(%d)", int(s))
	}
	return changeStateNames[s]
}

// nextChangeState is the transition function of ChangeAuthorization. ok is
// the boolean answer of the step just executed.
func nextChangeState(s changeState, ok bool) changeState {
	switch s {
	case changeCheckAuthorized:
		if ok {
			return changePromptUnauthorize
		}
		return changeRequestAuthorization
	case changePromptUnauthorize:
		if ok {
			return changeSettingsRoundTrip
		}
		return changeDone
	default:
		return changeDone
	}
}

// ChangeAuthorization toggles location access and returns whether it is
// authorized afterwards.
//
// When access is authorized the user is asked whether to revoke it; on yes
// the application settings are opened and authorization is checked again
// once the application resumes, on cancel true is returned unchanged. When
// access is not authorized it is requested directly, without a prompt.
//
// A refusal is reported through the boolean, never as an error. Errors are
// KindCapabilityQuery failures, prompter failures, or the context error.
func (n *Negotiator) ChangeAuthorization(ctx context.Context) (bool, error) {
	a := n.begin("ChangeAuthorization", "change")

	var (
		state      = changeCheckAuthorized
		authorized bool
	)
	for state != changeDone {
		ok, err := a.changeStep(ctx, state)
		if err != nil {
			return false, a.finish(err)
		}
		next := nextChangeState(state, ok)
		a.log.Debug("transition",
			zap.Stringer("state", state),
			zap.Bool("ok", ok),
			zap.Stringer("next", next),
		)

		switch state {
		case changeCheckAuthorized, changeSettingsRoundTrip, changeRequestAuthorization:
			authorized = ok
		case changePromptUnauthorize:
			// Declining keeps the authorization observed by the first step.
		}
		state = next
	}

	a.result = strconv.FormatBool(authorized)
	return authorized, a.finish(nil)
}

func (a *attempt) changeStep(ctx context.Context, s changeState) (bool, error) {
	switch s {
	case changeCheckAuthorized:
		return a.authorized(ctx)
	case changePromptUnauthorize:
		return a.confirm(ctx, UnauthorizePrompt)
	case changeSettingsRoundTrip:
		if err := a.settingsRoundTrip(ctx, "app", a.n.provider.OpenSettings); err != nil {
			return false, err
		}
		return a.authorized(ctx)
	case changeRequestAuthorization:
		return a.requestAuthorization(ctx)
	default:
		return false, fmt.Errorf("%s: no action for state %s", a.op, s)
	}
}
