package geolocation

import "context"

// CapabilityProvider is the device capability the negotiator drives. Every
// method may block; implementations should honor ctx where they can.
type CapabilityProvider interface {
	// IsEnabled reports whether location services are switched on.
	IsEnabled(ctx context.Context) (bool, error)
	// AuthorizationStatus returns the current authorization.
	AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error)
	// RequestAuthorization shows the OS authorization dialog and returns the
	// status after the user answered.
	RequestAuthorization(ctx context.Context) (AuthorizationStatus, error)
	// CurrentPosition takes one position sample.
	CurrentPosition(ctx context.Context, opts FetchOptions) (Position, error)
	// OpenSettings launches this application's settings page. It returns
	// once the launch was requested, not when the user comes back.
	OpenSettings(ctx context.Context) error
	// OpenLocationSettings launches the device location settings page.
	OpenLocationSettings(ctx context.Context) error
}

// ResumeSignal tells when the application comes back to the foreground.
//
// NextResume arms a one-shot watch: the returned channel is closed on the
// first resume after the call. release must be called once the caller no
// longer waits, whether or not the channel fired.
type ResumeSignal interface {
	NextResume() (resumed <-chan struct{}, release func())
}

// Prompter asks the user a yes/cancel question.
//
// Confirm returns true for the confirm choice and false for cancel. An error
// means the prompt surface went away without an answer.
type Prompter interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm calls f(ctx, p).
func (f PrompterFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// PromptKind tells which question a Prompt asks.
type PromptKind int

const (
	// PromptEnable asks whether to go switch location services on.
	PromptEnable PromptKind = iota
	// PromptUnauthorize asks whether to go revoke location access.
	PromptUnauthorize
)

func (k PromptKind) String() string {
	switch k {
	case PromptEnable:
		return "enable"
	case PromptUnauthorize:
		return "unauthorize"
	default:
		return "unknown"
	}
}

// Prompt is a two-choice confirmation shown to the user.
type Prompt struct {
	Kind         PromptKind
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
}

// EnablePrompt is shown when location services are off.
var EnablePrompt = Prompt{
	Kind:  PromptEnable,
	Title: "Authorization",
	Message: "Location services are switched off.\n" +
		"Some features of this application need them.\n" +
		"They cannot be switched on from within the application: you will be taken to the location settings.\n" +
		"Switch location on there, then come back.",
	ConfirmLabel: "Yes I want",
	CancelLabel:  "Cancel",
}

// UnauthorizePrompt is shown before sending the user to revoke access.
var UnauthorizePrompt = Prompt{
	Kind:  PromptUnauthorize,
	Title: "Authorization",
	Message: "Location access is currently authorized.\n" +
		"Some features of this application rely on it.\n" +
		"Are you sure you want to revoke it?\n" +
		"You will be taken to this application's settings page: open the location entry and turn access off.\n" +
		"The application may restart to reload its permissions.",
	ConfirmLabel: "Yes I want",
	CancelLabel:  "Cancel",
}
