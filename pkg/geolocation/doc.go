// Package geolocation negotiates access to the device's location service on
// behalf of an application.
//
// A [Negotiator] checks whether location is switched on and authorized,
// asks the user to fix it when it is not (confirmation prompts and round
// trips to the OS settings screen), and finally takes a position sample.
// Every public operation is a single attempt: it runs its steps in order,
// never retries, and ends in exactly one result or one error.
//
// The negotiator talks to the host only through three collaborators:
//
//   - a [CapabilityProvider] for status queries, the authorization dialog,
//     position sampling and settings launches;
//   - a [Prompter] for yes/cancel questions;
//   - a [ResumeSignal] telling when the app is back in the foreground.
//
// [NewPlatformProvider] and [platform.LifecycleService] implement the first
// and the last over the native bridge.
//
// Failures of [Negotiator.GetPosition] carry an [*Error] whose [ErrorKind]
// says which step gave up:
//
//	pos, err := n.GetPosition(ctx)
//	switch {
//	case errors.Is(err, geolocation.ErrUserDeclinedEnable):
//	    // location left off
//	case errors.Is(err, geolocation.ErrAcquisitionFailed):
//	    // sampling failed, err carries the native message
//	}
//
// Callers that must not start a second position request while one is in
// flight hold a [Guard].
package geolocation
