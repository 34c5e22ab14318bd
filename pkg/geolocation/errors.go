package geolocation

import (
	"errors"

	"github.com/go-drift/geolocation/pkg/platform"
)

// ErrorKind identifies why a negotiation failed. The set is closed.
type ErrorKind int

const (
	// KindUnknown is the zero value; no negotiation error carries it.
	KindUnknown ErrorKind = iota
	// KindUserDeclinedEnable: the user refused to switch location on, or
	// came back from the settings screen with it still off.
	KindUserDeclinedEnable
	// KindUserDeclinedAuthorize: location access was still not authorized
	// after asking for it.
	KindUserDeclinedAuthorize
	// KindAcquisitionFailed: everything was in place but the device could
	// not produce a position (timeout, hardware, OS denial).
	KindAcquisitionFailed
	// KindCapabilityQuery: a status query or settings launch itself failed.
	KindCapabilityQuery
)

func (k ErrorKind) String() string {
	switch k {
	case KindUserDeclinedEnable:
		return "UserDeclinedEnable"
	case KindUserDeclinedAuthorize:
		return "UserDeclinedAuthorize"
	case KindAcquisitionFailed:
		return "AcquisitionFailed"
	case KindCapabilityQuery:
		return "CapabilityQueryError"
	default:
		return "Unknown"
	}
}

// Error is the failure of a negotiation.
type Error struct {
	// Op is the public operation that failed, e.g. "GetPosition".
	Op string
	// Kind says which step gave up.
	Kind ErrorKind
	// Message is the human readable reason. For KindAcquisitionFailed it is
	// the native message, unchanged.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error renders "{kind}: {message}".
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err* sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUserDeclinedEnable    = &Error{Kind: KindUserDeclinedEnable}
	ErrUserDeclinedAuthorize = &Error{Kind: KindUserDeclinedAuthorize}
	ErrAcquisitionFailed     = &Error{Kind: KindAcquisitionFailed}
	ErrCapabilityQuery       = &Error{Kind: KindCapabilityQuery}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

const (
	messageNotEnabled    = "location services not enabled"
	messageNotAuthorized = "location access not authorized"
)

// nativeMessage extracts the message native code attached to a failure.
func nativeMessage(err error) string {
	var chErr *platform.ChannelError
	if errors.As(err, &chErr) && chErr.Message != "" {
		return chErr.Message
	}
	return err.Error()
}
