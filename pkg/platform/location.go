package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LocationUpdate is a position reading from the device.
type LocationUpdate struct {
	// Latitude is the latitude in degrees.
	Latitude float64
	// Longitude is the longitude in degrees.
	Longitude float64
	// Accuracy is the estimated horizontal accuracy in meters.
	Accuracy float64
	// Timestamp is when the reading was taken.
	Timestamp time.Time
}

// LocationOptions configures a single position fetch.
type LocationOptions struct {
	// HighAccuracy requests the highest available accuracy (may use more power).
	HighAccuracy bool
	// TimeoutMs bounds how long the fetch may take, in milliseconds.
	// Zero or negative means no limit.
	TimeoutMs int64
	// MaximumAgeMs is the maximum age of a cached reading the device may
	// return instead of taking a new one. Zero forces a fresh reading.
	MaximumAgeMs int64
}

func (o LocationOptions) toArgs() map[string]any {
	return map[string]any{
		"highAccuracy": o.HighAccuracy,
		"timeoutMs":    o.TimeoutMs,
		"maximumAgeMs": o.MaximumAgeMs,
	}
}

// LocationService provides location status, authorization and sampling.
type LocationService struct {
	channel *MethodChannel
	changes *Stream[AuthorizationChange]

	// requestMu serializes authorization requests; only one OS dialog can be
	// shown at a time.
	requestMu sync.Mutex

	clockMu sync.RWMutex
	clock   clockwork.Clock
}

// Location is the singleton location service.
var Location = &LocationService{
	channel: NewMethodChannel("drift/location"),
	changes: NewStream(NewEventChannel("drift/permissions/changes"), parseAuthorizationChange),
	clock:   clockwork.NewRealClock(),
}

// SetClock swaps the time source used for fetch timeouts. Pass nil to reset
// to real time.
func (l *LocationService) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	l.clockMu.Lock()
	l.clock = c
	l.clockMu.Unlock()
}

func (l *LocationService) getClock() clockwork.Clock {
	l.clockMu.RLock()
	defer l.clockMu.RUnlock()
	return l.clock
}

// IsEnabled reports whether location services are switched on for the device.
// The ctx parameter is currently unused and reserved for future cancellation support.
func (l *LocationService) IsEnabled(ctx context.Context) (bool, error) {
	result, err := l.channel.Invoke("isEnabled", nil)
	if err != nil {
		return false, err
	}
	m, ok := parseMap(result)
	if !ok {
		return false, fmt.Errorf("location: unexpected response from isEnabled: %v", result)
	}
	return parseBool(m["enabled"]), nil
}

// AuthorizationStatus returns this application's current location authorization.
// The ctx parameter is currently unused and reserved for future cancellation support.
func (l *LocationService) AuthorizationStatus(ctx context.Context) (LocationAuthorization, error) {
	result, err := l.channel.Invoke("authorizationStatus", nil)
	if err != nil {
		return AuthorizationUnknown, err
	}
	return parseAuthorization(result), nil
}

// AuthorizationChanges returns a stream of authorization changes for all
// permissions carried on drift/permissions/changes. Filter on
// AuthorizationChange.Permission == "location".
func (l *LocationService) AuthorizationChanges() *Stream[AuthorizationChange] {
	return l.changes
}

// RequestAuthorization shows the OS authorization dialog and blocks until the
// user answers or ctx is done. If the status is already settled no dialog is
// shown and the current status is returned.
//
// Native code may answer synchronously (a "status" in the reply) or later
// through an AuthorizationChange event.
func (l *LocationService) RequestAuthorization(ctx context.Context) (LocationAuthorization, error) {
	l.requestMu.Lock()
	defer l.requestMu.Unlock()

	current, err := l.AuthorizationStatus(ctx)
	if err != nil {
		return AuthorizationUnknown, err
	}
	if current.settled() {
		return current, nil
	}

	// Subscribe before triggering the native request so the answer cannot be missed.
	answers := make(chan LocationAuthorization, 1)
	unsubscribe := l.changes.Listen(func(change AuthorizationChange) {
		if change.Permission != "location" {
			return
		}
		select {
		case answers <- change.Status:
		default:
		}
	})
	defer unsubscribe()

	result, err := l.channel.Invoke("requestAuthorization", map[string]any{"permission": "location"})
	if err != nil {
		return AuthorizationUnknown, err
	}
	if status := parseAuthorization(result); status != AuthorizationUnknown {
		return status, nil
	}

	select {
	case status := <-answers:
		return status, nil
	case <-ctx.Done():
		// Re-check in case the event was lost.
		if final, err := l.AuthorizationStatus(context.Background()); err == nil && final.settled() {
			return final, nil
		}
		return AuthorizationUnknown, cancellation(ctx)
	}
}

// GetCurrent takes a single position reading.
//
// opts.TimeoutMs is passed to native code and also enforced here, so a native
// side that never answers still fails with ErrTimeout. Native failures are
// returned as-is (typically *ChannelError).
func (l *LocationService) GetCurrent(ctx context.Context, opts LocationOptions) (*LocationUpdate, error) {
	type reply struct {
		result any
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		result, err := l.channel.Invoke("getCurrentLocation", opts.toArgs())
		replies <- reply{result: result, err: err}
	}()

	var expired <-chan time.Time
	if opts.TimeoutMs > 0 {
		timer := l.getClock().NewTimer(time.Duration(opts.TimeoutMs) * time.Millisecond)
		defer timer.Stop()
		expired = timer.Chan()
	}

	select {
	case r := <-replies:
		if r.err != nil {
			return nil, r.err
		}
		update, err := parseLocationUpdate(r.result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return &update, nil
	case <-expired:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, cancellation(ctx)
	}
}

func cancellation(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
	return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
}

func parseLocationUpdate(data any) (LocationUpdate, error) {
	m, ok := parseMap(data)
	if !ok {
		return LocationUpdate{}, fmt.Errorf("expected map, got %T", data)
	}
	lat, latOK := toFloat64(m["latitude"])
	lon, lonOK := toFloat64(m["longitude"])
	if !latOK || !lonOK {
		return LocationUpdate{}, fmt.Errorf("missing coordinates in %v", m)
	}
	acc, _ := toFloat64(m["accuracy"])
	return LocationUpdate{
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  acc,
		Timestamp: parseTime(m["timestamp"]),
	}, nil
}
