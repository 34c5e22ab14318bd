// Package simdevice is an in-process native side for the platform bridge.
// It answers the location, settings and lifecycle channels from a Profile,
// so negotiations can run without a phone.
package simdevice

import (
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/go-drift/geolocation/pkg/errors"
	"github.com/go-drift/geolocation/pkg/platform"
)

const (
	locationChannel  = "drift/location"
	settingsChannel  = "drift/settings"
	changesChannel   = "drift/permissions/changes"
	lifecycleChannel = "drift/lifecycle/events"
)

var _ platform.NativeBridge = (*Device)(nil)

// Call is a method call the device received.
type Call struct {
	Channel string
	Method  string
	Args    any
}

func (c Call) String() string {
	return c.Channel + "." + c.Method
}

// Device is a simulated phone.
type Device struct {
	profile Profile
	clock   clockwork.Clock
	logger  *zap.Logger

	mu      sync.Mutex
	enabled bool
	status  string
	streams map[string]bool
	calls   []Call
}

// Option configures a Device.
type Option func(*Device)

// WithClock sets the clock that times settings visits.
func WithClock(clock clockwork.Clock) Option {
	return func(d *Device) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New returns a device in the state described by profile.
func New(profile Profile, opts ...Option) *Device {
	d := &Device{
		profile: profile,
		clock:   clockwork.NewRealClock(),
		logger:  zap.NewNop(),
		enabled: profile.Enabled,
		status:  profile.Authorization,
		streams: make(map[string]bool),
	}
	if d.status == "" {
		d.status = "not_determined"
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("simdevice")
	return d
}

// Install makes d the platform's native bridge.
func (d *Device) Install() {
	platform.SetNativeBridge(d)
}

// Calls returns the method calls received so far.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Enabled reports whether location services are on.
func (d *Device) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Authorization returns the current authorization status.
func (d *Device) Authorization() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// InvokeMethod implements platform.NativeBridge.
func (d *Device) InvokeMethod(channel, method string, argsData []byte) ([]byte, error) {
	args, err := platform.DefaultCodec.Decode(argsData)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.calls = append(d.calls, Call{Channel: channel, Method: method, Args: args})
	d.mu.Unlock()
	d.logger.Debug("invoke", zap.String("channel", channel), zap.String("method", method))

	result, err := d.handle(channel, method)
	if err != nil {
		return nil, err
	}
	return platform.DefaultCodec.Encode(result)
}

// StartEventStream implements platform.NativeBridge.
func (d *Device) StartEventStream(channel string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[channel] = true
	return nil
}

// StopEventStream implements platform.NativeBridge.
func (d *Device) StopEventStream(channel string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.streams, channel)
	return nil
}

func (d *Device) handle(channel, method string) (any, error) {
	switch channel {
	case locationChannel:
		switch method {
		case "isEnabled":
			return map[string]any{"enabled": d.Enabled()}, nil
		case "authorizationStatus":
			return map[string]any{"status": d.Authorization()}, nil
		case "requestAuthorization":
			return d.requestAuthorization(), nil
		case "getCurrentLocation":
			return d.currentLocation()
		}
	case settingsChannel:
		switch method {
		case "openLocationSettings":
			d.openSettings(d.leaveLocationSettings)
			return nil, nil
		case "openAppSettings":
			d.openSettings(d.leaveAppSettings)
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", platform.ErrChannelNotFound, channel)
	}
	return nil, platform.ErrMethodNotFound
}

// requestAuthorization answers the dialog through the change stream, the
// way Android does, and leaves the reply empty.
func (d *Device) requestAuthorization() any {
	d.mu.Lock()
	if d.profile.RequestResult != "" {
		d.status = d.profile.RequestResult
	}
	status := d.status
	d.mu.Unlock()

	d.emit(changesChannel, map[string]any{"permission": "location", "status": status})
	return map[string]any{}
}

func (d *Device) currentLocation() (any, error) {
	d.mu.Lock()
	enabled, status := d.enabled, d.status
	d.mu.Unlock()

	switch {
	case !enabled:
		return nil, platform.NewChannelError("location_disabled", "location services are disabled")
	case !authorized(status):
		return nil, platform.NewChannelError("permission_denied", "location access is not authorized")
	case d.profile.FetchError != "":
		return nil, platform.NewChannelError("location_error", d.profile.FetchError)
	}
	return map[string]any{
		"latitude":  d.profile.Position.Latitude,
		"longitude": d.profile.Position.Longitude,
		"accuracy":  d.profile.Position.Accuracy,
		"timestamp": d.clock.Now().UnixMilli(),
	}, nil
}

// openSettings sends the app to the background, lets the user act after the
// profile's delay, then resumes the app. With no delay the whole round trip
// completes before the launch call returns.
func (d *Device) openSettings(leave func()) {
	d.emitLifecycle(platform.LifecycleStatePaused)
	comeBack := func() {
		defer errors.Recover("simdevice.settings")
		leave()
		d.emitLifecycle(platform.LifecycleStateResumed)
	}
	if delay := d.profile.Settings.Delay; delay > 0 {
		d.clock.AfterFunc(delay, comeBack)
		return
	}
	comeBack()
}

func (d *Device) leaveLocationSettings() {
	if d.profile.Settings.EnableLocation == nil {
		return
	}
	d.mu.Lock()
	d.enabled = *d.profile.Settings.EnableLocation
	d.mu.Unlock()
}

func (d *Device) leaveAppSettings() {
	if d.profile.Settings.Authorization == "" {
		return
	}
	d.mu.Lock()
	d.status = d.profile.Settings.Authorization
	status := d.status
	d.mu.Unlock()
	d.emit(changesChannel, map[string]any{"permission": "location", "status": status})
}

func (d *Device) emitLifecycle(state platform.LifecycleState) {
	d.emit(lifecycleChannel, map[string]any{"state": string(state)})
}

// emit delivers an event if Go is listening on channel.
func (d *Device) emit(channel string, payload map[string]any) {
	d.mu.Lock()
	active := d.streams[channel]
	d.mu.Unlock()
	if !active {
		return
	}

	data, err := platform.DefaultCodec.Encode(payload)
	if err == nil {
		err = platform.HandleEvent(channel, data)
	}
	if err != nil {
		errors.Report(&errors.DriftError{
			Op:      "simdevice.emit",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
	}
}

func authorized(status string) bool {
	switch status {
	case "always", "when_in_use", "granted", "granted_when_in_use", "restricted":
		return true
	}
	return false
}
