package geolocation

import (
	"context"

	"github.com/go-drift/geolocation/pkg/platform"
)

var (
	_ CapabilityProvider = (*PlatformProvider)(nil)
	_ ResumeSignal       = (*platform.LifecycleService)(nil)
)

// PlatformProvider implements CapabilityProvider over the native bridge.
type PlatformProvider struct {
	location *platform.LocationService
	settings *platform.SettingsService
}

// NewPlatformProvider wraps the given platform services. Nil arguments
// select the platform singletons.
func NewPlatformProvider(location *platform.LocationService, settings *platform.SettingsService) *PlatformProvider {
	if location == nil {
		location = platform.Location
	}
	if settings == nil {
		settings = platform.Settings
	}
	return &PlatformProvider{location: location, settings: settings}
}

// NewPlatformNegotiator returns a Negotiator over the platform singletons,
// resuming on platform.Lifecycle.
func NewPlatformNegotiator(prompter Prompter, opts ...Option) *Negotiator {
	return New(NewPlatformProvider(nil, nil), prompter, platform.Lifecycle, opts...)
}

func (p *PlatformProvider) IsEnabled(ctx context.Context) (bool, error) {
	return p.location.IsEnabled(ctx)
}

func (p *PlatformProvider) AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error) {
	status, err := p.location.AuthorizationStatus(ctx)
	return AuthorizationStatus(status), err
}

func (p *PlatformProvider) RequestAuthorization(ctx context.Context) (AuthorizationStatus, error) {
	status, err := p.location.RequestAuthorization(ctx)
	return AuthorizationStatus(status), err
}

func (p *PlatformProvider) CurrentPosition(ctx context.Context, opts FetchOptions) (Position, error) {
	update, err := p.location.GetCurrent(ctx, platform.LocationOptions{
		HighAccuracy: opts.HighAccuracy,
		TimeoutMs:    opts.TimeoutMs,
		MaximumAgeMs: opts.MaximumAgeMs,
	})
	if err != nil {
		return Position{}, err
	}
	return Position{Latitude: update.Latitude, Longitude: update.Longitude}, nil
}

// OpenSettings opens the application's settings page. ctx is not consulted:
// a launch cannot be taken back once requested.
func (p *PlatformProvider) OpenSettings(ctx context.Context) error {
	return p.settings.OpenAppSettings()
}

// OpenLocationSettings opens the device location settings page.
func (p *PlatformProvider) OpenLocationSettings(ctx context.Context) error {
	return p.settings.OpenLocationSettings()
}
