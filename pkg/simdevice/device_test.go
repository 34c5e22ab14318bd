package simdevice

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/geolocation/pkg/geolocation"
	"github.com/go-drift/geolocation/pkg/platform"
	"github.com/go-drift/geolocation/pkg/prompt"
)

func install(t *testing.T, profile Profile, opts ...Option) *Device {
	t.Helper()
	d := New(profile, opts...)
	platform.SetupTestBridge(t.Cleanup, d)
	return d
}

func methods(d *Device) []string {
	var out []string
	for _, c := range d.Calls() {
		out = append(out, c.String())
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func TestGetPositionRequestsThroughChangeStream(t *testing.T) {
	d := install(t, DefaultProfile())
	n := geolocation.NewPlatformNegotiator(prompt.Fixed(false))

	pos, err := n.GetPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geolocation.Position{Latitude: 48.85, Longitude: 2.35}, pos)
	assert.Equal(t, "granted_when_in_use", d.Authorization())
	assert.Equal(t, []string{
		"drift/location.isEnabled",
		"drift/location.authorizationStatus",
		"drift/location.authorizationStatus",
		"drift/location.requestAuthorization",
		"drift/location.getCurrentLocation",
	}, methods(d))
}

func TestGetPositionSettingsRoundTrip(t *testing.T) {
	profile := DefaultProfile()
	profile.Enabled = false
	profile.Authorization = "granted"
	profile.Settings.EnableLocation = boolPtr(true)
	d := install(t, profile)
	n := geolocation.NewPlatformNegotiator(prompt.Fixed(true))

	_, err := n.GetPosition(context.Background())
	require.NoError(t, err)
	assert.True(t, d.Enabled())
	assert.Contains(t, methods(d), "drift/settings.openLocationSettings")
	assert.True(t, platform.Lifecycle.IsResumed())
}

func TestGetPositionSettingsDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	profile := DefaultProfile()
	profile.Enabled = false
	profile.Settings.EnableLocation = boolPtr(false)
	profile.Settings.Delay = 30 * time.Second
	install(t, profile, WithClock(clock))
	n := geolocation.NewPlatformNegotiator(prompt.Fixed(true))

	done := make(chan error, 1)
	go func() {
		_, err := n.GetPosition(context.Background())
		done <- err
	}()

	clock.BlockUntil(1)
	assert.Equal(t, platform.LifecycleStatePaused, platform.Lifecycle.State())
	clock.Advance(30 * time.Second)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, geolocation.ErrUserDeclinedEnable)
	case <-time.After(2 * time.Second):
		t.Fatal("GetPosition did not return after the settings visit")
	}
}

func TestGetPositionNativeFetchError(t *testing.T) {
	profile := DefaultProfile()
	profile.Authorization = "always"
	profile.FetchError = "kCLErrorDomain 1"
	install(t, profile)
	n := geolocation.NewPlatformNegotiator(prompt.Fixed(true))

	_, err := n.GetPosition(context.Background())
	require.Error(t, err)
	assert.Equal(t, "AcquisitionFailed: kCLErrorDomain 1", err.Error())
}

func TestChangeAuthorizationRevokes(t *testing.T) {
	profile := DefaultProfile()
	profile.Authorization = "granted"
	profile.Settings.Authorization = "denied"
	d := install(t, profile)
	n := geolocation.NewPlatformNegotiator(prompt.Fixed(true))

	authorized, err := n.ChangeAuthorization(context.Background())
	require.NoError(t, err)
	assert.False(t, authorized)
	assert.Equal(t, "denied", d.Authorization())
	assert.Contains(t, methods(d), "drift/settings.openAppSettings")
}

func TestFetchRefusedWhenDisabled(t *testing.T) {
	d := New(DefaultProfile())
	d.enabled = false
	_, err := d.currentLocation()

	var chErr *platform.ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, "location_disabled", chErr.Code)
}

func TestUnknownMethod(t *testing.T) {
	d := New(DefaultProfile())
	_, err := d.InvokeMethod("drift/location", "teleport", nil)
	assert.ErrorIs(t, err, platform.ErrMethodNotFound)

	_, err = d.InvokeMethod("drift/camera", "open", nil)
	assert.ErrorIs(t, err, platform.ErrChannelNotFound)
}

func TestEventsOnlyReachActiveStreams(t *testing.T) {
	d := New(DefaultProfile())
	require.NoError(t, d.StartEventStream(changesChannel))
	require.NoError(t, d.StopEventStream(changesChannel))
	assert.Empty(t, d.streams)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	profile, err := LoadProfile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), profile)

	path := filepath.Join(dir, "device.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
enabled: false
authorization: denied
settings:
  enable_location: true
  delay: 2s
fetch_error: kCLErrorDomain 1
`), 0o644))

	profile, err = LoadProfile(path)
	require.NoError(t, err)
	assert.False(t, profile.Enabled)
	assert.Equal(t, "denied", profile.Authorization)
	assert.Equal(t, "granted_when_in_use", profile.RequestResult, "unset fields keep defaults")
	require.NotNil(t, profile.Settings.EnableLocation)
	assert.True(t, *profile.Settings.EnableLocation)
	assert.Equal(t, 2*time.Second, profile.Settings.Delay)
	assert.Equal(t, 48.85, profile.Position.Latitude)
}

func TestLoadProfileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "device.yaml")

	require.NoError(t, os.WriteFile(path, []byte("authorization: maybe\n"), 0o644))
	_, err := LoadProfile(path)
	assert.ErrorContains(t, err, `unknown authorization status "maybe"`)

	require.NoError(t, os.WriteFile(path, []byte("enabled: [\n"), 0o644))
	_, err = LoadProfile(path)
	assert.ErrorContains(t, err, "failed to parse")
}
