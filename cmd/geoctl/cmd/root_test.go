package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drifterrors "github.com/go-drift/geolocation/pkg/errors"
	"github.com/go-drift/geolocation/pkg/platform"
)

// run executes geoctl in a scratch directory holding the given profile.
func run(t *testing.T, profile string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Cleanup(platform.ResetForTest)
	t.Cleanup(func() { drifterrors.SetHandler(nil) })

	profilePath := filepath.Join(dir, "device.yaml")
	if profile != "" {
		require.NoError(t, os.WriteFile(profilePath, []byte(profile), 0o644))
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--profile", profilePath, "--log-level", "error"))
	err := Execute(context.Background())
	return out.String(), err
}

func TestPositionDefaultDevice(t *testing.T) {
	out, err := run(t, "", "position", "--prompt", "no")
	require.NoError(t, err)
	assert.Contains(t, out, "latitude:")
	assert.Contains(t, out, "48.85")
	assert.Contains(t, out, "2.35")
}

func TestPositionDeclinedEnable(t *testing.T) {
	out, err := run(t, "enabled: false\n", "position", "--prompt", "no")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out, "UserDeclinedEnable: location services not enabled")
	assert.NotContains(t, out, "latitude")
}

func TestPositionAcquisitionFailed(t *testing.T) {
	out, err := run(t, "authorization: granted\nfetch_error: kCLErrorDomain 1\n", "position", "--prompt", "yes")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out, "AcquisitionFailed: kCLErrorDomain 1")
}

func TestAuthorized(t *testing.T) {
	out, err := run(t, "authorization: restricted\n", "authorized", "--prompt", "no")
	require.NoError(t, err)
	assert.Contains(t, out, "authorized:")
	assert.Contains(t, out, "true")
}

func TestChangeAuthorizationRevokes(t *testing.T) {
	profile := "authorization: granted\nsettings:\n  authorization: denied\n"
	out, err := run(t, profile, "change-authorization", "--prompt", "yes")
	require.NoError(t, err)
	assert.Contains(t, out, "false")
}

func TestBadPromptMode(t *testing.T) {
	_, err := run(t, "", "authorized", "--prompt", "maybe")
	assert.ErrorContains(t, err, "prompt: must be")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, Execute(context.Background()))
	assert.Contains(t, out.String(), "geoctl version "+Version)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
