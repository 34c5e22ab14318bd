package platform

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// locationBridge answers drift/location calls from a canned table and records
// every invoked method.
type locationBridge struct {
	mu        sync.Mutex
	responses map[string]any
	errs      map[string]error
	calls     []string
	// onInvoke runs after recording the call and before replying.
	onInvoke func(method string)
	// block, when set, holds getCurrentLocation until closed.
	block chan struct{}
}

func (b *locationBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	b.mu.Lock()
	b.calls = append(b.calls, method)
	resp, err := b.responses[method], b.errs[method]
	hook, block := b.onInvoke, b.block
	b.mu.Unlock()

	if hook != nil {
		hook(method)
	}
	if block != nil && method == "getCurrentLocation" {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Encode(resp)
}
func (b *locationBridge) StartEventStream(string) error { return nil }
func (b *locationBridge) StopEventStream(string) error  { return nil }

func (b *locationBridge) called(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == method {
			n++
		}
	}
	return n
}

func TestLocationServiceInitialization(t *testing.T) {
	if Location == nil {
		t.Fatal("Location service is nil")
	}
	if Location.channel.Name() != "drift/location" {
		t.Errorf("expected channel name %q, got %q", "drift/location", Location.channel.Name())
	}
}

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name      string
		response  any
		want      bool
		wantError bool
	}{
		{name: "enabled", response: map[string]any{"enabled": true}, want: true},
		{name: "disabled", response: map[string]any{"enabled": false}, want: false},
		{name: "string flag", response: map[string]any{"enabled": "true"}, want: true},
		{name: "nil response", response: nil, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := &locationBridge{responses: map[string]any{"isEnabled": tt.response}}
			SetupTestBridge(t.Cleanup, bridge)

			got, err := Location.IsEnabled(context.Background())
			if tt.wantError {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsEnabledWithoutBridge(t *testing.T) {
	t.Cleanup(ResetForTest)
	SetNativeBridge(nil)

	_, err := Location.IsEnabled(context.Background())
	if !errors.Is(err, ErrPlatformUnavailable) {
		t.Errorf("expected ErrPlatformUnavailable, got %v", err)
	}
}

func TestAuthorizationStatus(t *testing.T) {
	tests := []struct {
		name     string
		response any
		want     LocationAuthorization
	}{
		{"when in use", map[string]any{"status": "when_in_use"}, AuthorizationWhenInUse},
		{"denied", map[string]any{"status": "denied"}, AuthorizationDenied},
		{"missing status", map[string]any{}, AuthorizationUnknown},
		{"not a map", "granted", AuthorizationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := &locationBridge{responses: map[string]any{"authorizationStatus": tt.response}}
			SetupTestBridge(t.Cleanup, bridge)

			got, err := Location.AuthorizationStatus(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRequestAuthorizationSettledSkipsDialog(t *testing.T) {
	bridge := &locationBridge{responses: map[string]any{
		"authorizationStatus": map[string]any{"status": "denied_always"},
	}}
	SetupTestBridge(t.Cleanup, bridge)

	got, err := Location.RequestAuthorization(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != AuthorizationDeniedAlways {
		t.Errorf("expected %q, got %q", AuthorizationDeniedAlways, got)
	}
	if n := bridge.called("requestAuthorization"); n != 0 {
		t.Errorf("expected no dialog, requestAuthorization called %d times", n)
	}
}

func TestRequestAuthorizationSynchronousReply(t *testing.T) {
	bridge := &locationBridge{responses: map[string]any{
		"authorizationStatus":  map[string]any{"status": "not_determined"},
		"requestAuthorization": map[string]any{"status": "granted_when_in_use"},
	}}
	SetupTestBridge(t.Cleanup, bridge)

	got, err := Location.RequestAuthorization(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != AuthorizationGrantedWhenInUse {
		t.Errorf("expected %q, got %q", AuthorizationGrantedWhenInUse, got)
	}
}

func TestRequestAuthorizationAnswerByEvent(t *testing.T) {
	bridge := &locationBridge{responses: map[string]any{
		"authorizationStatus": map[string]any{"status": "not_determined"},
	}}
	bridge.onInvoke = func(method string) {
		if method != "requestAuthorization" {
			return
		}
		// Another permission first: must be ignored.
		other, _ := json.Marshal(map[string]any{"permission": "camera", "status": "granted"})
		_ = HandleEvent("drift/permissions/changes", other)
		answer, _ := json.Marshal(map[string]any{"permission": "location", "status": "denied"})
		_ = HandleEvent("drift/permissions/changes", answer)
	}
	SetupTestBridge(t.Cleanup, bridge)

	got, err := Location.RequestAuthorization(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != AuthorizationDenied {
		t.Errorf("expected %q, got %q", AuthorizationDenied, got)
	}
}

func TestRequestAuthorizationCanceled(t *testing.T) {
	bridge := &locationBridge{responses: map[string]any{
		"authorizationStatus": map[string]any{"status": "not_determined"},
	}}
	SetupTestBridge(t.Cleanup, bridge)

	ctx, cancel := context.WithCancel(context.Background())
	bridge.onInvoke = func(method string) {
		if method == "requestAuthorization" {
			cancel()
		}
	}

	_, err := Location.RequestAuthorization(ctx)
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestGetCurrent(t *testing.T) {
	bridge := &locationBridge{responses: map[string]any{
		"getCurrentLocation": map[string]any{
			"latitude":  48.85,
			"longitude": 2.35,
			"accuracy":  12.5,
			"timestamp": 1700000000000,
		},
	}}
	SetupTestBridge(t.Cleanup, bridge)

	got, err := Location.GetCurrent(context.Background(), LocationOptions{HighAccuracy: true, TimeoutMs: 60000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Latitude != 48.85 || got.Longitude != 2.35 {
		t.Errorf("unexpected coordinates %v,%v", got.Latitude, got.Longitude)
	}
	if got.Accuracy != 12.5 {
		t.Errorf("expected accuracy 12.5, got %v", got.Accuracy)
	}
	if got.Timestamp.UnixMilli() != 1700000000000 {
		t.Errorf("unexpected timestamp %v", got.Timestamp)
	}
}

func TestGetCurrentNativeError(t *testing.T) {
	bridge := &locationBridge{errs: map[string]error{
		"getCurrentLocation": NewChannelError("location_error", "kCLErrorDomain 1"),
	}}
	SetupTestBridge(t.Cleanup, bridge)

	_, err := Location.GetCurrent(context.Background(), LocationOptions{})
	var chErr *ChannelError
	if !errors.As(err, &chErr) {
		t.Fatalf("expected *ChannelError, got %v", err)
	}
	if chErr.Message != "kCLErrorDomain 1" {
		t.Errorf("unexpected message %q", chErr.Message)
	}
}

func TestGetCurrentMalformedReply(t *testing.T) {
	bridge := &locationBridge{responses: map[string]any{
		"getCurrentLocation": map[string]any{"latitude": 1.0},
	}}
	SetupTestBridge(t.Cleanup, bridge)

	_, err := Location.GetCurrent(context.Background(), LocationOptions{})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestGetCurrentTimeout(t *testing.T) {
	release := make(chan struct{})
	bridge := &locationBridge{
		responses: map[string]any{"getCurrentLocation": map[string]any{"latitude": 1.0, "longitude": 2.0}},
		block:     release,
	}
	SetupTestBridge(t.Cleanup, bridge)
	t.Cleanup(func() { close(release) })

	clock := clockwork.NewFakeClock()
	Location.SetClock(clock)

	errs := make(chan error, 1)
	go func() {
		_, err := Location.GetCurrent(context.Background(), LocationOptions{TimeoutMs: 5000})
		errs <- err
	}()

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)

	select {
	case err := <-errs:
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("GetCurrent did not time out")
	}
}

func TestLocationOptionsToArgs(t *testing.T) {
	args := LocationOptions{HighAccuracy: true, TimeoutMs: 60000, MaximumAgeMs: 0}.toArgs()
	for _, key := range []string{"highAccuracy", "timeoutMs", "maximumAgeMs"} {
		if _, ok := args[key]; !ok {
			t.Errorf("expected key %q in args", key)
		}
	}
	if args["timeoutMs"] != int64(60000) {
		t.Errorf("expected timeoutMs 60000, got %v", args["timeoutMs"])
	}
}
