package platform

import "fmt"

// LocationAuthorization is the raw authorization status reported by native
// code for this application's location access. The values mirror what iOS
// and Android report; interpreting them is left to callers.
type LocationAuthorization string

// Location authorization values.
const (
	// AuthorizationAlways grants access in foreground and background (iOS).
	AuthorizationAlways LocationAuthorization = "always"

	// AuthorizationWhenInUse grants access while the app is in use (iOS).
	AuthorizationWhenInUse LocationAuthorization = "when_in_use"

	// AuthorizationGranted grants access (Android).
	AuthorizationGranted LocationAuthorization = "granted"

	// AuthorizationGrantedWhenInUse grants foreground-only access (Android 10+).
	AuthorizationGrantedWhenInUse LocationAuthorization = "granted_when_in_use"

	// AuthorizationRestricted indicates a system policy governs access
	// (parental controls, MDM).
	AuthorizationRestricted LocationAuthorization = "restricted"

	// AuthorizationDenied indicates the user denied access. The app may ask again.
	AuthorizationDenied LocationAuthorization = "denied"

	// AuthorizationDeniedAlways indicates the user denied access permanently.
	// No dialog will be shown again; only the settings screen can change it.
	AuthorizationDeniedAlways LocationAuthorization = "denied_always"

	// AuthorizationNotDetermined indicates the user has not been asked yet.
	AuthorizationNotDetermined LocationAuthorization = "not_determined"

	// AuthorizationUnknown indicates the status could not be read.
	AuthorizationUnknown LocationAuthorization = "unknown"
)

// settled reports whether requesting authorization cannot change the status,
// in which case no dialog is shown and the current status is the answer.
func (a LocationAuthorization) settled() bool {
	switch a {
	case AuthorizationAlways, AuthorizationWhenInUse, AuthorizationGranted,
		AuthorizationGrantedWhenInUse, AuthorizationRestricted, AuthorizationDeniedAlways:
		return true
	default:
		return false
	}
}

// AuthorizationChange is emitted on drift/permissions/changes when the user
// answers the authorization dialog or changes the setting externally.
type AuthorizationChange struct {
	// Permission is the permission name, "location" for location access.
	Permission string
	// Status is the new status.
	Status LocationAuthorization
}

func parseAuthorization(result any) LocationAuthorization {
	if m, ok := parseMap(result); ok {
		if status := parseString(m["status"]); status != "" {
			return LocationAuthorization(status)
		}
	}
	return AuthorizationUnknown
}

func parseAuthorizationChange(data any) (AuthorizationChange, error) {
	m, ok := parseMap(data)
	if !ok {
		return AuthorizationChange{}, fmt.Errorf("expected map, got %T", data)
	}
	status := parseString(m["status"])
	if status == "" {
		return AuthorizationChange{}, fmt.Errorf("authorization change without status")
	}
	return AuthorizationChange{
		Permission: parseString(m["permission"]),
		Status:     LocationAuthorization(status),
	}, nil
}
