package geolocation

// AuthorizationStatus is the raw authorization value reported by the device.
// The negotiator never inspects it except through [IsAuthorizedStatus].
type AuthorizationStatus string

// Authorization status values.
const (
	StatusAlways           AuthorizationStatus = "always"
	StatusWhenInUse        AuthorizationStatus = "when_in_use"
	StatusGranted          AuthorizationStatus = "granted"
	StatusGrantedWhenInUse AuthorizationStatus = "granted_when_in_use"
	StatusRestricted       AuthorizationStatus = "restricted"
	StatusDenied           AuthorizationStatus = "denied"
	StatusDeniedAlways     AuthorizationStatus = "denied_always"
	StatusNotDetermined    AuthorizationStatus = "not_determined"
	StatusUnknown          AuthorizationStatus = "unknown"
)

// IsAuthorizedStatus reports whether status lets the application read the
// location. Restricted counts as authorized: the device policy, not the
// user, governs access and prompting would not change it.
func IsAuthorizedStatus(status AuthorizationStatus) bool {
	switch status {
	case StatusAlways, StatusWhenInUse, StatusGranted, StatusGrantedWhenInUse, StatusRestricted:
		return true
	default:
		return false
	}
}

// Authorized is shorthand for IsAuthorizedStatus(s).
func (s AuthorizationStatus) Authorized() bool {
	return IsAuthorizedStatus(s)
}
