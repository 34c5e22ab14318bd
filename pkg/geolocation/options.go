package geolocation

// Position is a location sample. Only the coordinates are kept.
type Position struct {
	Latitude  float64
	Longitude float64
}

// FetchOptions configures a position fetch.
type FetchOptions struct {
	// HighAccuracy requests the best available fix.
	HighAccuracy bool
	// TimeoutMs bounds the fetch, in milliseconds. Zero or negative means
	// no limit.
	TimeoutMs int64
	// MaximumAgeMs accepts a cached fix up to this age. Zero forces a fresh one.
	MaximumAgeMs int64
}

// DefaultFetchOptions are used when GetPosition is called without options.
var DefaultFetchOptions = FetchOptions{
	HighAccuracy: true,
	TimeoutMs:    60000,
	MaximumAgeMs: 0,
}
