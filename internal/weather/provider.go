package weather

import "context"

// Provider abstracts a single upstream weather data source (e.g. WeatherAPI.com,
// OpenWeatherMap). Implementations own the provider-specific request shape and
// response normalization; swapping providers never touches the handler layer.
// Current is given a validated query and returns either normalized conditions
// or an *Error carrying one of the kinds defined in this package.
type Provider interface {
	Name() string
	Current(ctx context.Context, q Query) (Conditions, error)
}
