package weather

// Query identifies the location a client is asking about.
// Exactly one variant must be set: a latitude/longitude pair, or a city name.
type Query struct {
	Lat  *float64
	Lon  *float64
	City string
}

// HasCoordinates reports whether both coordinates are present.
func (q Query) HasCoordinates() bool {
	return q.Lat != nil && q.Lon != nil
}

// Conditions is the normalized current-weather record returned to clients,
// independent of which upstream provider produced it. Units are canonical:
// Celsius, hPa, km/h, percentages as integers.
type Conditions struct {
	City    string `json:"city"`
	Country string `json:"country"`

	TemperatureC float64 `json:"temperature"`
	FeelsLikeC   float64 `json:"feels_like"`
	HumidityPct  int     `json:"humidity"`
	PressureHpa  float64 `json:"pressure"`
	WindSpeedKph float64 `json:"wind_speed"`

	// WindDirectionDeg is nil when the provider did not report a direction;
	// a zero value would wrongly imply north.
	WindDirectionDeg *int `json:"wind_direction"`

	CloudinessPct int    `json:"cloudiness"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`

	// Sunrise/sunset are Unix seconds; nil when the provider's current
	// conditions endpoint does not carry them.
	SunriseUnix *int64 `json:"sunrise"`
	SunsetUnix  *int64 `json:"sunset"`
}
