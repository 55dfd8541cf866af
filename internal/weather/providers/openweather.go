package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/skycast/weather-dashboard/internal/weather"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider builds the provider. A missing credential is a
// configuration error surfaced here, before any request is served.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) (*OpenWeatherProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, weather.NewError(weather.KindConfig, "OpenWeatherMap API key is not configured")
	}
	if baseURL == "" {
		baseURL = openWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openweather"),
	}, nil
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Current(ctx context.Context, q weather.Query) (weather.Conditions, error) {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	// OpenWeatherMap splits coordinates into two parameters.
	if q.HasCoordinates() {
		values.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*q.Lon, 'f', -1, 64))
	} else {
		values.Set("q", q.City)
	}

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return weather.Conditions{}, weather.NewError(weather.KindInternal, "failed to build weather request")
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Conditions{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Conditions{}, statusError(resp)
	}

	var payload openWeatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Conditions{}, weather.NewError(weather.KindUpstream, "invalid response from weather service")
	}

	return normalizeOpenWeather(payload)
}

// openWeatherPayload mirrors the subset of /data/2.5/weather we consume.
type openWeatherPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  int      `json:"humidity"`
		Pressure  float64  `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   *int    `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// normalizeOpenWeather maps an OpenWeatherMap payload onto the canonical
// record. With units=metric the wind speed arrives in m/s and is converted to
// km/h. Wind direction is omitted by the API when unknown, so the pointer
// carries the distinction through. A missing temperature means the provider
// schema drifted from this mapping.
func normalizeOpenWeather(p openWeatherPayload) (weather.Conditions, error) {
	if p.Main.Temp == nil {
		return weather.Conditions{}, weather.NewError(weather.KindInternal, "weather service returned an incomplete response")
	}

	c := weather.Conditions{
		City:             p.Name,
		Country:          p.Sys.Country,
		TemperatureC:     *p.Main.Temp,
		FeelsLikeC:       p.Main.FeelsLike,
		HumidityPct:      p.Main.Humidity,
		PressureHpa:      p.Main.Pressure,
		WindSpeedKph:     p.Wind.Speed * 3.6,
		WindDirectionDeg: p.Wind.Deg,
		CloudinessPct:    p.Clouds.All,
		SunriseUnix:      p.Sys.Sunrise,
		SunsetUnix:       p.Sys.Sunset,
	}
	if len(p.Weather) > 0 {
		c.Description = p.Weather[0].Description
		c.Icon = p.Weather[0].Icon
	}
	return c, nil
}
