package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/skycast/weather-dashboard/internal/weather"
)

const weatherAPIBaseURL = "https://api.weatherapi.com/v1/current.json"

// WeatherAPI.com signals "no matching location found" with this error code in
// a 400 body rather than a 404 status.
const weatherAPICodeNoMatch = 1006

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewWeatherAPIProvider builds the provider. A missing credential is a
// configuration error surfaced here, before any request is served.
func NewWeatherAPIProvider(client *http.Client, apiKey, baseURL string) (*WeatherAPIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, weather.NewError(weather.KindConfig, "WeatherAPI.com API key is not configured")
	}
	if baseURL == "" {
		baseURL = weatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("weatherapi"),
	}, nil
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Current(ctx context.Context, q weather.Query) (weather.Conditions, error) {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("aqi", "no")
	// WeatherAPI uses a single "q" parameter for both variants.
	if q.HasCoordinates() {
		values.Set("q", fmt.Sprintf("%f,%f", *q.Lat, *q.Lon))
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

	if resp.StatusCode == http.StatusBadRequest {
		var body struct {
			Error struct {
				Code int `json:"code"`
			} `json:"error"`
		}
		if decErr := json.NewDecoder(resp.Body).Decode(&body); decErr == nil && body.Error.Code == weatherAPICodeNoMatch {
			return weather.Conditions{}, weather.NewError(weather.KindNotFound, "city not found, please check the spelling and try again")
		}
		return weather.Conditions{}, weather.NewError(weather.KindUpstream, "weather service error, please try again")
	}
	if resp.StatusCode != http.StatusOK {
		return weather.Conditions{}, statusError(resp)
	}

	var payload weatherAPIPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Conditions{}, weather.NewError(weather.KindUpstream, "invalid response from weather service")
	}

	return normalizeWeatherAPI(payload)
}

// weatherAPIPayload mirrors the subset of current.json we consume.
type weatherAPIPayload struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC      *float64 `json:"temp_c"`
		FeelslikeC float64  `json:"feelslike_c"`
		Humidity   int      `json:"humidity"`
		PressureMb float64  `json:"pressure_mb"`
		WindKph    float64  `json:"wind_kph"`
		WindDegree *int     `json:"wind_degree"`
		Cloud      int      `json:"cloud"`
		Condition  struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
}

// normalizeWeatherAPI maps a WeatherAPI.com payload onto the canonical record.
// Pressure arrives in millibars, which are numerically hPa, and wind is already
// km/h. current.json carries no sunrise/sunset, so those stay nil. A missing
// temperature means the provider schema drifted from this mapping, which is a
// bug on our side of the contract, not a user mistake.
func normalizeWeatherAPI(p weatherAPIPayload) (weather.Conditions, error) {
	if p.Current.TempC == nil {
		return weather.Conditions{}, weather.NewError(weather.KindInternal, "weather service returned an incomplete response")
	}

	return weather.Conditions{
		City:             p.Location.Name,
		Country:          p.Location.Country,
		TemperatureC:     *p.Current.TempC,
		FeelsLikeC:       p.Current.FeelslikeC,
		HumidityPct:      p.Current.Humidity,
		PressureHpa:      p.Current.PressureMb,
		WindSpeedKph:     p.Current.WindKph,
		WindDirectionDeg: p.Current.WindDegree,
		CloudinessPct:    p.Current.Cloud,
		Description:      p.Current.Condition.Text,
		Icon:             strconv.Itoa(p.Current.Condition.Code),
	}, nil
}
