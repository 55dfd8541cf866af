package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/skycast/weather-dashboard/internal/weather"
)

const testAPIKey = "test-key"

func newWeatherAPIForTest(t *testing.T, upstream *httptest.Server, timeout time.Duration) *WeatherAPIProvider {
	t.Helper()
	client := &http.Client{Timeout: timeout}
	p, err := NewWeatherAPIProvider(client, testAPIKey, upstream.URL)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return p
}

func assertKind(t *testing.T, err error, want weather.Kind) *weather.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", want)
	}
	werr := weather.AsError(err)
	if werr.Kind != want {
		t.Fatalf("expected kind %s, got %s (%s)", want, werr.Kind, werr.Message)
	}
	return werr
}

const weatherAPIBody = `{
	"location": {"name": "London", "country": "United Kingdom"},
	"current": {
		"temp_c": 14.5,
		"feelslike_c": 13.2,
		"humidity": 72,
		"pressure_mb": 1012.0,
		"wind_kph": 20.2,
		"wind_degree": 250,
		"cloud": 75,
		"condition": {"text": "Partly cloudy", "code": 1003}
	}
}`

func TestWeatherAPICurrentSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != testAPIKey {
			t.Errorf("expected key query parameter, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("expected q=London, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(weatherAPIBody))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	got, err := p.Current(context.Background(), weather.Query{City: "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deg := 250
	want := weather.Conditions{
		City:             "London",
		Country:          "United Kingdom",
		TemperatureC:     14.5,
		FeelsLikeC:       13.2,
		HumidityPct:      72,
		PressureHpa:      1012.0,
		WindSpeedKph:     20.2,
		WindDirectionDeg: &deg,
		CloudinessPct:    75,
		Description:      "Partly cloudy",
		Icon:             "1003",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalized conditions mismatch:\n got %+v\nwant %+v", got, want)
	}
	if got.SunriseUnix != nil || got.SunsetUnix != nil {
		t.Fatalf("current.json carries no sunrise/sunset, expected nil")
	}
}

func TestWeatherAPICoordinatesCombinedIntoOneParameter(t *testing.T) {
	var gotQ string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Write([]byte(weatherAPIBody))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	lat, lon := 51.5074, -0.1278
	if _, err := p.Current(context.Background(), weather.Query{Lat: &lat, Lon: &lon}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQ != "51.507400,-0.127800" {
		t.Fatalf("expected combined lat,lon parameter, got %q", gotQ)
	}
}

func TestWeatherAPINoMatchingLocation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 1006, "message": "No matching location found."}}`))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	_, err := p.Current(context.Background(), weather.Query{City: "Zzznotreal"})
	werr := assertKind(t, err, weather.KindNotFound)
	if werr.Kind.Retryable() {
		t.Fatalf("not-found must not be retryable")
	}
}

func TestWeatherAPIRateLimited(t *testing.T) {
	t.Run("with Retry-After header", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer upstream.Close()

		p := newWeatherAPIForTest(t, upstream, time.Second)
		_, err := p.Current(context.Background(), weather.Query{City: "London"})
		werr := assertKind(t, err, weather.KindRateLimited)
		if !werr.Kind.Retryable() {
			t.Fatalf("rate-limited must be retryable")
		}
		if werr.RetryAfter != 120 {
			t.Fatalf("expected retryAfter 120, got %d", werr.RetryAfter)
		}
	})

	t.Run("without Retry-After header", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer upstream.Close()

		p := newWeatherAPIForTest(t, upstream, time.Second)
		_, err := p.Current(context.Background(), weather.Query{City: "London"})
		werr := assertKind(t, err, weather.KindRateLimited)
		if werr.RetryAfter != defaultRetryAfterSeconds {
			t.Fatalf("expected default retryAfter %d, got %d", defaultRetryAfterSeconds, werr.RetryAfter)
		}
	})
}

func TestWeatherAPIBadCredential(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 2006, "message": "API key provided is invalid"}}`))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	werr := assertKind(t, err, weather.KindConfig)

	// The credential must never appear in the user-facing message.
	if strings.Contains(werr.Message, testAPIKey) {
		t.Fatalf("credential leaked into error message: %q", werr.Message)
	}
}

func TestWeatherAPIServerError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	assertKind(t, err, weather.KindUpstream)
}

func TestWeatherAPITimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(weatherAPIBody))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, 50*time.Millisecond)
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	werr := assertKind(t, err, weather.KindTimeout)
	if !werr.Kind.Retryable() {
		t.Fatalf("timeout must be retryable")
	}
}

func TestWeatherAPIConnectionRefused(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // shut down before the request

	p := newWeatherAPIForTest(t, upstream, time.Second)
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	assertKind(t, err, weather.KindUpstream)
}

func TestWeatherAPIMalformedBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location": `))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	assertKind(t, err, weather.KindUpstream)
}

func TestWeatherAPIMissingTemperatureIsInternal(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location": {"name": "London", "country": "UK"}, "current": {"humidity": 50}}`))
	}))
	defer upstream.Close()

	p := newWeatherAPIForTest(t, upstream, time.Second)
	_, err := p.Current(context.Background(), weather.Query{City: "London"})
	assertKind(t, err, weather.KindInternal)
}

func TestWeatherAPIMissingKeyFailsEagerly(t *testing.T) {
	for _, key := range []string{"", "   "} {
		_, err := NewWeatherAPIProvider(&http.Client{}, key, "")
		assertKind(t, err, weather.KindConfig)
	}
}

func TestNormalizeWeatherAPIDeterministic(t *testing.T) {
	var payload weatherAPIPayload
	temp := 14.5
	payload.Location.Name = "London"
	payload.Current.TempC = &temp
	payload.Current.WindKph = 20.2

	first, err := normalizeWeatherAPI(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := normalizeWeatherAPI(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization is not deterministic")
	}
}
