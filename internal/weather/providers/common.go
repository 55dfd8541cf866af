package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/skycast/weather-dashboard/internal/weather"
)

// defaultRetryAfterSeconds applies when a 429 response carries no Retry-After header.
const defaultRetryAfterSeconds = 60

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes a single outbound call through the provider's circuit
// breaker. Transport failures and 5xx responses count against the breaker and
// are mapped to weather error kinds; any other response is returned to the
// caller with its body unread. There is no retry here: retrying is the
// client's decision, driven by the retry flag in the error response.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, mapTransportError(execErr)
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, weather.NewError(weather.KindUpstream, "weather service error, please try again")
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, weather.NewError(weather.KindUpstream, "weather service is temporarily unavailable, please try again")
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, weather.NewError(weather.KindInternal, "unexpected circuit breaker result")
	}
	return resp, nil
}

// mapTransportError distinguishes a timed-out request from a failed connection.
// The returned messages are user-safe; the raw error never leaves the logs.
func mapTransportError(err error) *weather.Error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return weather.NewError(weather.KindTimeout, "weather service request timed out, please try again")
	}
	return weather.NewError(weather.KindUpstream, "unable to connect to weather service, please try again")
}

// statusError maps a non-200 client-error response onto a weather error kind.
// 401/403 means our credential is bad, which is an operator problem the end
// user must not see detail of.
func statusError(resp *http.Response) *weather.Error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return weather.NewError(weather.KindConfig, "weather service is not properly configured")
	case http.StatusNotFound:
		return weather.NewError(weather.KindNotFound, "city not found, please check the spelling and try again")
	case http.StatusTooManyRequests:
		werr := weather.NewError(weather.KindRateLimited, "service is temporarily busy, please try again in a moment")
		werr.RetryAfter = retryAfterSeconds(resp.Header)
		return werr
	default:
		return weather.NewError(weather.KindUpstream, "weather service error, please try again")
	}
}

// ProbeURL returns the endpoint the health monitor probes for the selected
// provider. An explicit base URL override wins.
func ProbeURL(provider, override string) string {
	if override != "" {
		return override
	}
	if provider == "openweathermap" {
		return openWeatherBaseURL
	}
	return weatherAPIBaseURL
}

func retryAfterSeconds(h http.Header) int {
	v := h.Get("Retry-After")
	if v == "" {
		return defaultRetryAfterSeconds
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultRetryAfterSeconds
	}
	return n
}
