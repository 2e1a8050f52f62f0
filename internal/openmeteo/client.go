package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/meteobot/meteobot/internal/forecast"
)

// DefaultBaseURL is the public open-meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com"

// hourlyVariables are requested positionally; the response echoes them as
// parallel arrays alongside "time".
const hourlyVariables = "temperature_2m,precipitation,wind_speed_10m"

const timeLayout = "2006-01-02T15:04"

// Client fetches hourly forecast series from open-meteo. A call is a single
// attempt: failures are not retried here, only guarded by a circuit breaker
// so a dead provider fails fast instead of burning the timeout budget.
type Client struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client using the given HTTP client (which carries the
// per-call timeout). baseURL may be empty to use the public endpoint.
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		baseURL: baseURL,
		client:  client,
		circuit: cb,
	}
}

// FetchHourly retrieves the provider's default forecast horizon for one
// model as an hourly series. Timestamps are returned in the requested zone.
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64, timezone, providerID string) (forecast.Series, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return forecast.Series{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("hourly", hourlyVariables)
	values.Set("timezone", timezone)
	values.Set("models", providerID)

	u := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return forecast.Series{}, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", forecast.ErrUpstream, execErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: unexpected status %d", forecast.ErrUpstream, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return forecast.Series{}, fmt.Errorf("%w: circuit breaker open", forecast.ErrUpstream)
		}
		return forecast.Series{}, err
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string   `json:"time"`
			Temperature2M []*float64 `json:"temperature_2m"`
			Precipitation []*float64 `json:"precipitation"`
			WindSpeed10M  []*float64 `json:"wind_speed_10m"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return forecast.Series{}, fmt.Errorf("%w: %v", forecast.ErrMalformedResponse, err)
	}

	h := payload.Hourly
	if len(h.Time) == 0 || h.Temperature2M == nil || h.Precipitation == nil || h.WindSpeed10M == nil {
		return forecast.Series{}, fmt.Errorf("%w: missing hourly fields", forecast.ErrMalformedResponse)
	}
	if len(h.Temperature2M) != len(h.Time) || len(h.Precipitation) != len(h.Time) || len(h.WindSpeed10M) != len(h.Time) {
		return forecast.Series{}, fmt.Errorf("%w: hourly array length mismatch", forecast.ErrMalformedResponse)
	}

	s := forecast.Series{Observations: make([]forecast.Observation, 0, len(h.Time))}
	for i, ts := range h.Time {
		t, err := time.ParseInLocation(timeLayout, ts, loc)
		if err != nil {
			return forecast.Series{}, fmt.Errorf("%w: bad timestamp %q", forecast.ErrMalformedResponse, ts)
		}
		s.Observations = append(s.Observations, forecast.Observation{
			Time:          t,
			Temperature:   h.Temperature2M[i],
			Precipitation: h.Precipitation[i],
			WindSpeed:     h.WindSpeed10M[i],
		})
	}
	return s, nil
}
