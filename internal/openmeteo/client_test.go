package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meteobot/meteobot/internal/forecast"
)

const hourlyBody = `{
	"hourly": {
		"time": ["2025-08-19T00:00", "2025-08-19T01:00", "2025-08-19T02:00"],
		"temperature_2m": [20.1, 20.5, null],
		"precipitation": [0.0, 0.2, 0.0],
		"wind_speed_10m": [10.0, 11.5, 12.0]
	}
}`

func TestFetchHourlyParsesSeries(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"hourly":   q.Get("hourly"),
			"timezone": q.Get("timezone"),
			"models":   q.Get("models"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(hourlyBody))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	s, err := c.FetchHourly(context.Background(), 22.26, 69.40, "UTC", "gfs_seamless")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["hourly"] != "temperature_2m,precipitation,wind_speed_10m" {
		t.Errorf("unexpected hourly param: %s", gotQuery["hourly"])
	}
	if gotQuery["timezone"] != "UTC" {
		t.Errorf("unexpected timezone param: %s", gotQuery["timezone"])
	}
	if gotQuery["models"] != "gfs_seamless" {
		t.Errorf("unexpected models param: %s", gotQuery["models"])
	}

	if got := len(s.Observations); got != 3 {
		t.Fatalf("expected 3 observations, got %d", got)
	}

	first := s.Observations[0]
	want := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	if !first.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, first.Time)
	}
	if first.Temperature == nil || *first.Temperature != 20.1 {
		t.Errorf("unexpected first temperature: %v", first.Temperature)
	}

	// Provider gaps arrive as null and must survive as nil, not zero.
	if s.Observations[2].Temperature != nil {
		t.Errorf("expected nil temperature for null sample, got %v", *s.Observations[2].Temperature)
	}
	if s.Observations[2].WindSpeed == nil || *s.Observations[2].WindSpeed != 12.0 {
		t.Errorf("unexpected wind speed: %v", s.Observations[2].WindSpeed)
	}
}

func TestFetchHourlyNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.FetchHourly(context.Background(), 0, 0, "UTC", "gfs_seamless")
	if !errors.Is(err, forecast.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestFetchHourlyMissingHourlyFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly": {"time": ["2025-08-19T00:00"]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.FetchHourly(context.Background(), 0, 0, "UTC", "gfs_seamless")
	if !errors.Is(err, forecast.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestFetchHourlyArrayLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"hourly": {
				"time": ["2025-08-19T00:00", "2025-08-19T01:00"],
				"temperature_2m": [20.1],
				"precipitation": [0.0, 0.1],
				"wind_speed_10m": [10.0, 11.0]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.FetchHourly(context.Background(), 0, 0, "UTC", "gfs_seamless")
	if !errors.Is(err, forecast.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestFetchHourlyInvalidTimezone(t *testing.T) {
	c := NewClient(&http.Client{}, "http://127.0.0.1:0")
	_, err := c.FetchHourly(context.Background(), 0, 0, "Not/AZone", "gfs_seamless")
	if err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestFetchHourlyZoneAwareTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"hourly": {
				"time": ["2025-08-19T12:00"],
				"temperature_2m": [30.0],
				"precipitation": [0.0],
				"wind_speed_10m": [5.0]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	s, err := c.FetchHourly(context.Background(), 22.26, 69.40, "Asia/Kolkata", "gfs_seamless")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	want := time.Date(2025, 8, 19, 12, 0, 0, 0, loc)
	if !s.Observations[0].Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, s.Observations[0].Time)
	}
	if s.Observations[0].Time.Hour() != 12 {
		t.Errorf("expected local hour 12, got %d", s.Observations[0].Time.Hour())
	}
}
