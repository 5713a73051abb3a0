package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

const currentBody = `{"name":"Paris","weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],"main":{"temp":21.5,"feels_like":20.9,"humidity":40,"pressure":1015},"wind":{"speed":3.1},"sys":{"country":"FR"},"cod":200}`

const forecastBody = `{"cod":"200","list":[{"dt":1710028800,"main":{"temp":10},"weather":[{"id":500,"description":"light rain"}]},{"dt":1710039600,"main":{"temp":14},"weather":[{"id":800,"description":"clear sky"}]}],"city":{"name":"Paris","country":"FR","timezone":3600}}`

func TestRequestURLsShareParameters(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "secret", "https://example.test/data/2.5/", nil)
	q := weather.ByName("São Paulo")

	current, err := url.Parse(p.requestURL(endpointCurrent, q, weather.UnitImperial))
	if err != nil {
		t.Fatalf("parse current url: %v", err)
	}
	forecast, err := url.Parse(p.requestURL(endpointForecast, q, weather.UnitImperial))
	if err != nil {
		t.Fatalf("parse forecast url: %v", err)
	}

	if current.Path != "/data/2.5/weather" || forecast.Path != "/data/2.5/forecast" {
		t.Fatalf("unexpected paths: %s %s", current.Path, forecast.Path)
	}
	if current.RawQuery != forecast.RawQuery {
		t.Fatalf("expected identical query strings, got %q and %q", current.RawQuery, forecast.RawQuery)
	}

	params := current.Query()
	if params.Get("q") != "São Paulo" || params.Get("units") != "imperial" || params.Get("appid") != "secret" {
		t.Fatalf("unexpected params: %v", params)
	}
}

func TestOpenWeatherCurrentAndForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("zip") != "75001,fr" {
			http.Error(w, `{"cod":"400"}`, http.StatusBadRequest)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/weather"):
			_, _ = w.Write([]byte(currentBody))
		case strings.HasSuffix(r.URL.Path, "/forecast"):
			_, _ = w.Write([]byte(forecastBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "key", srv.URL, rate.NewLimiter(rate.Inf, 1))
	q := weather.ByPostalCode("75001,fr")

	current, err := p.Current(context.Background(), q, weather.UnitMetric)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Name != "Paris" || current.Main.Temp != 21.5 {
		t.Fatalf("unexpected current conditions: %+v", current)
	}
	if cond, ok := current.Primary(); !ok || cond.ID != 800 {
		t.Fatalf("unexpected primary condition: %+v", cond)
	}
	if string(current.Raw) != currentBody {
		t.Fatal("expected raw body to be kept for pass-through")
	}

	forecast, err := p.Forecast(context.Background(), q, weather.UnitMetric)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(forecast.List) != 2 || forecast.City.Name != "Paris" || forecast.List[1].Main.Temp != 14 {
		t.Fatalf("unexpected forecast: %+v", forecast)
	}
}

func TestOpenWeatherErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   *weather.Error
	}{
		{http.StatusNotFound, `{"cod":"404","message":"city not found"}`, weather.ErrLocationNotFound},
		{http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, weather.ErrUnauthorized},
		{http.StatusTooManyRequests, `{"cod":429}`, weather.ErrRateLimited},
		{http.StatusBadRequest, `{"cod":"400","message":"Nothing to geocode"}`, weather.ErrInvalidInput},
		{http.StatusBadGateway, `bad gateway`, weather.ErrUnknown},
		{http.StatusOK, `not json`, weather.ErrUnknown},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))

		p := NewOpenWeatherProvider(srv.Client(), "key", srv.URL, nil)
		_, err := p.Current(context.Background(), weather.ByName("Atlantis"), weather.UnitMetric)
		srv.Close()

		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %s, got %v", tc.status, tc.want.Kind, err)
		}
	}
}

func TestOpenWeatherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	p := NewOpenWeatherProvider(http.DefaultClient, "key", baseURL, nil)
	_, err := p.Forecast(context.Background(), weather.ByName("Paris"), weather.UnitMetric)
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestOpenWeatherMissingKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "", srv.URL, nil)
	_, err := p.Current(context.Background(), weather.ByName("Paris"), weather.UnitMetric)
	if !errors.Is(err, weather.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("expected no upstream call without an api key")
	}
}

func TestLookupJoinFailsWithUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/forecast") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(currentBody))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "key", srv.URL, nil)
	svc := weather.NewService(p, nil, nil)

	if _, err := svc.Lookup(context.Background(), weather.ByName("Paris"), weather.UnitMetric); err == nil {
		t.Fatal("expected lookup to fail when the forecast call fails")
	}
}

func TestCircuitBreakerOpensAndFailsFast(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "key", srv.URL, nil)
	q := weather.ByName("Paris")

	// The breaker trips after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		_, err := p.Current(context.Background(), q, weather.UnitMetric)
		if !errors.Is(err, weather.ErrUnknown) {
			t.Fatalf("call %d: expected upstream 500 as UNKNOWN, got %v", i, err)
		}
	}

	_, err := p.Forecast(context.Background(), q, weather.UnitMetric)
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected open breaker to fail as NETWORK, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 6 {
		t.Fatalf("expected the open breaker to skip the upstream, got %d calls", got)
	}
}

func TestCanceledLimiterWaitIsNetworkError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(currentBody))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "key", srv.URL, rate.NewLimiter(rate.Every(time.Hour), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Current(ctx, weather.ByName("Paris"), weather.UnitMetric)
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected NETWORK, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("expected no upstream call after a canceled wait")
	}
}

func TestCanceledCallsDoNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(currentBody))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "key", srv.URL, nil)
	q := weather.ByName("Paris")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 10; i++ {
		if _, err := p.Current(ctx, q, weather.UnitMetric); err == nil {
			t.Fatalf("call %d: expected canceled call to fail", i)
		}
	}

	current, err := p.Current(context.Background(), q, weather.UnitMetric)
	if err != nil {
		t.Fatalf("expected breaker to stay closed, got %v", err)
	}
	if current.Name != "Paris" || atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("unexpected result %+v after %d calls", current, atomic.LoadInt32(&calls))
	}
}
