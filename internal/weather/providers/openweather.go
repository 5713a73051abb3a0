package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

const (
	endpointCurrent  = "weather"
	endpointForecast = "forecast"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates a provider. An empty baseURL selects
// DefaultOpenWeatherURL; a nil limiter disables pacing.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string, limiter *rate.Limiter) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// A call canceled by its caller says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Limiter: limiter,
		},
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Current fetches current conditions.
func (p *OpenWeatherProvider) Current(ctx context.Context, q weather.LocationQuery, unit weather.Unit) (weather.CurrentConditions, error) {
	var out weather.CurrentConditions
	if err := p.fetch(ctx, endpointCurrent, q, unit, &out); err != nil {
		return weather.CurrentConditions{}, err
	}
	return out, nil
}

// Forecast fetches the 5-day/3-hour forecast.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, q weather.LocationQuery, unit weather.Unit) (weather.RawForecast, error) {
	var out weather.RawForecast
	if err := p.fetch(ctx, endpointForecast, q, unit, &out); err != nil {
		return weather.RawForecast{}, err
	}
	return out, nil
}

// requestURL builds the upstream URL. Current and forecast URLs differ only
// in the endpoint path.
func (p *OpenWeatherProvider) requestURL(endpoint string, q weather.LocationQuery, unit weather.Unit) string {
	values := q.Params()
	values.Set("units", string(unit))
	values.Set("appid", p.apiKey)
	return fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, endpoint string, q weather.LocationQuery, unit weather.Unit, out any) error {
	if p.apiKey == "" {
		return weather.NewError(weather.KindUnauthorized, "weather service api key is not configured", nil)
	}

	req, err := http.NewRequest(http.MethodGet, p.requestURL(endpoint, q, unit), nil)
	if err != nil {
		return weather.NewError(weather.KindInvalidInput, "could not build the weather request", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return weather.NewError(weather.KindUnknown, "weather service returned an unreadable response", err)
	}
	return nil
}
