package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anurag121124/Weather-Forecast/internal/prefs"
	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// DefaultServerURL is where the local API listens by default.
const DefaultServerURL = "http://localhost:8080"

// Client talks to the local weather API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Lookup fetches current conditions and the raw forecast for q.
func (c *Client) Lookup(ctx context.Context, q weather.LocationQuery, unit weather.Unit) (weather.Result, error) {
	var res weather.Result
	err := c.do(ctx, http.MethodGet, "/api/v1/weather", queryParams(q, unit), nil, &res)
	return res, err
}

// Daily fetches the server-side daily aggregation for q.
func (c *Client) Daily(ctx context.Context, q weather.LocationQuery, unit weather.Unit, tz string) (weather.DailyReport, error) {
	params := queryParams(q, unit)
	if tz != "" {
		params.Set("tz", tz)
	}
	var report weather.DailyReport
	err := c.do(ctx, http.MethodGet, "/api/v1/weather/daily", params, nil, &report)
	return report, err
}

// Preferences returns the stored preferences.
func (c *Client) Preferences(ctx context.Context) (prefs.Preferences, error) {
	var p prefs.Preferences
	err := c.do(ctx, http.MethodGet, "/api/v1/preferences", nil, nil, &p)
	return p, err
}

// SetUnit changes the preferred unit.
func (c *Client) SetUnit(ctx context.Context, unit weather.Unit) error {
	return c.do(ctx, http.MethodPut, "/api/v1/preferences/unit", nil, map[string]string{"unit": string(unit)}, nil)
}

// AddFavorite adds location to the favorites and returns the new list.
func (c *Client) AddFavorite(ctx context.Context, location string) ([]string, error) {
	var out struct {
		Favorites []string `json:"favorites"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/preferences/favorites", nil, map[string]string{"location": location}, &out)
	return out.Favorites, err
}

// RemoveFavorite removes location from the favorites and returns the new list.
func (c *Client) RemoveFavorite(ctx context.Context, location string) ([]string, error) {
	var out struct {
		Favorites []string `json:"favorites"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/v1/preferences/favorites/"+url.PathEscape(location), nil, nil, &out)
	return out.Favorites, err
}

func queryParams(q weather.LocationQuery, unit weather.Unit) url.Values {
	params := url.Values{}
	for k, v := range q.Params() {
		switch k {
		case "q":
			params["location"] = v
		default:
			params[k] = v
		}
	}
	if unit != "" {
		params.Set("unit", string(unit))
	}
	return params
}

// errorPayload mirrors the API's error body.
type errorPayload struct {
	Error   bool         `json:"error"`
	Kind    weather.Kind `json:"kind"`
	Message string       `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return weather.NewError(weather.KindInvalidInput, "invalid request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return weather.NewError(weather.KindNetwork, weather.ErrNetwork.Message, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload errorPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Kind == "" {
			return &weather.Error{
				Kind:    weather.KindUnknown,
				Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
				Status:  resp.StatusCode,
			}
		}
		return &weather.Error{Kind: payload.Kind, Message: payload.Message, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return weather.NewError(weather.KindUnknown, "failed to decode server response", err)
	}
	return nil
}
