package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// maxErrorBody caps how much of an upstream error body is kept.
const maxErrorBody = 256

// HTTPClientConfig bundles the HTTP client and the optional outbound pacing.
type HTTPClientConfig struct {
	Client  *http.Client
	Limiter *rate.Limiter // nil disables pacing
}

var errNoHTTPClient = errors.New("http client not configured")

// statusError is an upstream answer that counts as a breaker failure.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.status)
}

type response struct {
	status int
	body   []byte
}

// doRequest executes req once, behind the limiter and the circuit breaker.
// Transport failures, 429 and 5xx answers count against the breaker; other
// non-2xx answers do not. There are no retries. Every error returned is a
// classified *weather.Error.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, weather.NewError(weather.KindUnknown, weather.ErrUnknown.Message, errNoHTTPClient)
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, weather.NewError(weather.KindNetwork, "request canceled while waiting for the weather service", err)
		}
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &statusError{status: resp.StatusCode, body: truncate(string(body))}
		}
		return &response{status: resp.StatusCode, body: body}, nil
	})

	if err != nil {
		// If circuit is open, fail fast.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, weather.NewError(weather.KindNetwork, "weather service temporarily unavailable", err)
		}
		var se *statusError
		if errors.As(err, &se) {
			return nil, weather.FromStatus(se.status, se.body)
		}
		return nil, weather.NewError(weather.KindNetwork, weather.ErrNetwork.Message, err)
	}

	resp, ok := result.(*response)
	if !ok {
		return nil, weather.NewError(weather.KindUnknown, weather.ErrUnknown.Message,
			fmt.Errorf("unexpected result type from circuit breaker"))
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, weather.FromStatus(resp.status, truncate(string(resp.body)))
	}
	return resp.body, nil
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
