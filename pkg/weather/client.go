// Package weather fetches current conditions from a wttr.in-compatible
// endpoint. One read-only GET per lookup; the connection is scoped to the
// call and released on every path.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public wttr.in endpoint
	DefaultBaseURL = "https://wttr.in"
	// DefaultCity is used when the caller supplies no city
	DefaultCity = "Frisco, Colorado"
	// DefaultTimeout bounds the single outbound request
	DefaultTimeout = 5 * time.Second
)

// Client performs weather lookups against one base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a weather client. An empty baseURL falls back to
// DefaultBaseURL; a zero timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Timeout returns the bound applied to each lookup
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Report holds the fields parsed from the upstream response
type Report struct {
	City            string
	TempF           string
	TempC           string
	Condition       string
	WindMph         string
	Humidity        string
	VisibilityMiles string
}

// wttr.in j1 format, reduced to the fields the report needs
type wttrResponse struct {
	CurrentCondition []struct {
		TempF          string `json:"temp_F"`
		TempC          string `json:"temp_C"`
		WindspeedMiles string `json:"windspeedMiles"`
		Humidity       string `json:"humidity"`
		Visibility     string `json:"visibility"`
		WeatherDesc    []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// Current fetches the current conditions for a city. An empty city uses
// DefaultCity. Failures (timeout, non-2xx status, unparseable body) are
// returned as ordinary errors for the caller to classify.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	if strings.TrimSpace(city) == "" {
		city = DefaultCity
	}

	endpoint := fmt.Sprintf("%s/%s?format=j1", c.baseURL, url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("weather upstream returned status %d for %q", resp.StatusCode, city)
	}

	var decoded wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if len(decoded.CurrentCondition) == 0 {
		return nil, fmt.Errorf("weather response for %q had no current conditions", city)
	}

	current := decoded.CurrentCondition[0]
	report := &Report{
		City:            city,
		TempF:           current.TempF,
		TempC:           current.TempC,
		WindMph:         current.WindspeedMiles,
		Humidity:        current.Humidity,
		VisibilityMiles: current.Visibility,
	}
	if len(current.WeatherDesc) > 0 {
		report.Condition = current.WeatherDesc[0].Value
	}
	return report, nil
}
