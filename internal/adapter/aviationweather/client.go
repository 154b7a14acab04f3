package aviationweather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	"github.com/couchcryptid/metar-entity-sync/internal/observability"
)

// DefaultBaseURL is the public Aviation Weather Center data API.
const DefaultBaseURL = "https://aviationweather.gov/api/data"

const userAgent = "metar-entity-sync/1.0"

// Client implements pipeline.ObservationSource against the Aviation Weather
// Center METAR endpoint. All stations are requested in one call per cycle.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a METAR API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch retrieves the latest observation for each station. Transport, status,
// and top-level decode failures wrap domain.ErrCycleFetch; problems with a
// single station are reported in that station's result.
func (c *Client) Fetch(ctx context.Context, stationIDs []string) (map[string]domain.ObservationResult, error) {
	params := url.Values{
		"ids":    {strings.Join(stationIDs, ",")},
		"format": {"json"},
		"taf":    {"false"},
		"hours":  {"2"},
	}
	fullURL := c.baseURL + "/metar?" + params.Encode()

	start := time.Now()
	body, err := c.doRequest(ctx, fullURL)
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()

	results, err := DecodeObservations(body, stationIDs)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched observations",
		"requested", len(stationIDs),
		"entries", countObservations(results),
	)
	return results, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrCycleFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: metar request: %w", domain.ErrCycleFetch, err)
	}
	defer resp.Body.Close()

	// The API answers 204 when none of the stations reported recently.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: metar API error: status %d: %s", domain.ErrCycleFetch, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrCycleFetch, err)
	}
	return body, nil
}

func countObservations(results map[string]domain.ObservationResult) int {
	n := 0
	for _, r := range results {
		if r.Observation != nil {
			n++
		}
	}
	return n
}
