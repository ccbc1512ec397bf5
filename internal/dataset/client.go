package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	defaultQPS     = 2

	// calendarAppMarker flags distributions that are pre-built exports for
	// a calendar application rather than raw yearly data.
	calendarAppMarker = "Google"
)

// ErrSourceUnavailable marks transport-level failures and structurally
// unexpected responses from the dataset source. It is the only error class
// that aborts a run.
var ErrSourceUnavailable = errors.New("dataset source unavailable")

// Client talks to the data.gov.tw catalog API and resource download URLs.
type Client struct {
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewClient creates a catalog client. qps bounds the download request rate
// against the open-data portal; zero or negative picks a polite default.
func NewClient(apiURL string, timeout time.Duration, qps float64, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if qps <= 0 {
		qps = defaultQPS
	}
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Resources returns the (url, name) pairs for every CSV distribution in
// the catalog, in catalog order, excluding calendar-app exports.
func (c *Client) Resources(ctx context.Context) ([]Resource, error) {
	body, err := c.get(ctx, c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}

	var catalog catalogResponse
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("%w: malformed catalog response: %v", ErrSourceUnavailable, err)
	}
	if catalog.Result == nil || catalog.Result.Distribution == nil {
		return nil, fmt.Errorf("%w: catalog response missing result/distribution", ErrSourceUnavailable)
	}

	var resources []Resource
	for _, d := range catalog.Result.Distribution {
		if !strings.EqualFold(d.ResourceFormat, "CSV") {
			continue
		}
		if strings.Contains(d.ResourceDescription, calendarAppMarker) {
			continue
		}
		resources = append(resources, Resource{
			URL:  d.ResourceDownloadURL,
			Name: d.ResourceDescription,
		})
	}

	c.logger.Info("Catalog resolved",
		zap.Int("distributions", len(catalog.Result.Distribution)),
		zap.Int("csv_resources", len(resources)))

	return resources, nil
}

// Download fetches the raw bytes of one resource, rate-limited.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	c.logger.Info("Downloading resource", zap.String("url", url))

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("resource download: %w", err)
	}
	return body, nil
}

// get performs a GET with retries and linear backoff; all failure modes
// collapse into ErrSourceUnavailable.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		body, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err
		c.logger.Warn("Request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", defaultRetries),
			zap.Error(err))

		if attempt < defaultRetries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: after %d attempts: %v", ErrSourceUnavailable, defaultRetries, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return body, nil
}
