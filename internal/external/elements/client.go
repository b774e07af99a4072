// Package elements talks to the Elements Energies consumption API.
// All calls to that API go through this client.
package elements

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/httputil"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// ErrNoData marks a day for which the API has no readings. It is a
// valid empty-day answer, not a failure.
var ErrNoData = errors.New("no consumption data for day")

// Client handles communication with the Elements Energies API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a new Elements API client. When cfg.RateLimit is
// positive, requests are throttled process-locally on top of whatever
// shared limiter the HTTP client carries.
func NewClient(cfg config.ElementsConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "elements"),
		baseURL:    cfg.BaseURL,
		limiter:    limiter,
	}
}

// wait applies the local rate limit, if configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
