package horizonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

// Client implements domain.Provider using the Horizon western-horoscope API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Horizon API client.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

var _ domain.Provider = (*Client)(nil)

// FetchChart posts a natal-chart request and decodes the response into the
// provider-agnostic raw shape. The Horizon API cannot compute a chart without
// a birthplace coordinate, so an absent one fails before any network attempt.
func (c *Client) FetchChart(ctx context.Context, req domain.ProviderRequest) (domain.RawChart, error) {
	if err := req.RequireCoordinate(); err != nil {
		return domain.RawChart{}, err
	}

	body, err := json.Marshal(encodeRequest(req))
	if err != nil {
		return domain.RawChart{}, fmt.Errorf("encode chart request: %w", err)
	}

	u := c.baseURL + "/western/natal-chart"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return domain.RawChart{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.RawChart{}, fmt.Errorf("chart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.RawChart{}, fmt.Errorf("horizon API error: status %d: %s", resp.StatusCode, respBody)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return domain.RawChart{}, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("chart fetched",
		"planets", len(wire.Planets),
		"houses", len(wire.Houses),
		"aspects", len(wire.Aspects))

	return wire.toRawChart(), nil
}
