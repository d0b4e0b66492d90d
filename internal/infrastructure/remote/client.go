// Package remote implements the marketplace REST adapter: paginated
// order fetches, the fulfil mutation, and the currency rate source.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the marketplace orders API. It is stateless per
// call; single-flight enforcement is the order manager's job.
type Client struct {
	cfg        config.RemoteConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a marketplace API client
func NewClient(cfg config.RemoteConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("remote"),
	}
}

type listResponse struct {
	Offset     *int              `json:"offset"`
	TotalCount *int              `json:"total_count"`
	Orders     []json.RawMessage `json:"orders"`
}

// FetchPage fetches one page of the seller's orders
func (c *Client) FetchPage(ctx context.Context, offset, limit int) (*order.Page, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, http.MethodGet, c.cfg.BaseURL+"/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", order.ErrMalformedResponse, err)
	}
	if resp.Offset == nil || resp.TotalCount == nil {
		return nil, fmt.Errorf("%w: response root is missing offset/total_count", order.ErrMalformedResponse)
	}

	page := &order.Page{
		Offset:     *resp.Offset,
		TotalCount: *resp.TotalCount,
		Orders:     make([]order.Order, 0, len(resp.Orders)),
	}

	for _, raw := range resp.Orders {
		page.Orders = append(page.Orders, c.parseAndReport(raw))
	}

	return page, nil
}

type shipRequest struct {
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code"`
	TrackingURL  string `json:"tracking_url"`
}

// MarkShipped marks an order fulfilled on the remote and returns the
// updated order as the remote now sees it
func (c *Client) MarkShipped(ctx context.Context, id int64, trackingCode, trackingURL string) (*order.Order, error) {
	payload, err := json.Marshal(shipRequest{
		Status:       "fulfilled",
		TrackingCode: trackingCode,
		TrackingURL:  trackingURL,
	})
	if err != nil {
		return nil, fmt.Errorf("remote: encode ship request: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("%s/orders/%d", c.cfg.BaseURL, id), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: ship response is not JSON", order.ErrMalformedResponse)
	}

	updated := c.parseAndReport(body)
	return &updated, nil
}

// parseAndReport parses one order object and logs any diagnostics:
// missing required fields at warn, unknown fields (schema drift) at info.
func (c *Client) parseAndReport(raw json.RawMessage) order.Order {
	var diags, drift []string
	o := parseOrder(raw, &diags, &drift)

	if len(diags) > 0 {
		c.logger.Warn("order record has missing or malformed fields",
			zap.Int64("order_id", o.ID),
			zap.Strings("diagnostics", diags),
		)
	}
	if len(drift) > 0 {
		c.logger.Info("order record has unknown fields, API schema may have grown",
			zap.Int64("order_id", o.ID),
			zap.Strings("fields", drift),
		)
	}
	return o
}

// doRequest performs one HTTP request against the marketplace API and
// maps failures onto the domain error taxonomy
func (c *Client) doRequest(ctx context.Context, method, rawURL string, body io.Reader) ([]byte, error) {
	if c.cfg.APIKey == "" {
		// Precondition failure, reported before any network I/O
		return nil, order.ErrAPIKeyMissing
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("remote: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", order.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", order.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", order.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", order.ErrTransport, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure Client implements the order source port
var _ order.Source = (*Client)(nil)
