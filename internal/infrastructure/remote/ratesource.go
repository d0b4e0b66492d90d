package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/currency"
	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

// RateSource fetches the currency rate table from an exchange-rate
// endpoint. Rates are quoted against the endpoint's base currency and
// fetched once per session.
type RateSource struct {
	rateURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRateSource creates a rate source for the given endpoint
func NewRateSource(rateURL string, timeout time.Duration, logger *zap.Logger) *RateSource {
	return &RateSource{
		rateURL: rateURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("rates"),
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch retrieves the current rate table
func (s *RateSource) Fetch(ctx context.Context) (currency.Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.rateURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: failed to create rate request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", order.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", order.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", order.ErrTransport, err)
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", order.ErrMalformedResponse, err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("%w: rate table is empty", order.ErrMalformedResponse)
	}

	s.logger.Info("currency rates fetched", zap.Int("currencies", len(parsed.Rates)))
	return currency.Rates(parsed.Rates), nil
}
