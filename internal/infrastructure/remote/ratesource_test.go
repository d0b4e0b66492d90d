package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

func TestRateSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"base": "EUR", "rates": {"EUR": 1.0, "USD": 1.08, "GBP": 0.85}}`)
	}))
	defer server.Close()

	source := NewRateSource(server.URL, time.Second, zap.NewNop())
	rates, err := source.Fetch(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1.08, rates["USD"], 1e-9)
	assert.InDelta(t, 0.85, rates["GBP"], 1e-9)
}

func TestRateSource_Fetch_EmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates": {}}`)
	}))
	defer server.Close()

	source := NewRateSource(server.URL, time.Second, zap.NewNop())
	_, err := source.Fetch(context.Background())

	assert.ErrorIs(t, err, order.ErrMalformedResponse)
}
