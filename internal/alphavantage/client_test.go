package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Options{
		BaseURL:    srv.URL,
		APIKey:     "testkey",
		Timeout:    5 * time.Second,
		CacheTTL:   time.Minute,
		RatePerMin: 1000,
	})
	return client, srv
}

func TestClientQueryShape(t *testing.T) {
	var gotQuery string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("path: got %s, want /query", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"annualReports": []}`))
	}))

	if _, err := client.BalanceSheets(context.Background(), "IBM"); err != nil {
		t.Fatalf("BalanceSheets() error: %v", err)
	}

	params, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatal(err)
	}
	if got := params.Get("function"); got != "BALANCE_SHEET" {
		t.Errorf("function: got %q", got)
	}
	if got := params.Get("symbol"); got != "IBM" {
		t.Errorf("symbol: got %q", got)
	}
	if got := params.Get("apikey"); got != "testkey" {
		t.Errorf("apikey: got %q", got)
	}
	if params.Has("outputsize") {
		t.Error("outputsize should be omitted when empty")
	}
}

func TestClientCachesPerFunctionAndSymbol(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"annualReports": [{"fiscalDateEnding": "2024-12-31"}]}`))
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.CashFlows(ctx, "IBM"); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls.Load())
	}

	// A different symbol misses the cache.
	if _, err := client.CashFlows(ctx, "MSFT"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", calls.Load())
	}

	// A different function for the same symbol misses too.
	if _, err := client.BalanceSheets(ctx, "IBM"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 upstream calls, got %d", calls.Load())
	}
}

func TestClientUpstreamError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))

	_, err := client.Overview(context.Background(), "IBM")
	var upstream *ErrUpstreamHTTP
	if !errors.As(err, &upstream) {
		t.Fatalf("expected ErrUpstreamHTTP, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("Status: got %d, want 429", upstream.Status)
	}
}

func TestClientContextCancellation(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.MonthlyAdjusted(ctx, "IBM"); err == nil {
		t.Error("expected error after context cancellation")
	}
}
