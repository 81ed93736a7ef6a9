package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stocktrader/internal/modules/ledger"
	"github.com/quantfold/stocktrader/internal/modules/market"
	apptesting "github.com/quantfold/stocktrader/internal/testing"
)

func newTestRouter(t *testing.T) (chi.Router, *ledger.Service) {
	t.Helper()

	st, cleanup := apptesting.NewTestStore(t)
	t.Cleanup(cleanup)

	svc := ledger.NewService(market.NewCatalog(), st, zerolog.Nop())
	handler := NewHandler(svc, zerolog.Nop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, svc
}

func doRequest(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleBuy(t *testing.T) {
	router, svc := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/trades/buy", `{"symbol":"AAPL","quantity":10,"price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var tx ledger.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, "AAPL", tx.Symbol)
	assert.Equal(t, ledger.SideBuy, tx.Side)
	assert.Equal(t, int64(10), tx.Quantity)
	assert.NotEmpty(t, tx.OrderID)

	positions := svc.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, int64(10), positions[0].Quantity)
}

func TestHandleBuy_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	testCases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "malformed body",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown symbol",
			body:       `{"symbol":"ZZZZ","quantity":1,"price":100}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "zero quantity",
			body:       `{"symbol":"AAPL","quantity":0,"price":100}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative price",
			body:       `{"symbol":"AAPL","quantity":1,"price":-5}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/trades/buy", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleSell_InsufficientHoldings(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/trades/buy", `{"symbol":"AAPL","quantity":2,"price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/trades/sell", `{"symbol":"AAPL","quantity":5,"price":110}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleGetPortfolio(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/trades/buy", `{"symbol":"MSFT","quantity":3,"price":300}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Positions []PositionView `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Positions, 1)
	assert.Equal(t, "MSFT", resp.Positions[0].Symbol)
	assert.InDelta(t, 900.0, resp.Positions[0].MarketValue, 1e-9)
	assert.InDelta(t, 0.0, resp.Positions[0].GainLoss, 1e-9)
}

func TestHandleGetSummary(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/trades/buy", `{"symbol":"AAPL","quantity":10,"price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/portfolio/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary ledger.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.PositionCount)
	assert.InDelta(t, 1000.0, summary.TotalCost, 1e-9)
}

func TestHandleGetTrades(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 4; i++ {
		rec := doRequest(t, router, http.MethodPost, "/trades/buy", `{"symbol":"AAPL","quantity":1,"price":100}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/trades?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []ledger.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 2)

	rec = doRequest(t, router, http.MethodGet, "/trades?limit=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetReport(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/trades/buy", `{"symbol":"AAPL","quantity":2,"price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/trades/sell", `{"symbol":"AAPL","quantity":1,"price":110}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/trades/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report ledger.ActivityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.TradeCount)
	assert.Equal(t, 1, report.BuyCount)
	assert.Equal(t, 1, report.SellCount)
}
