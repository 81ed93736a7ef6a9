package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stocktrader/internal/modules/market"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	handler := NewHandler(market.NewCatalog(), zerolog.Nop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleListStocks(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/stocks")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stocks []market.Instrument `json:"stocks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Stocks, 5)
}

func TestHandleSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/stocks/search?symbol=aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var inst market.Instrument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inst))
	assert.Equal(t, "AAPL", inst.Symbol)
	assert.Equal(t, "Apple Inc.", inst.Name)
}

func TestHandleSearch_Errors(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/stocks/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, "/stocks/search?symbol=ZZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
