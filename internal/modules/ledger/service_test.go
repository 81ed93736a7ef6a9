package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stocktrader/internal/modules/market"
	"github.com/quantfold/stocktrader/internal/store"
	apptesting "github.com/quantfold/stocktrader/internal/testing"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	st, cleanup := apptesting.NewTestStore(t)
	t.Cleanup(cleanup)

	return NewService(market.NewCatalog(), st, zerolog.Nop()), st
}

func TestBuy_WeightedAverageInvariant(t *testing.T) {
	svc, _ := newTestService(t)

	// Arbitrary sequence of buys for the same symbol.
	buys := []struct {
		qty   int64
		price float64
	}{
		{qty: 10, price: 100},
		{qty: 5, price: 130},
		{qty: 20, price: 95.5},
		{qty: 1, price: 200},
	}

	var totalQty int64
	var totalCost float64
	for _, b := range buys {
		_, err := svc.Buy("AAPL", b.qty, b.price)
		require.NoError(t, err)
		totalQty += b.qty
		totalCost += float64(b.qty) * b.price
	}

	positions := svc.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, totalQty, positions[0].Quantity)
	assert.InDelta(t, totalCost/float64(totalQty), positions[0].AvgPrice, 1e-9)
}

func TestSell_ReducesQuantityWithoutTouchingAverage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Buy("AAPL", 10, 100)
	require.NoError(t, err)

	_, err = svc.Sell("AAPL", 4, 120)
	require.NoError(t, err)

	positions := svc.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, int64(6), positions[0].Quantity)
	assert.Equal(t, 100.0, positions[0].AvgPrice)
	assert.Equal(t, 120.0, positions[0].CurrentPrice)
}

func TestSell_FullLiquidationRemovesPosition(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Buy("TSLA", 5, 248.42)
	require.NoError(t, err)

	_, err = svc.Sell("TSLA", 5, 250)
	require.NoError(t, err)

	assert.Empty(t, svc.Positions())

	// The history still records both trades.
	assert.Len(t, svc.History(0), 2)
}

func TestHistory_AppendOnlyMostRecentFirst(t *testing.T) {
	svc, _ := newTestService(t)

	calls := []struct {
		side  Side
		qty   int64
		price float64
	}{
		{side: SideBuy, qty: 3, price: 100},
		{side: SideBuy, qty: 2, price: 110},
		{side: SideSell, qty: 1, price: 120},
		{side: SideBuy, qty: 4, price: 90},
	}

	for _, c := range calls {
		var err error
		if c.side == SideBuy {
			_, err = svc.Buy("MSFT", c.qty, c.price)
		} else {
			_, err = svc.Sell("MSFT", c.qty, c.price)
		}
		require.NoError(t, err)
	}

	history := svc.History(0)
	require.Len(t, history, len(calls))

	// Most recent first: history[0] is the last call made.
	for i, tx := range history {
		call := calls[len(calls)-1-i]
		assert.Equal(t, "MSFT", tx.Symbol)
		assert.Equal(t, call.side, tx.Side)
		assert.Equal(t, call.qty, tx.Quantity)
		assert.Equal(t, call.price, tx.Price)
		assert.NotEmpty(t, tx.OrderID)
	}

	// IDs are monotonic by creation time.
	for i := 0; i < len(history)-1; i++ {
		assert.Greater(t, history[i].ID, history[i+1].ID)
	}
}

func TestHistory_LimitCapsResults(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 5; i++ {
		_, err := svc.Buy("AMZN", 1, 145.86)
		require.NoError(t, err)
	}

	assert.Len(t, svc.History(3), 3)
	assert.Len(t, svc.History(0), 5)
	assert.Len(t, svc.History(10), 5)
}

func TestGuards(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Buy("AAPL", 2, 100)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "buy zero quantity",
			run:     func() error { _, err := svc.Buy("AAPL", 0, 100); return err },
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "buy negative quantity",
			run:     func() error { _, err := svc.Buy("AAPL", -1, 100); return err },
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "buy non-positive price",
			run:     func() error { _, err := svc.Buy("AAPL", 1, 0); return err },
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "buy unknown symbol",
			run:     func() error { _, err := svc.Buy("ZZZZ", 1, 100); return err },
			wantErr: ErrUnknownSymbol,
		},
		{
			name:    "sell more than held",
			run:     func() error { _, err := svc.Sell("AAPL", 3, 100); return err },
			wantErr: ErrInsufficientHoldings,
		},
		{
			name:    "sell with no position",
			run:     func() error { _, err := svc.Sell("GOOGL", 1, 100); return err },
			wantErr: ErrInsufficientHoldings,
		},
		{
			name:    "sell zero quantity",
			run:     func() error { _, err := svc.Sell("AAPL", 0, 100); return err },
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
		})
	}

	// Rejected operations must not change state or history.
	positions := svc.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, int64(2), positions[0].Quantity)
	assert.Len(t, svc.History(0), 1)
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)

	inst := svc.Search("aapl")
	require.NotNil(t, inst)
	assert.Equal(t, "Apple Inc.", inst.Name)

	assert.Nil(t, svc.Search("ZZZZ"))
}

func TestSummaryAndReport(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Buy("AAPL", 10, 100)
	require.NoError(t, err)
	_, err = svc.Buy("MSFT", 2, 300)
	require.NoError(t, err)
	_, err = svc.Sell("AAPL", 4, 120)
	require.NoError(t, err)

	// AAPL: 6 @ avg 100, current 120. MSFT: 2 @ avg 300, current 300.
	sum := svc.Summary()
	assert.InDelta(t, 6*120.0+2*300.0, sum.TotalValue, 1e-9)
	assert.InDelta(t, 6*100.0+2*300.0, sum.TotalCost, 1e-9)
	assert.InDelta(t, 120.0, sum.TotalGainLoss, 1e-9)
	assert.Equal(t, 2, sum.PositionCount)

	report := svc.Report()
	assert.Equal(t, 3, report.TradeCount)
	assert.Equal(t, 2, report.BuyCount)
	assert.Equal(t, 1, report.SellCount)
	assert.InDelta(t, 10*100.0+2*300.0+4*120.0, report.TotalVolume, 1e-9)
}

func TestRestore_RoundTripsThroughStore(t *testing.T) {
	st, cleanup := apptesting.NewTestStore(t)
	t.Cleanup(cleanup)

	svc := NewService(market.NewCatalog(), st, zerolog.Nop())
	_, err := svc.Buy("AAPL", 10, 100)
	require.NoError(t, err)
	_, err = svc.Sell("AAPL", 4, 120)
	require.NoError(t, err)

	// A fresh service over the same store sees the same state.
	restored := NewService(market.NewCatalog(), st, zerolog.Nop())

	positions := restored.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, int64(6), positions[0].Quantity)
	assert.Equal(t, 100.0, positions[0].AvgPrice)

	history := restored.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, SideSell, history[0].Side)

	// The ID sequence continues after the highest persisted ID.
	tx, err := restored.Buy("AAPL", 1, 110)
	require.NoError(t, err)
	assert.Equal(t, history[0].ID+1, tx.ID)
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	svc, st := newTestService(t)

	_, err := svc.Buy("AAPL", 10, 100)
	require.NoError(t, err)

	// NaN survives the price guard but cannot be marshaled, so the write
	// fails mid-trade. Neither the portfolio nor the history record may
	// change, in memory or on disk.
	_, err = svc.Buy("AAPL", 1, math.NaN())
	require.Error(t, err)

	positions := svc.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, int64(10), positions[0].Quantity)
	assert.Len(t, svc.History(0), 1)

	restored := NewService(market.NewCatalog(), st, zerolog.Nop())
	restoredPositions := restored.Positions()
	require.Len(t, restoredPositions, 1)
	assert.Equal(t, int64(10), restoredPositions[0].Quantity)

	history := restored.History(0)
	require.Len(t, history, 1)

	// The two records stayed in step: the history still explains the
	// portfolio, and the ID sequence continues cleanly.
	tx, err := restored.Buy("AAPL", 1, 110)
	require.NoError(t, err)
	assert.Equal(t, history[0].ID+1, tx.ID)
}

func TestRestore_CorruptRecordsStartEmpty(t *testing.T) {
	db, cleanup := apptesting.NewTestDB(t)
	t.Cleanup(cleanup)

	apptesting.SeedRecord(t, db, store.KeyPortfolio, "{definitely not json")
	apptesting.SeedRecord(t, db, store.KeyTransactions, "[broken")

	svc := NewService(market.NewCatalog(), store.New(db.Conn()), zerolog.Nop())

	assert.Empty(t, svc.Positions())
	assert.Empty(t, svc.History(0))

	// The service remains fully usable.
	_, err := svc.Buy("AAPL", 1, 100)
	require.NoError(t, err)
	assert.Len(t, svc.Positions(), 1)
}
