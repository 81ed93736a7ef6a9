package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/modules/market"
	"github.com/quantfold/stocktrader/internal/store"
)

// Service owns the open positions and the append-only transaction history.
// All mutations serialize on the mutex: the persisted records are written as
// whole blobs, so the read-modify-write cycle must not interleave.
type Service struct {
	mu           sync.Mutex
	catalog      *market.Catalog
	store        *store.Store
	log          zerolog.Logger
	positions    []Position
	transactions []Transaction // most recent first
	nextID       int64
}

// NewService creates the ledger service and hydrates it from the record store.
// Unreadable persisted records are treated as absent.
func NewService(catalog *market.Catalog, st *store.Store, log zerolog.Logger) *Service {
	s := &Service{
		catalog: catalog,
		store:   st,
		log:     log.With().Str("component", "ledger").Logger(),
		nextID:  1,
	}
	s.restore()
	return s
}

// restore hydrates positions and transaction history from the store.
func (s *Service) restore() {
	var positions []Position
	found, err := s.store.Load(store.KeyPortfolio, &positions)
	if err != nil {
		s.log.Warn().Err(err).Msg("Unreadable portfolio record, starting with no positions")
	} else if found {
		s.positions = positions
	}

	var transactions []Transaction
	found, err = s.store.Load(store.KeyTransactions, &transactions)
	if err != nil {
		s.log.Warn().Err(err).Msg("Unreadable transactions record, starting with empty history")
	} else if found {
		s.transactions = transactions
	}

	// Transaction IDs are monotonic by creation time; continue the sequence.
	for _, tx := range s.transactions {
		if tx.ID >= s.nextID {
			s.nextID = tx.ID + 1
		}
	}

	s.log.Info().
		Int("positions", len(s.positions)).
		Int("transactions", len(s.transactions)).
		Msg("Ledger restored from store")
}

// Search returns the catalog instrument matching symbol (case-insensitive),
// or nil when the symbol is not in the catalog. Not-found is a result, not
// an error.
func (s *Service) Search(symbol string) *market.Instrument {
	return s.catalog.Find(symbol)
}

// Buy opens or grows the position for symbol at the given execution price.
// An existing position's average price blends by quantity weighting:
//
//	newAvg = (oldAvg*oldQty + price*qty) / (oldQty + qty)
//
// Every successful buy appends exactly one transaction and writes both
// records through to the store.
func (s *Service) Buy(symbol string, quantity int64, price float64) (Transaction, error) {
	if quantity <= 0 {
		return Transaction{}, fmt.Errorf("buy %s: %w", symbol, ErrInvalidQuantity)
	}
	if price <= 0 {
		return Transaction{}, fmt.Errorf("buy %s: %w", symbol, ErrInvalidPrice)
	}

	inst := s.catalog.Find(symbol)
	if inst == nil {
		return Transaction{}, fmt.Errorf("buy: %w: %s", ErrUnknownSymbol, symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	positions := s.copyPositions()
	idx := findPosition(positions, inst.Symbol)

	if idx >= 0 {
		pos := positions[idx]
		totalQty := pos.Quantity + quantity
		pos.AvgPrice = (pos.AvgPrice*float64(pos.Quantity) + price*float64(quantity)) / float64(totalQty)
		pos.Quantity = totalQty
		pos.CurrentPrice = price
		positions[idx] = pos
	} else {
		positions = append(positions, Position{
			Symbol:       inst.Symbol,
			Quantity:     quantity,
			AvgPrice:     price,
			CurrentPrice: price,
		})
	}

	tx := s.newTransaction(inst.Symbol, SideBuy, quantity, price)
	transactions := append([]Transaction{tx}, s.transactions...)

	if err := s.persist(positions, transactions); err != nil {
		return Transaction{}, err
	}

	s.positions = positions
	s.transactions = transactions
	s.nextID++

	s.log.Info().
		Str("symbol", inst.Symbol).
		Int64("quantity", quantity).
		Float64("price", price).
		Msg("Buy executed")

	return tx, nil
}

// Sell reduces the position for symbol, removing it entirely when the
// quantity reaches zero. The average price never changes on sells; only the
// last observed price does. Selling more than is held is rejected with
// ErrInsufficientHoldings (which also covers the no-position case).
func (s *Service) Sell(symbol string, quantity int64, price float64) (Transaction, error) {
	if quantity <= 0 {
		return Transaction{}, fmt.Errorf("sell %s: %w", symbol, ErrInvalidQuantity)
	}
	if price <= 0 {
		return Transaction{}, fmt.Errorf("sell %s: %w", symbol, ErrInvalidPrice)
	}

	inst := s.catalog.Find(symbol)
	if inst == nil {
		return Transaction{}, fmt.Errorf("sell: %w: %s", ErrUnknownSymbol, symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	positions := s.copyPositions()
	idx := findPosition(positions, inst.Symbol)
	if idx < 0 || positions[idx].Quantity < quantity {
		return Transaction{}, fmt.Errorf("sell %s: %w", inst.Symbol, ErrInsufficientHoldings)
	}

	remaining := positions[idx].Quantity - quantity
	if remaining == 0 {
		positions = append(positions[:idx], positions[idx+1:]...)
	} else {
		pos := positions[idx]
		pos.Quantity = remaining
		pos.CurrentPrice = price
		positions[idx] = pos
	}

	tx := s.newTransaction(inst.Symbol, SideSell, quantity, price)
	transactions := append([]Transaction{tx}, s.transactions...)

	if err := s.persist(positions, transactions); err != nil {
		return Transaction{}, err
	}

	s.positions = positions
	s.transactions = transactions
	s.nextID++

	s.log.Info().
		Str("symbol", inst.Symbol).
		Int64("quantity", quantity).
		Float64("price", price).
		Msg("Sell executed")

	return tx, nil
}

// Positions returns the open positions in acquisition order
func (s *Service) Positions() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyPositions()
}

// History returns the transaction history, most recent first.
// A limit <= 0 returns the full history.
func (s *Service) History(limit int) []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.transactions)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Transaction, n)
	copy(out, s.transactions[:n])
	return out
}

// Summary returns portfolio-level totals
func (s *Service) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum Summary
	for _, pos := range s.positions {
		sum.TotalValue += pos.MarketValue()
		sum.TotalCost += pos.CostBasis()
	}
	sum.TotalGainLoss = sum.TotalValue - sum.TotalCost
	if sum.TotalCost > 0 {
		sum.GainLossPercent = sum.TotalGainLoss / sum.TotalCost * 100
	}
	sum.PositionCount = len(s.positions)

	return sum
}

// Report aggregates the transaction history for the reports screen
func (s *Service) Report() ActivityReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report ActivityReport
	for _, tx := range s.transactions {
		report.TotalVolume += float64(tx.Quantity) * tx.Price
		switch tx.Side {
		case SideBuy:
			report.BuyCount++
		case SideSell:
			report.SellCount++
		}
	}
	report.TradeCount = len(s.transactions)

	return report
}

// newTransaction builds the next transaction record. Caller holds the lock;
// nextID is advanced only after a successful persist.
func (s *Service) newTransaction(symbol string, side Side, quantity int64, price float64) Transaction {
	return Transaction{
		ID:        s.nextID,
		OrderID:   uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
}

// persist writes both ledger records through to the store in a single
// transaction. The portfolio and history must move together: a portfolio
// without its matching transaction must never reach disk. In-memory state
// is only replaced after the write succeeds.
func (s *Service) persist(positions []Position, transactions []Transaction) error {
	err := s.store.PutMany(
		store.Record{Key: store.KeyPortfolio, Value: positions},
		store.Record{Key: store.KeyTransactions, Value: transactions},
	)
	if err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

func (s *Service) copyPositions() []Position {
	out := make([]Position, len(s.positions))
	copy(out, s.positions)
	return out
}

// findPosition returns the index of the position for symbol, or -1
func findPosition(positions []Position, symbol string) int {
	for i, pos := range positions {
		if pos.Symbol == symbol {
			return i
		}
	}
	return -1
}
