// Package market provides the instrument reference catalog.
// The catalog is fixed: five symbols with static prices, not fetched from any feed.
package market

import "strings"

// Instrument represents a tradable symbol with reference price data
type Instrument struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Catalog holds the static instrument universe
type Catalog struct {
	instruments []Instrument
	bySymbol    map[string]int
}

// NewCatalog creates the catalog with the built-in instrument table
func NewCatalog() *Catalog {
	instruments := []Instrument{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43, Change: 2.15, ChangePercent: 1.24},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 142.56, Change: -1.23, ChangePercent: -0.85},
		{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 378.85, Change: 5.67, ChangePercent: 1.52},
		{Symbol: "TSLA", Name: "Tesla Inc.", Price: 248.42, Change: -3.21, ChangePercent: -1.27},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 145.86, Change: 0.95, ChangePercent: 0.66},
	}

	bySymbol := make(map[string]int, len(instruments))
	for i, inst := range instruments {
		bySymbol[inst.Symbol] = i
	}

	return &Catalog{
		instruments: instruments,
		bySymbol:    bySymbol,
	}
}

// All returns every instrument in catalog order
func (c *Catalog) All() []Instrument {
	out := make([]Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Find returns the instrument matching symbol (case-insensitive exact match).
// Returns nil if the symbol is not in the catalog.
func (c *Catalog) Find(symbol string) *Instrument {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	i, ok := c.bySymbol[key]
	if !ok {
		return nil
	}

	inst := c.instruments[i]
	return &inst
}
