package catalog

import (
	"errors"
	"fmt"
)

// Category is the partition an instrument belongs to.
type Category int

const (
	// Crypto covers cryptocurrencies quoted against USD
	Crypto Category = iota
	// Stock covers listed equities
	Stock
	// Commodity covers commodity futures
	Commodity
)

// String returns the display label of the category.
func (c Category) String() string {
	switch c {
	case Crypto:
		return "Crypto"
	case Stock:
		return "Stock"
	case Commodity:
		return "Commodity"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Rank orders categories for presentation: crypto first, then stocks, then commodities.
func (c Category) Rank() int {
	return int(c)
}

// Instrument is a tradable asset known to the catalog.
// The (Category, Name) pair identifies it; Key is the provider-specific symbol.
type Instrument struct {
	Name     string
	Key      string
	Category Category
}

// Label renders the instrument for views that mix categories, e.g. "Crypto: Bitcoin".
func (i Instrument) Label() string {
	return i.Category.String() + ": " + i.Name
}

// Catalog is the static set of instruments, split in three ordered partitions.
type Catalog struct {
	Commodities []Instrument
	Stocks      []Instrument
	Crypto      []Instrument
}

// All returns every instrument across partitions: crypto, then commodities, then stocks.
func (c Catalog) All() []Instrument {
	all := make([]Instrument, 0, len(c.Crypto)+len(c.Commodities)+len(c.Stocks))
	all = append(all, c.Crypto...)
	all = append(all, c.Commodities...)
	all = append(all, c.Stocks...)
	return all
}

// Len returns the total number of instruments.
func (c Catalog) Len() int {
	return len(c.Crypto) + len(c.Commodities) + len(c.Stocks)
}

// Validate checks that every instrument has a name and a key, sits in the partition
// matching its category, and that no (category, name) pair repeats.
func (c Catalog) Validate() error {
	if c.Len() == 0 {
		return errors.New("catalog is empty")
	}

	partitions := []struct {
		category Category
		items    []Instrument
	}{
		{Crypto, c.Crypto},
		{Commodity, c.Commodities},
		{Stock, c.Stocks},
	}

	type id struct {
		category Category
		name     string
	}
	seen := make(map[id]struct{}, c.Len())

	for _, p := range partitions {
		for _, inst := range p.items {
			if inst.Name == "" {
				return fmt.Errorf("%s instrument with key %q has no name", p.category, inst.Key)
			}
			if inst.Key == "" {
				return fmt.Errorf("instrument %q has no lookup key", inst.Label())
			}
			if inst.Category != p.category {
				return fmt.Errorf("instrument %q listed under %s", inst.Label(), p.category)
			}
			k := id{inst.Category, inst.Name}
			if _, dup := seen[k]; dup {
				return fmt.Errorf("duplicate instrument %q", inst.Label())
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

// New builds a partition of the given category from ordered (name, key) pairs.
func New(category Category, pairs ...[2]string) []Instrument {
	out := make([]Instrument, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Instrument{Name: p[0], Key: p[1], Category: category})
	}
	return out
}

// Default returns the built-in catalog, keyed by Yahoo Finance symbols.
func Default() Catalog {
	return Catalog{
		Commodities: New(Commodity,
			[2]string{"Gold", "GC=F"},
			[2]string{"Silver", "SI=F"},
			[2]string{"Oil", "CL=F"},
			[2]string{"Gas", "NG=F"},
			[2]string{"Wheat", "ZW=F"},
			[2]string{"Copper", "HG=F"},
			[2]string{"Palladium", "PA=F"},
			[2]string{"Platinum", "PL=F"},
			[2]string{"Coffee", "KC=F"},
			[2]string{"Sugar", "SB=F"},
		),
		Stocks: New(Stock,
			[2]string{"Nvidia", "NVDA"},
			[2]string{"Tesla", "TSLA"},
			[2]string{"Apple", "AAPL"},
			[2]string{"Meta", "META"},
			[2]string{"Microsoft", "MSFT"},
			[2]string{"Amazon", "AMZN"},
			[2]string{"Google", "GOOGL"},
			[2]string{"TSMC", "TSM"},
			[2]string{"ASML", "ASML"},
			[2]string{"Palantir", "PLTR"},
		),
		Crypto: New(Crypto,
			[2]string{"Bitcoin", "BTC-USD"},
			[2]string{"Ethereum", "ETH-USD"},
			[2]string{"Solana", "SOL-USD"},
			[2]string{"Binance Coin", "BNB-USD"},
			[2]string{"XRP", "XRP-USD"},
		),
	}
}
