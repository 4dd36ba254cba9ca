// Package usecase implements instrument resolution: turning free-text
// queries into persisted Stock and Index records.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"stockdash/internal/feature/instruments/domain/entity"
)

// searchExchanges is the fixed fan-out order for live searches. The bound of
// one worker per exchange is the only concurrency in the system.
var searchExchanges = []string{"NSE", "BSE", "NFO", "CDS", "MCX"}

const (
	// searchTimeout bounds each per-exchange vendor call.
	searchTimeout = 10 * time.Second

	// blacklistSuffix marks delisted/suspended scrips; these are never
	// persisted no matter how many exchanges report them.
	blacklistSuffix = "-BL"

	// indexFamilyMarker classifies a scrip as an index by symbol alone.
	// A vendor convention, not ours: a stock legitimately named around
	// "NIFTY" would be misclassified here.
	indexFamilyMarker = "NIFTY"
)

// VendorSearcher abstracts the vendor's per-exchange scrip search.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform).
type VendorSearcher interface {
	SearchScrip(ctx context.Context, exchange, text string) ([]entity.SearchResult, error)
}

// InstrumentRepository abstracts persistence for stocks and indices.
type InstrumentRepository interface {
	// GetOrCreateStock returns the stock for the symbol, creating it with
	// the given fields if absent. A uniqueness-constraint collision is
	// "already exists", not an error.
	GetOrCreateStock(ctx context.Context, stock entity.Stock) (entity.Stock, error)

	// GetOrCreateIndex returns the index for the (symbol, token) pair,
	// creating it if absent.
	GetOrCreateIndex(ctx context.Context, index entity.Index) (entity.Index, error)

	// EnsureStaticIndex get-or-creates by symbol and forces token and name
	// to the given values. The static table wins over live search results.
	EnsureStaticIndex(ctx context.Context, index entity.Index) (entity.Index, error)

	// SearchLocal matches stored stocks and indices by symbol or name
	// substring, case-insensitively.
	SearchLocal(ctx context.Context, query string) ([]entity.Stock, []entity.Index, error)
}

// ResolveUsecase combines the static index table with live multi-exchange
// search and persists everything it resolves.
type ResolveUsecase struct {
	vendor VendorSearcher
	repo   InstrumentRepository
}

// NewResolveUsecase creates a new ResolveUsecase.
func NewResolveUsecase(vendor VendorSearcher, repo InstrumentRepository) *ResolveUsecase {
	return &ResolveUsecase{vendor: vendor, repo: repo}
}

// Resolve returns the deduplicated instruments matching query: static-table
// matches first, then live-search matches in exchange-iteration order. Each
// surviving item is persisted via get-or-create before it is returned.
func (u *ResolveUsecase) Resolve(ctx context.Context, query string) ([]entity.Instrument, error) {
	seen := make(map[string]struct{})
	var out []entity.Instrument

	// Step 1: static table, no network.
	for _, ix := range matchStaticIndices(query) {
		stored, err := u.repo.EnsureStaticIndex(ctx, entity.Index{
			Symbol:   ix.Symbol,
			Token:    ix.Token,
			Exchange: "NSE",
			Name:     ix.Name,
		})
		if err != nil {
			slog.Error("failed to persist static index", "symbol", ix.Symbol, "error", err)
			continue
		}
		seen[stored.Token] = struct{}{}
		out = append(out, indexInstrument(stored))
	}

	// Step 2: scatter-gather across exchanges. Each worker owns one slot of
	// the results slice, so merging stays single-threaded after the wait.
	results := make([]exchangeResult, len(searchExchanges))
	var wg sync.WaitGroup
	for i, ex := range searchExchanges {
		wg.Add(1)
		go func(i int, ex string) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, searchTimeout)
			defer cancel()
			items, err := u.vendor.SearchScrip(cctx, ex, query)
			results[i] = exchangeResult{exchange: ex, items: items, err: err}
		}(i, ex)
	}
	wg.Wait()

	// Steps 3-5: classify, filter, dedupe, persist. A failed exchange
	// contributes nothing and never aborts the others.
	for _, res := range results {
		if res.err != nil {
			slog.Warn("exchange search failed", "exchange", res.exchange, "query", query, "error", res.err)
			continue
		}
		for _, item := range res.items {
			if item.Symbol == "" || item.Token == "" {
				continue
			}
			if strings.HasSuffix(item.Symbol, blacklistSuffix) {
				slog.Warn("skipping blacklisted scrip", "symbol", item.Symbol, "exchange", res.exchange)
				continue
			}
			if _, dup := seen[item.Token]; dup {
				continue
			}
			inst, err := u.persistSearchResult(ctx, item)
			if err != nil {
				slog.Error("failed to persist search result", "symbol", item.Symbol, "error", err)
				continue
			}
			seen[item.Token] = struct{}{}
			out = append(out, inst)
		}
	}

	return out, nil
}

// Search serves the search page: stored instruments first, with a live
// resolve mixed in when the query names the index family or the database has
// nothing to offer.
func (u *ResolveUsecase) Search(ctx context.Context, query string) ([]entity.Instrument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	stocks, indices, err := u.repo.SearchLocal(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []entity.Instrument
	for _, s := range stocks {
		seen[s.Token] = struct{}{}
		out = append(out, stockInstrument(s))
	}
	for _, ix := range indices {
		if _, dup := seen[ix.Token]; dup {
			continue
		}
		seen[ix.Token] = struct{}{}
		out = append(out, indexInstrument(ix))
	}

	// Index-family queries always go live so token discovery keeps working;
	// anything else only when the database came up empty.
	if strings.Contains(strings.ToLower(query), strings.ToLower(indexFamilyMarker)) || len(out) == 0 {
		resolved, err := u.Resolve(ctx, query)
		if err != nil {
			return out, err
		}
		for _, inst := range resolved {
			if _, dup := seen[inst.Token]; dup {
				continue
			}
			seen[inst.Token] = struct{}{}
			out = append(out, inst)
		}
	}

	return out, nil
}

// SeedPopular get-or-creates the ten seed stocks so the dashboard never
// starts empty.
func (u *ResolveUsecase) SeedPopular(ctx context.Context) ([]entity.Stock, error) {
	out := make([]entity.Stock, 0, len(popularStocks))
	for _, p := range popularStocks {
		stock, err := u.repo.GetOrCreateStock(ctx, entity.Stock{
			Symbol:      p.Symbol,
			Token:       p.Token,
			Exchange:    "NSE",
			CompanyName: companyName(p.Symbol, "NSE"),
		})
		if err != nil {
			slog.Error("failed to seed stock", "symbol", p.Symbol, "error", err)
			continue
		}
		out = append(out, stock)
	}
	return out, nil
}

type exchangeResult struct {
	exchange string
	items    []entity.SearchResult
	err      error
}

func (u *ResolveUsecase) persistSearchResult(ctx context.Context, item entity.SearchResult) (entity.Instrument, error) {
	if isIndexResult(item) {
		stored, err := u.repo.GetOrCreateIndex(ctx, entity.Index{
			Symbol:   item.Symbol,
			Token:    item.Token,
			Exchange: item.Exchange,
			Name:     indexName(item),
		})
		if err != nil {
			return entity.Instrument{}, err
		}
		return indexInstrument(stored), nil
	}

	stored, err := u.repo.GetOrCreateStock(ctx, entity.Stock{
		Symbol:      item.Symbol,
		Token:       item.Token,
		Exchange:    item.Exchange,
		CompanyName: stockName(item),
	})
	if err != nil {
		return entity.Instrument{}, err
	}
	return stockInstrument(stored), nil
}

// isIndexResult classifies a search result as an index either by the
// vendor's instrument-type field or by the index-family marker in the symbol.
func isIndexResult(item entity.SearchResult) bool {
	if strings.EqualFold(item.InstName, "INDEX") {
		return true
	}
	return strings.Contains(strings.ToUpper(item.Symbol), indexFamilyMarker)
}

func indexName(item entity.SearchResult) string {
	if item.CompanyName != "" {
		return item.CompanyName
	}
	return companyName(item.Symbol, "INDICES")
}

func stockName(item entity.SearchResult) string {
	if item.CompanyName != "" {
		return item.CompanyName
	}
	return companyName(item.Symbol, item.Exchange)
}

// companyName derives a display name from a trading symbol: indices keep
// their symbol with separators spaced out, stocks additionally lose the
// -EQ series suffix.
func companyName(symbol, exchange string) string {
	s := symbol
	if exchange != "NSE_INDEX" && exchange != "INDICES" {
		s = strings.ReplaceAll(s, "-EQ", "")
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return titleCase(s)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func stockInstrument(s entity.Stock) entity.Instrument {
	return entity.Instrument{
		Kind:     entity.KindStock,
		ID:       s.ID,
		Symbol:   s.Symbol,
		Token:    s.Token,
		Exchange: s.Exchange,
		Name:     s.CompanyName,
	}
}

func indexInstrument(ix entity.Index) entity.Instrument {
	return entity.Instrument{
		Kind:     entity.KindIndex,
		ID:       ix.ID,
		Symbol:   ix.Symbol,
		Token:    ix.Token,
		Exchange: ix.Exchange,
		Name:     ix.Name,
	}
}
