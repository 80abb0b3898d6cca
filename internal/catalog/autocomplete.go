package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/metrics"
)

// MinQueryLength is the shortest query that produces suggestions.
const MinQueryLength = 2

const maxSuggestions = 10

// KnownStyles are best-selling styles offered when no catalog backend is available.
var KnownStyles = []string{
	"PC61", "5000", "DT6000", "ST850", "K420", "L110", "G200", "G800",
	"M1000", "K500", "L100", "8800", "PC55", "BC3001", "PC850", "L223",
	"C112", "J790", "PC90H",
}

// StyleSearcher finds style numbers starting with a prefix.
type StyleSearcher interface {
	SearchStyles(ctx context.Context, prefix string, limit int) ([]string, error)
}

// Autocompleter suggests style numbers for the search box.
type Autocompleter struct {
	logger   *zap.Logger
	searcher StyleSearcher
	cache    cache.Cache
	ttl      time.Duration
}

// NewAutocompleter builds an Autocompleter; searcher and c may be nil.
func NewAutocompleter(logger *zap.Logger, searcher StyleSearcher, c cache.Cache, ttl time.Duration) *Autocompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autocompleter{logger: logger, searcher: searcher, cache: c, ttl: ttl}
}

// Suggest returns up to ten styles matching q. Queries shorter than two
// characters return an empty, non-nil list.
func (a *Autocompleter) Suggest(ctx context.Context, q string) []string {
	q = strings.ToUpper(strings.TrimSpace(q))
	if len(q) < MinQueryLength {
		return []string{}
	}

	key := cache.Key("autocomplete", q)
	if a.cache != nil {
		var cached []string
		if ok, _ := a.cache.Get(ctx, key, &cached); ok {
			metrics.IncCache("autocomplete", true)
			return cached
		}
		metrics.IncCache("autocomplete", false)
	}

	var found []string
	if a.searcher != nil {
		styles, err := a.searcher.SearchStyles(ctx, q, maxSuggestions)
		if err != nil {
			a.logger.Warn("catalog.autocomplete_search_failed", zap.String("query", q), zap.Error(err))
		}
		found = styles
	}
	found = append(found, MatchKnownStyles(q)...)
	found = lo.Uniq(lo.Map(found, func(s string, _ int) string { return strings.ToUpper(strings.TrimSpace(s)) }))
	found = lo.Filter(found, func(s string, _ int) bool { return s != "" })
	if len(found) > maxSuggestions {
		found = found[:maxSuggestions]
	}

	if a.cache != nil {
		_ = a.cache.Set(ctx, key, found, a.ttl)
	}
	return found
}

// MatchKnownStyles prefix-matches q against KnownStyles.
func MatchKnownStyles(q string) []string {
	q = strings.ToUpper(strings.TrimSpace(q))
	if len(q) < MinQueryLength {
		return []string{}
	}
	return lo.Filter(KnownStyles, func(s string, _ int) bool { return strings.HasPrefix(s, q) })
}
