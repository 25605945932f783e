package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/medibook/booking-gateway/internal/model"
)

// FilterAll is the sentinel meaning "no filtering on this axis".
const FilterAll = "all"

type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortDuration  SortKey = "duration"
)

// Filter is the client-side view over a fetched test list.
type Filter struct {
	Search string  `form:"search"`
	Type   string  `form:"type"`
	Center string  `form:"center"`
	Sort   SortKey `form:"sort"`
}

func (f Filter) typeActive() bool {
	return f.Type != "" && f.Type != FilterAll
}

func (f Filter) centerActive() bool {
	return f.Center != "" && f.Center != FilterAll
}

// Item is a test annotated with the price effective under the center filter.
type Item struct {
	model.Test
	EffectivePrice float64 `json:"effective_price"`
}

// Apply derives the visible, ordered subset of tests for a filter. It is a
// pure function: identical inputs yield an identical ordered result, and the
// source slice is never mutated.
func Apply(tests []model.Test, f Filter) []Item {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	items := make([]Item, 0, len(tests))
	for _, t := range tests {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.typeActive() && string(t.Category) != f.Type {
			continue
		}
		if f.centerActive() && !t.BookableAt(f.Center) {
			continue
		}
		items = append(items, Item{Test: t, EffectivePrice: effectivePrice(t, f)})
	}

	sortItems(items, f.Sort)
	return items
}

// effectivePrice is the center-specific price when a pricing entry for the
// selected center exists, otherwise the base price.
func effectivePrice(t model.Test, f Filter) float64 {
	if f.centerActive() {
		if p, ok := t.PricingFor(f.Center); ok {
			return p.Price
		}
	}
	return t.BasePrice
}

func sortItems(items []Item, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EffectivePrice < items[j].EffectivePrice
		})
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EffectivePrice > items[j].EffectivePrice
		})
	case SortDuration:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DurationMinutes < items[j].DurationMinutes
		})
	default:
		// Name order uses locale-aware collation, not byte order.
		coll := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(items, func(i, j int) bool {
			return coll.CompareString(items[i].Title, items[j].Title) < 0
		})
	}
}
