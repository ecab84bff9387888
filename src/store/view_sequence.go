package store

import (
	"sort"
	"strings"

	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"
)

// Sort criteria. SortNone keeps snapshot order.
const (
	SortNone   = ""
	SortSymbol = "symbol"
	SortPrice  = "price"
	SortChange = "change"
	SortVolume = "volume"
)

// SortCriteria lists the selectable criteria, default first.
var SortCriteria = []string{SortNone, SortSymbol, SortPrice, SortChange, SortVolume}

func IsSortCriterion(c string) bool {
	for _, s := range SortCriteria {
		if s == c {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// ViewSequence is the ordered list the card grid and table render: the
// snapshot filtered by query, then sorted by criterion. The snapshot itself
// is never reordered.
func ViewSequence(snap *models.MSnapshot, query, criterion string) []models.MQuote {
	if snap == nil {
		return []models.MQuote{}
	}

	out := Filter(snap.Quotes, query)
	SortQuotes(out, criterion)
	return out
}

// -----------------------------------------------------------------------------

// Filter keeps quotes whose ticker or name contains query, ignoring case.
// It always returns a new slice.
func Filter(quotes []models.MQuote, query string) []models.MQuote {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.MQuote, 0, len(quotes))
	for _, quote := range quotes {
		if q == "" ||
			strings.Contains(strings.ToLower(quote.Symbol), q) ||
			strings.Contains(strings.ToLower(quote.Name), q) {
			out = append(out, quote)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// SortQuotes sorts in place. Ties keep their relative order.
func SortQuotes(quotes []models.MQuote, criterion string) {
	var less func(a, b models.MQuote) bool
	switch criterion {
	case SortSymbol:
		less = func(a, b models.MQuote) bool { return a.Symbol < b.Symbol }
	case SortPrice:
		less = func(a, b models.MQuote) bool { return a.Price.GreaterThan(b.Price) }
	case SortChange:
		less = func(a, b models.MQuote) bool { return a.Change.GreaterThan(b.Change) }
	case SortVolume:
		less = func(a, b models.MQuote) bool { return utils.ParseVolume(a.Volume) > utils.ParseVolume(b.Volume) }
	default:
		return
	}
	sort.SliceStable(quotes, func(i, j int) bool { return less(quotes[i], quotes[j]) })
}
