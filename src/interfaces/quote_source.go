package interfaces

import (
	"context"

	"stock-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource fetches live quotes from one external provider.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// FetchQuotes returns the quotes that could be fetched, in symbols order.
	// Symbols that fail individually are left out. Any non-nil error is a
	// *helpers.FallbackError: the caller should use synthetic data instead.
	FetchQuotes(ctx context.Context, symbols []models.MSymbol) ([]models.MQuote, error)
}
