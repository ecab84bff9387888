package generator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	"github.com/shopspring/decimal"
)

// History floor, as a fraction of the baseline.
var historyFloor = decimal.RequireFromString("0.7")

// -----------------------------------------------------------------------------

// Generator synthesizes quotes, price histories and the market summary.
// It is safe for concurrent use and never fails.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type Option func(*Generator)

// WithSeed makes the output reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides "today" for history dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// -----------------------------------------------------------------------------

func New(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// -----------------------------------------------------------------------------

func (g *Generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// -----------------------------------------------------------------------------

// GenerateQuote perturbs the symbol's baseline by up to +/-5.
func (g *Generator) GenerateQuote(sym models.MSymbol) models.MQuote {
	base := BasePrice(sym.Ticker)
	change := (g.float() - 0.5) * 10
	price := base + change
	if price < 0.01 {
		price = 0.01
		change = price - base
	}

	return models.MQuote{
		Symbol:        sym.Ticker,
		Name:          sym.Name,
		Price:         utils.Round2(price),
		Change:        utils.Round2(change),
		ChangePercent: utils.Round2(change / base * 100),
		Open:          utils.Round2(price - g.float()*2),
		High:          utils.Round2(price + g.float()*3),
		Low:           utils.Round2(price - g.float()*3),
		Volume:        utils.FormatVolume(int64(math.Floor(g.float()*10_000_000 + 1_000_000))),
		MarketCap:     MarketCap(sym.Ticker),
		PreviousClose: utils.Round2(base),
	}
}

// -----------------------------------------------------------------------------

// GenerateQuotes produces one quote per symbol, in order.
func (g *Generator) GenerateQuotes(symbols []models.MSymbol) []models.MQuote {
	quotes := make([]models.MQuote, 0, len(symbols))
	for _, sym := range symbols {
		quotes = append(quotes, g.GenerateQuote(sym))
	}
	return quotes
}

// -----------------------------------------------------------------------------

// GenerateHistory returns days+1 daily points ending today. The walk starts
// at 90% of the baseline, drifts slightly upward and never drops below 70%.
func (g *Generator) GenerateHistory(ticker string, days int) []models.MHistoryPoint {
	if days < 0 {
		days = 0
	}

	base := BasePrice(ticker)
	floor := decimal.NewFromFloat(base).Mul(historyFloor).RoundCeil(2)
	current := base * 0.9
	today := g.now().UTC()

	points := make([]models.MHistoryPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		step := (g.float() - 0.48) * (base * 0.03)
		current = math.Max(current+step, base*0.7)

		price := utils.Round2(current)
		if price.LessThan(floor) {
			price = floor
		}

		points = append(points, models.MHistoryPoint{
			Date:   today.AddDate(0, 0, -i).Format("2006-01-02"),
			Price:  price,
			Volume: int64(math.Floor(g.float()*50_000_000 + 10_000_000)),
		})
	}
	return points
}

// -----------------------------------------------------------------------------

type indexSpec struct {
	name   string
	base   float64
	spread float64
}

var indices = []indexSpec{
	{name: "S&P 500", base: 4780, spread: 20},
	{name: "NASDAQ", base: 15050, spread: 50},
	{name: "DOW", base: 37500, spread: 100},
}

// GenerateMarketSummary fills the index strip. MarketOpen is left for the
// caller to decide.
func (g *Generator) GenerateMarketSummary() models.MMarketSummary {
	summary := models.MMarketSummary{Indices: make([]models.MIndexQuote, 0, len(indices))}
	for _, idx := range indices {
		value := utils.Round2(idx.base + (g.float()-0.5)*idx.spread)
		change := utils.Round2(g.float() - 0.5)
		summary.Indices = append(summary.Indices, models.MIndexQuote{
			Name:          idx.name,
			Value:         value.StringFixed(2),
			ChangePercent: change.StringFixed(2),
			Positive:      !change.IsNegative(),
		})
	}
	summary.TotalVolume = utils.FormatVolume(int64(math.Floor(g.float()*5_000_000_000 + 10_000_000_000)))
	return summary
}
