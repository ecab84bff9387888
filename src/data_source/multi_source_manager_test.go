package datasource

import (
	"context"
	"errors"
	"testing"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name   string
	quotes []models.MQuote
	err    error
	calls  int
	panics bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchQuotes(ctx context.Context, symbols []models.MSymbol) ([]models.MQuote, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.quotes, s.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(nil, "msm-test")
}

func TestFetchQuotesPrefersFirstUsableSource(t *testing.T) {
	gen := generator.New(generator.WithSeed(1))
	good := gen.GenerateQuotes(generator.DefaultSymbols())

	primary := &stubSource{name: "primary", err: helpers.NewFallback("primary", helpers.ReasonRateLimited, nil)}
	secondary := &stubSource{name: "secondary", quotes: good}
	m := NewMultiSourceManager(nil, testLogger())
	require.NoError(t, m.AddSource(primary))
	require.NoError(t, m.AddSource(secondary))

	quotes, from, err := m.FetchQuotesFrom(context.Background(), generator.DefaultSymbols())
	require.NoError(t, err)
	assert.Equal(t, "secondary", from)
	assert.Len(t, quotes, len(good))
	assert.Equal(t, 1, primary.calls)

	statuses := m.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, helpers.ReasonRateLimited, statuses[0].LastReason)
	assert.Equal(t, 1, statuses[0].Failures)
	assert.Empty(t, statuses[1].LastReason)
	assert.Equal(t, len(good), statuses[1].LastQuotes)
}

func TestFetchQuotesReportsLastReason(t *testing.T) {
	m := NewMultiSourceManager(nil, testLogger())
	require.NoError(t, m.AddSource(&stubSource{name: "a", err: errors.New("refused")}))
	require.NoError(t, m.AddSource(&stubSource{name: "b", panics: true}))

	_, err := m.FetchQuotes(context.Background(), generator.DefaultSymbols())
	var fb *helpers.FallbackError
	require.ErrorAs(t, err, &fb)
	assert.Equal(t, "b", fb.Source)
	assert.Equal(t, helpers.ReasonPanic, fb.Reason)
}

func TestFetchQuotesWithoutEnabledSources(t *testing.T) {
	src := &stubSource{name: "only"}
	m := NewMultiSourceManager(nil, testLogger())
	require.NoError(t, m.AddSource(src))
	require.NoError(t, m.SetEnabled("only", false))

	_, err := m.FetchQuotes(context.Background(), generator.DefaultSymbols())
	assert.Equal(t, helpers.ReasonNoSource, helpers.ReasonOf(err))
	assert.Zero(t, src.calls)
}

func TestSourceRegistry(t *testing.T) {
	m := NewMultiSourceManager(nil, testLogger())
	require.NoError(t, m.AddSource(&stubSource{name: "a"}))
	assert.Error(t, m.AddSource(&stubSource{name: "a"}))

	got, err := m.GetSource("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name())
	assert.Equal(t, "custom", m.Statuses()[0].Type)

	require.NoError(t, m.RemoveSource("a"))
	assert.Error(t, m.RemoveSource("a"))
	_, err = m.GetSource("a")
	assert.Error(t, err)
	assert.Error(t, m.SetEnabled("a", true))
}

func TestNewMultiSourceManagerFromConfig(t *testing.T) {
	cfg := &models.MConfig{Name: "test"}
	cfg.DataSource.Sources = []models.MSourceConfig{
		{Name: "av", Type: "alphavantage"},
		{Name: "alp", Type: "alpaca", Disabled: true},
	}

	m, err := NewMultiSourceManagerFromConfig(cfg, nil, testLogger())
	require.NoError(t, err)
	statuses := m.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "alphavantage", statuses[0].Type)
	assert.True(t, statuses[0].Enabled)
	assert.Equal(t, "alpaca", statuses[1].Type)
	assert.False(t, statuses[1].Enabled)

	cfg.DataSource.Sources = []models.MSourceConfig{{Name: "x", Type: "bloomberg"}}
	_, err = NewMultiSourceManagerFromConfig(cfg, nil, testLogger())
	var ce *helpers.ConfigurationError
	assert.ErrorAs(t, err, &ce)
}
