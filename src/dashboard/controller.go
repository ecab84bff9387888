package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/projection"
	"stock-dashboard/src/store"
)

// Refresher is the part of the orchestrator the controller drives.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) models.MRefreshResult
	Trigger(trigger string)
	Recent(n int) []models.MRefreshResult
}

// -----------------------------------------------------------------------------

// Controller owns the store and turns user actions into store mutations and
// projections. Every served surface goes through it.
type Controller struct {
	Store     *store.Store
	Refresher Refresher
	Generator projection.Generator
	Clock     projection.Clock
	Notifier  interfaces.INotifier
	Logger    *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewController(st *store.Store, refresher Refresher, gen projection.Generator, clock projection.Clock, notifier interfaces.INotifier) *Controller {
	return &Controller{
		Store:     st,
		Refresher: refresher,
		Generator: gen,
		Clock:     clock,
		Notifier:  notifier,
		Logger:    logger.NewLogger(nil, "Controller"),
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

func (c *Controller) View() models.MDashboardView {
	return projection.Dashboard(c.Store.State(), c.Generator, c.Clock)
}

func (c *Controller) Cards() []models.MCardView {
	return projection.Cards(c.Store.State())
}

func (c *Controller) Table() []models.MTableRow {
	return projection.Table(c.Store.State())
}

func (c *Controller) Watchlist() models.MWatchlistView {
	return projection.Watchlist(c.Store.State())
}

func (c *Controller) Detail() models.MDetailView {
	return projection.Detail(c.Store.State())
}

// Chart uses the store's timeframe when timeframe is empty.
func (c *Controller) Chart(timeframe string) models.MChartView {
	return projection.Chart(c.Store.State(), c.Generator, timeframe)
}

func (c *Controller) Summary() models.MMarketSummary {
	return projection.Summary(c.Generator, c.Clock)
}

// -----------------------------------------------------------------------------
// Interaction handlers
// -----------------------------------------------------------------------------

// Search sets the filter text and returns the cards it produces.
func (c *Controller) Search(query string) []models.MCardView {
	c.Store.SetFilter(query)
	return c.Cards()
}

// -----------------------------------------------------------------------------

func (c *Controller) SortBy(criterion string) ([]models.MCardView, error) {
	if err := c.Store.SetSort(criterion); err != nil {
		return nil, err
	}
	return c.Cards(), nil
}

// -----------------------------------------------------------------------------

// SelectSymbol focuses ticker. A ticker missing from the snapshot clears the
// selection and returns a ValidationError.
func (c *Controller) SelectSymbol(ticker string) (models.MDetailView, error) {
	if !c.Store.Select(ticker) {
		return c.Detail(), helpers.NewValidationError("unknown ticker %q", ticker)
	}
	detail := c.Detail()
	c.toast(fmt.Sprintf("Selected %s", detail.Ticker), models.ToastInfo)
	return detail, nil
}

// -----------------------------------------------------------------------------

// ToggleFavorite flips watchlist membership and reports the new state.
func (c *Controller) ToggleFavorite(ticker string) (bool, error) {
	added, err := c.Store.ToggleWatchlist(ticker)
	var ve *helpers.ValidationError
	if errors.As(err, &ve) {
		return false, err
	}

	t := normalize(ticker)
	if added {
		c.toast(fmt.Sprintf("Added %s to watchlist", t), models.ToastSuccess)
	} else {
		c.toast(fmt.Sprintf("Removed %s from watchlist", t), models.ToastInfo)
	}
	return added, err
}

// -----------------------------------------------------------------------------

// RemoveFromWatchlist only ever removes; an unwatched ticker is a no-op.
func (c *Controller) RemoveFromWatchlist(ticker string) (models.MWatchlistView, error) {
	removed, err := c.Store.RemoveFromWatchlist(ticker)
	if removed {
		c.toast(fmt.Sprintf("Removed %s from watchlist", normalize(ticker)), models.ToastInfo)
	}
	return c.Watchlist(), err
}

// -----------------------------------------------------------------------------

func (c *Controller) SetTimeframe(timeframe string) (models.MChartView, error) {
	if err := c.Store.SetTimeframe(timeframe); err != nil {
		return models.MChartView{}, err
	}
	return c.Chart(timeframe), nil
}

// -----------------------------------------------------------------------------

func (c *Controller) ToggleTheme() (string, error) {
	return c.Store.ToggleTheme()
}

func (c *Controller) SetViewMode(mode string) error {
	return c.Store.SetViewMode(mode)
}

func (c *Controller) SetChartType(chartType string) error {
	return c.Store.SetChartType(chartType)
}

// -----------------------------------------------------------------------------

// Refresh runs a manual refresh and waits for it.
func (c *Controller) Refresh(ctx context.Context) models.MRefreshResult {
	return c.Refresher.Refresh(ctx, models.TriggerManual)
}

// RefreshAsync starts a manual refresh without waiting.
func (c *Controller) RefreshAsync() {
	c.Refresher.Trigger(models.TriggerManual)
}

// Recent returns the latest refresh outcomes, oldest first.
func (c *Controller) Recent(n int) []models.MRefreshResult {
	return c.Refresher.Recent(n)
}

// -----------------------------------------------------------------------------

func (c *Controller) toast(message, kind string) {
	if c.Notifier == nil {
		return
	}
	c.Notifier.Notify(models.MToast{Message: message, Type: kind, CreatedAt: c.now()})
}

// -----------------------------------------------------------------------------

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
