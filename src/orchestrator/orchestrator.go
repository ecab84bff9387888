package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/store"
	"stock-dashboard/src/utils"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/threading"
)

const refreshErrorMessage = "Error refreshing data"

// errStopped marks a refresh that finished after Stop and was not installed.
const errStopped = "orchestrator stopped"

// attributedSource is implemented by sources that front several providers
// and can say which one answered.
type attributedSource interface {
	FetchQuotesFrom(ctx context.Context, symbols []models.MSymbol) ([]models.MQuote, string, error)
}

// cleaner is implemented by recorders that enforce a retention policy.
type cleaner interface {
	CleanupOldData() error
}

// -----------------------------------------------------------------------------

// Orchestrator runs refresh cycles: fetch live quotes, fall back to synthetic
// ones, and install the result into the store. Only the most recently
// started cycle may install; older cycles finishing later are discarded.
type Orchestrator struct {
	Symbols         []models.MSymbol
	Source          interfaces.IQuoteSource
	Generator       *generator.Generator
	Store           *store.Store
	Recorder        interfaces.ISnapshotRecorder
	Notifier        interfaces.INotifier
	Logger          *logger.Logger
	Interval        time.Duration
	BackfillMissing bool

	latest    atomic.Uint64
	installMu sync.Mutex
	recent    *utils.RingBuffer[models.MRefreshResult]

	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// -----------------------------------------------------------------------------

func NewOrchestrator(cfg *models.MConfig, source interfaces.IQuoteSource, gen *generator.Generator, st *store.Store) *Orchestrator {
	interval := time.Duration(cfg.DataSource.RefreshIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = utils.DefaultRefreshInterval
	}

	symbols := cfg.Dashboard.Symbols
	if len(symbols) == 0 {
		symbols = generator.DefaultSymbols()
	}

	return &Orchestrator{
		Symbols:         symbols,
		Source:          source,
		Generator:       gen,
		Store:           st,
		Logger:          logger.NewLogger(cfg, "Orchestrator"),
		Interval:        interval,
		BackfillMissing: cfg.DataSource.BackfillMissing,
		recent:          utils.NewRingBuffer[models.MRefreshResult](cfg.Dashboard.RecentRefreshes),
		baseCtx:         context.Background(),
	}
}

// -----------------------------------------------------------------------------

// Start runs one refresh synchronously and then schedules the periodic one.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.cron != nil {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.baseCtx, o.cancel = context.WithCancel(ctx)
	baseCtx := o.baseCtx

	cl := cronLogger{o.Logger}
	o.cron = cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
	c := o.cron
	o.mu.Unlock()

	o.Refresh(baseCtx, models.TriggerStartup)

	spec := fmt.Sprintf("@every %s", o.Interval)
	if _, err := c.AddFunc(spec, func() { o.Refresh(baseCtx, models.TriggerTimer) }); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	if rc, ok := o.Recorder.(cleaner); ok {
		if _, err := c.AddFunc("@daily", func() {
			if err := rc.CleanupOldData(); err != nil {
				o.Logger.Error("Snapshot retention cleanup failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("register cleanup job: %w", err)
		}
	}

	c.Start()
	o.Logger.Info("Refresh scheduled %s", spec)
	return nil
}

// -----------------------------------------------------------------------------

// Trigger starts a refresh in the background. Manual and timer refreshes
// share Refresh.
func (o *Orchestrator) Trigger(trigger string) {
	o.mu.Lock()
	ctx := o.baseCtx
	o.wg.Add(1)
	o.mu.Unlock()

	threading.GoSafe(func() {
		defer o.wg.Done()
		o.Refresh(ctx, trigger)
	})
}

// -----------------------------------------------------------------------------

// Stop cancels in-flight fetches, halts the schedule and waits for running
// refreshes. Refreshes finishing after Stop are not installed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	c := o.cron
	o.cron = nil
	cancel := o.cancel
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}
	o.wg.Wait()
	o.Logger.Info("Orchestrator stopped")
}

// -----------------------------------------------------------------------------

// Recent returns up to n refresh results, oldest first.
func (o *Orchestrator) Recent(n int) []models.MRefreshResult {
	return o.recent.GetLatest(n)
}

// -----------------------------------------------------------------------------

// LatestID is the id of the most recently started refresh.
func (o *Orchestrator) LatestID() uint64 {
	return o.latest.Load()
}

// -----------------------------------------------------------------------------

// lifetime is cancelled by Stop.
func (o *Orchestrator) lifetime() context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.baseCtx
}

// -----------------------------------------------------------------------------

// fetchContext keeps ctx's values but not its cancellation: a caller giving up
// on a request must not turn a live refresh into a synthetic one. Only Stop
// cancels the fetch.
func (o *Orchestrator) fetchContext(ctx context.Context, lifetime context.Context) (context.Context, context.CancelFunc) {
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(lifetime, cancel)
	return fetchCtx, func() {
		stop()
		cancel()
	}
}

// -----------------------------------------------------------------------------

// Refresh runs one complete cycle. It never panics; failures become an error
// result and a toast. Cancelling ctx does not abort the cycle.
func (o *Orchestrator) Refresh(ctx context.Context, trigger string) (result models.MRefreshResult) {
	lifetime := o.lifetime()
	if lifetime.Err() != nil {
		o.Logger.Info("Ignoring %s refresh after stop", trigger)
		return models.MRefreshResult{Trigger: trigger, Stale: true, Error: errStopped}
	}

	result = models.MRefreshResult{
		ID:        o.latest.Add(1),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = helpers.PanicError(r).Error()
			o.Logger.Error("Refresh %d failed: %v", result.ID, r)
		}
		result.FinishedAt = time.Now()
		result.Duration = result.FinishedAt.Sub(result.StartedAt)
		o.recent.Append(result)

		if result.Error != "" {
			o.notify(models.MToast{Message: refreshErrorMessage, Type: models.ToastError, CreatedAt: result.FinishedAt})
		}
	}()

	fetchCtx, cancel := o.fetchContext(ctx, lifetime)
	defer cancel()

	snap := o.buildSnapshot(fetchCtx, &result)
	if lifetime.Err() != nil {
		result.Stale = true
		o.Logger.Info("Discarding refresh %d, orchestrator stopped", result.ID)
		return result
	}
	o.install(snap, &result)
	return result
}

// -----------------------------------------------------------------------------

func (o *Orchestrator) buildSnapshot(ctx context.Context, result *models.MRefreshResult) *models.MSnapshot {
	quotes, provider, err := o.fetch(ctx)
	source := models.SourceLivePrefix + provider

	if err != nil {
		result.Fallback = true
		result.Reason = helpers.ReasonOf(err)
		o.Logger.Warning("Refresh %d using synthetic data (%s): %v", result.ID, result.Reason, err)
		quotes = o.Generator.GenerateQuotes(o.Symbols)
		source = models.SourceSynthetic
	} else if o.BackfillMissing {
		quotes = o.backfill(quotes)
	}

	result.Source = source
	result.Symbols = len(quotes)
	return &models.MSnapshot{
		ID:        result.ID,
		Source:    source,
		Quotes:    quotes,
		CreatedAt: time.Now(),
	}
}

// -----------------------------------------------------------------------------

func (o *Orchestrator) fetch(ctx context.Context) ([]models.MQuote, string, error) {
	if o.Source == nil {
		return nil, "", helpers.NewFallback("none", helpers.ReasonNoSource, nil)
	}
	if as, ok := o.Source.(attributedSource); ok {
		return as.FetchQuotesFrom(ctx, o.Symbols)
	}
	quotes, err := o.Source.FetchQuotes(ctx, o.Symbols)
	return quotes, o.Source.Name(), err
}

// -----------------------------------------------------------------------------

// backfill generates quotes for tracked symbols the provider left out,
// keeping tracked-symbol order.
func (o *Orchestrator) backfill(quotes []models.MQuote) []models.MQuote {
	byTicker := make(map[string]models.MQuote, len(quotes))
	for _, q := range quotes {
		byTicker[q.Symbol] = q
	}

	out := make([]models.MQuote, 0, len(o.Symbols))
	for _, sym := range o.Symbols {
		if q, ok := byTicker[sym.Ticker]; ok {
			out = append(out, q)
			continue
		}
		o.Logger.Debug("Backfilling %s with synthetic quote", sym.Ticker)
		out = append(out, o.Generator.GenerateQuote(sym))
	}
	return out
}

// -----------------------------------------------------------------------------

func (o *Orchestrator) install(snap *models.MSnapshot, result *models.MRefreshResult) {
	latest, autoSelected, ok := o.installIfLatest(snap)
	if !ok {
		result.Stale = true
		o.Logger.Info("Discarding refresh %d, superseded by %d", snap.ID, latest)
		return
	}
	if autoSelected != "" {
		o.notify(models.MToast{Message: fmt.Sprintf("Selected %s", autoSelected), Type: models.ToastInfo, CreatedAt: time.Now()})
	}

	o.Logger.Info("Installed snapshot %d from %s (%d quotes, %s)", snap.ID, snap.Source, snap.Len(), result.Trigger)

	if o.Recorder != nil {
		if err := o.Recorder.SaveSnapshot(snap); err != nil {
			o.Logger.Error("Failed to record snapshot %d: %v", snap.ID, err)
		}
	}
}

// -----------------------------------------------------------------------------

func (o *Orchestrator) installIfLatest(snap *models.MSnapshot) (uint64, string, bool) {
	o.installMu.Lock()
	defer o.installMu.Unlock()

	latest := o.latest.Load()
	if snap.ID != latest {
		return latest, "", false
	}
	return latest, o.Store.ReplaceSnapshot(snap), true
}

// -----------------------------------------------------------------------------

func (o *Orchestrator) notify(toast models.MToast) {
	if o.Notifier != nil {
		o.Notifier.Notify(toast)
	}
}

// -----------------------------------------------------------------------------
// cron.Logger adapter
// -----------------------------------------------------------------------------

type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
