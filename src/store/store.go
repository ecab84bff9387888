package store

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"
)

// Preference keys.
const (
	KeyTheme     = "theme"
	KeyWatchlist = "watchlist"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	ViewGrid  = "grid"
	ViewTable = "table"

	ChartLine = "line"
	ChartBar  = "bar"
)

// -----------------------------------------------------------------------------

// State is a read-only copy of everything the store holds. Projections are
// pure functions of a State.
type State struct {
	Snapshot    *models.MSnapshot
	Selected    string
	Watchlist   []string
	Filter      string
	Sort        string
	Theme       string
	Timeframe   string
	ViewMode    string
	ChartType   string
	LastRefresh time.Time
}

// -----------------------------------------------------------------------------

// Selection resolves the selected ticker against the snapshot.
func (s State) Selection() (models.MQuote, bool) {
	if s.Selected == "" {
		return models.MQuote{}, false
	}
	return s.Snapshot.Find(s.Selected)
}

// -----------------------------------------------------------------------------

func (s State) IsWatched(ticker string) bool {
	for _, t := range s.Watchlist {
		if t == ticker {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Store is the only shared mutable state of the dashboard: the current
// snapshot plus selection, watchlist and view parameters.
type Store struct {
	mu          sync.RWMutex
	snapshot    *models.MSnapshot
	selected    string
	watchlist   []string
	filter      string
	sort        string
	theme       string
	timeframe   string
	viewMode    string
	chartType   string
	lastRefresh time.Time
	installed   bool

	prefs  interfaces.IPreferenceStore
	Logger *logger.Logger

	subMu       sync.Mutex
	subscribers map[int]chan MChange
	nextSub     int

	now func() time.Time
}

// -----------------------------------------------------------------------------

// New creates an empty store. prefs may be nil, in which case nothing is
// persisted.
func New(prefs interfaces.IPreferenceStore, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewLogger(nil, "Store")
	}
	return &Store{
		theme:       ThemeDark,
		timeframe:   utils.TimeframeDaily,
		viewMode:    ViewGrid,
		chartType:   ChartLine,
		prefs:       prefs,
		Logger:      log,
		subscribers: make(map[int]chan MChange),
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Snapshot:    s.snapshot,
		Selected:    s.selected,
		Watchlist:   append([]string(nil), s.watchlist...),
		Filter:      s.filter,
		Sort:        s.sort,
		Theme:       s.theme,
		Timeframe:   s.timeframe,
		ViewMode:    s.viewMode,
		ChartType:   s.chartType,
		LastRefresh: s.lastRefresh,
	}
}

// -----------------------------------------------------------------------------

func (s *Store) Snapshot() *models.MSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// -----------------------------------------------------------------------------

// Selection looks the selected ticker up in the current snapshot.
func (s *Store) Selection() (models.MQuote, bool) {
	return s.State().Selection()
}

// -----------------------------------------------------------------------------

func (s *Store) Watchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.watchlist...)
}

// -----------------------------------------------------------------------------

func (s *Store) IsWatched(ticker string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.watchlist, ticker) >= 0
}

// -----------------------------------------------------------------------------
// Mutators
// -----------------------------------------------------------------------------

// ReplaceSnapshot installs snap and re-resolves the selection by ticker.
// The first snapshot ever installed selects its first record when nothing is
// selected yet; that ticker is returned, otherwise "".
func (s *Store) ReplaceSnapshot(snap *models.MSnapshot) string {
	s.mu.Lock()
	s.snapshot = snap
	s.lastRefresh = s.now()

	selectionChanged := false
	autoSelected := ""
	switch {
	case s.selected != "":
		if _, ok := snap.Find(s.selected); !ok {
			s.Logger.Info("Selected ticker %s missing from snapshot %d, clearing selection", s.selected, snap.ID)
			s.selected = ""
			selectionChanged = true
		}
	case !s.installed && snap.Len() > 0:
		s.selected = snap.Quotes[0].Symbol
		autoSelected = s.selected
		selectionChanged = true
	}
	s.installed = true
	s.mu.Unlock()

	s.publish(ChangeSnapshot)
	if selectionChanged {
		s.publish(ChangeSelection)
	}
	return autoSelected
}

// -----------------------------------------------------------------------------

// Select sets the selection when ticker is in the current snapshot. A miss
// clears the selection and returns false.
func (s *Store) Select(ticker string) bool {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	s.mu.Lock()
	_, ok := s.snapshot.Find(ticker)
	if ok {
		s.selected = ticker
	} else {
		s.selected = ""
	}
	s.mu.Unlock()

	s.publish(ChangeSelection)
	return ok
}

// -----------------------------------------------------------------------------

// ToggleWatchlist adds ticker if absent, removes it if present, then persists
// the whole set. The in-memory set changes even if persisting fails.
func (s *Store) ToggleWatchlist(ticker string) (bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return false, helpers.NewValidationError("empty ticker")
	}

	s.mu.Lock()
	added := false
	if i := indexOf(s.watchlist, ticker); i >= 0 {
		s.watchlist = append(s.watchlist[:i:i], s.watchlist[i+1:]...)
	} else {
		s.watchlist = append(s.watchlist, ticker)
		added = true
	}
	list := append([]string(nil), s.watchlist...)
	s.mu.Unlock()

	err := s.persistWatchlist(list)
	s.publish(ChangeWatchlist)
	return added, err
}

// -----------------------------------------------------------------------------

// RemoveFromWatchlist removes ticker; it reports false when it was not watched.
func (s *Store) RemoveFromWatchlist(ticker string) (bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !s.IsWatched(ticker) {
		return false, nil
	}
	added, err := s.ToggleWatchlist(ticker)
	return !added, err
}

// -----------------------------------------------------------------------------

func (s *Store) SetFilter(query string) {
	s.mu.Lock()
	s.filter = query
	s.mu.Unlock()
	s.publish(ChangeFilter)
}

// -----------------------------------------------------------------------------

// SetSort sets the single active sort criterion; "" restores snapshot order.
func (s *Store) SetSort(criterion string) error {
	if !IsSortCriterion(criterion) {
		return helpers.NewValidationError("unknown sort criterion %q", criterion)
	}
	s.mu.Lock()
	s.sort = criterion
	s.mu.Unlock()
	s.publish(ChangeSort)
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return helpers.NewValidationError("unknown theme %q", theme)
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	err := s.persist(KeyTheme, theme)
	s.publish(ChangeTheme)
	return err
}

// -----------------------------------------------------------------------------

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme() (string, error) {
	s.mu.RLock()
	next := ThemeLight
	if s.theme == ThemeLight {
		next = ThemeDark
	}
	s.mu.RUnlock()
	return next, s.SetTheme(next)
}

// -----------------------------------------------------------------------------

func (s *Store) SetTimeframe(timeframe string) error {
	if !utils.IsTimeframe(timeframe) {
		return helpers.NewValidationError("unknown timeframe %q", timeframe)
	}
	s.mu.Lock()
	s.timeframe = timeframe
	s.mu.Unlock()
	s.publish(ChangeTimeframe)
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) SetViewMode(mode string) error {
	if mode != ViewGrid && mode != ViewTable {
		return helpers.NewValidationError("unknown view mode %q", mode)
	}
	s.mu.Lock()
	s.viewMode = mode
	s.mu.Unlock()
	s.publish(ChangeViewMode)
	return nil
}

// -----------------------------------------------------------------------------

// SetChartType is cosmetic; the chart data does not depend on it.
func (s *Store) SetChartType(chartType string) error {
	if chartType != ChartLine && chartType != ChartBar {
		return helpers.NewValidationError("unknown chart type %q", chartType)
	}
	s.mu.Lock()
	s.chartType = chartType
	s.mu.Unlock()
	s.publish(ChangeChartType)
	return nil
}

// -----------------------------------------------------------------------------
// Preferences
// -----------------------------------------------------------------------------

// UseDefaultTheme sets the theme used when no preference is stored. It is not
// persisted; an unknown theme keeps dark.
func (s *Store) UseDefaultTheme(theme string) {
	if theme != ThemeDark && theme != ThemeLight {
		return
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// LoadPreferences reads theme and watchlist once. Missing keys keep the dark
// theme and an empty watchlist; a corrupt watchlist is logged and ignored.
func (s *Store) LoadPreferences() error {
	if s.prefs == nil {
		return nil
	}

	theme, ok, err := s.prefs.GetPreference(KeyTheme)
	if err != nil {
		return err
	}
	if ok && (theme == ThemeDark || theme == ThemeLight) {
		s.mu.Lock()
		s.theme = theme
		s.mu.Unlock()
	}

	raw, ok, err := s.prefs.GetPreference(KeyWatchlist)
	if err != nil {
		return err
	}
	if ok {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			s.Logger.Warning("Ignoring corrupt watchlist preference: %v", err)
		} else {
			s.mu.Lock()
			s.watchlist = dedupe(list)
			s.mu.Unlock()
		}
	}

	s.Logger.Info("Loaded preferences: theme=%s watchlist=%d", s.State().Theme, len(s.Watchlist()))
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) persistWatchlist(list []string) error {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.persist(KeyWatchlist, string(data))
}

// -----------------------------------------------------------------------------

func (s *Store) persist(key, value string) error {
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.SetPreference(key, value); err != nil {
		s.Logger.Error("Failed to persist %s: %v", key, err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func indexOf(list []string, ticker string) int {
	for i, t := range list {
		if t == ticker {
			return i
		}
	}
	return -1
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" && indexOf(out, t) < 0 {
			out = append(out, t)
		}
	}
	return out
}
