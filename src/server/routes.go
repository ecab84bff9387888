package server

import (
	"errors"
	"net/http"
	"strconv"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/store"
	"stock-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

type valueBody struct {
	Query     string `json:"query"`
	Criterion string `json:"criterion"`
	Timeframe string `json:"timeframe"`
	Value     string `json:"value"`
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")

	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)

	// views
	api.GET("/dashboard", s.getDashboard)
	api.GET("/cards", func(c *gin.Context) { c.JSON(http.StatusOK, s.Controller.Cards()) })
	api.GET("/table", func(c *gin.Context) { c.JSON(http.StatusOK, s.Controller.Table()) })
	api.GET("/watchlist", func(c *gin.Context) { c.JSON(http.StatusOK, s.Controller.Watchlist()) })
	api.GET("/detail", func(c *gin.Context) { c.JSON(http.StatusOK, s.Controller.Detail()) })
	api.GET("/chart", s.getChart)
	api.GET("/summary", func(c *gin.Context) { c.JSON(http.StatusOK, s.Controller.Summary()) })
	api.GET("/refreshes", s.getRefreshes)

	// interactions
	api.POST("/refresh", s.postRefresh)
	api.POST("/select/:ticker", s.postSelect)
	api.POST("/watchlist/:ticker/toggle", s.postToggleWatchlist)
	api.DELETE("/watchlist/:ticker", s.deleteWatchlist)
	api.PUT("/filter", s.putFilter)
	api.PUT("/sort", s.putSort)
	api.PUT("/timeframe", s.putTimeframe)
	api.PUT("/view-mode", s.putViewMode)
	api.PUT("/chart-type", s.putChartType)
	api.POST("/theme/toggle", s.postThemeToggle)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	state := s.Controller.Store.State()
	var snapshotID uint64
	if state.Snapshot != nil {
		snapshotID = state.Snapshot.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"connections":  s.clientCount.Load(),
		"snapshot_id":  snapshotID,
		"last_refresh": state.LastRefresh,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbols":                  s.Config.Dashboard.Symbols,
		"sort_options":             store.SortCriteria,
		"timeframes":               []string{utils.TimeframeDaily, utils.TimeframeWeekly, utils.TimeframeYearly},
		"themes":                   []string{store.ThemeDark, store.ThemeLight},
		"view_modes":               []string{store.ViewGrid, store.ViewTable},
		"chart_types":              []string{store.ChartLine, store.ChartBar},
		"refresh_interval_seconds": s.Config.DataSource.RefreshIntervalSeconds,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.Controller.View())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getChart(c *gin.Context) {
	timeframe := c.Query("timeframe")
	if timeframe != "" && !utils.IsTimeframe(timeframe) {
		s.writeError(c, helpers.NewValidationError("unknown timeframe %q", timeframe))
		return
	}
	c.JSON(http.StatusOK, s.Controller.Chart(timeframe))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getRefreshes(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "10"))
	if err != nil || n <= 0 {
		s.writeError(c, helpers.NewValidationError("invalid n %q", c.Query("n")))
		return
	}
	c.JSON(http.StatusOK, s.Controller.Recent(n))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postRefresh(c *gin.Context) {
	result := s.Controller.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postSelect(c *gin.Context) {
	detail, err := s.Controller.SelectSymbol(c.Param("ticker"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "detail": detail})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postToggleWatchlist(c *gin.Context) {
	ticker := c.Param("ticker")
	added, err := s.Controller.ToggleFavorite(ticker)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "watched": added})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) deleteWatchlist(c *gin.Context) {
	view, err := s.Controller.RemoveFromWatchlist(c.Param("ticker"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) putFilter(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Controller.Search(body.Query))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) putSort(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}
	cards, err := s.Controller.SortBy(body.Criterion)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) putTimeframe(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}
	chart, err := s.Controller.SetTimeframe(body.Timeframe)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) putViewMode(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}
	if err := s.Controller.SetViewMode(body.Value); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view_mode": body.Value})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) putChartType(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}
	if err := s.Controller.SetChartType(body.Value); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart_type": body.Value})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postThemeToggle(c *gin.Context) {
	theme, err := s.Controller.ToggleTheme()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *DashboardServer) bindBody(c *gin.Context) (valueBody, bool) {
	var body valueBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, helpers.NewValidationError("invalid body: %v", err))
		return body, false
	}
	return body, true
}

// -----------------------------------------------------------------------------

// writeError maps validation failures to 400 and everything else to 500.
func (s *DashboardServer) writeError(c *gin.Context, err error) {
	var ve *helpers.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
