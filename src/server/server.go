package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"stock-dashboard/src/dashboard"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

// DashboardServer serves the REST API and the websocket push channel. It is
// also the toast notifier: toasts go to every connected client.
type DashboardServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Controller *dashboard.Controller
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	clientCount atomic.Int64
	broadcast   chan *models.MPushMessage
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	mu        sync.Mutex
}

var (
	_ interfaces.IDataExchanger = (*DashboardServer)(nil)
	_ interfaces.INotifier      = (*DashboardServer)(nil)
)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, log *logger.Logger) *DashboardServer {
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
		// Buffered so store changes never wait on the hub
		broadcast:  make(chan *models.MPushMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.cors())
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// SetController attaches the controller. The server is created first so it
// can be handed to the controller as its notifier.
func (s *DashboardServer) SetController(c *dashboard.Controller) {
	s.Controller = c
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Handler exposes the gin engine, mainly for httptest.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------

// Start serves until Stop is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.runBackground()

	s.mu.Lock()
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	srv := s.httpServer
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// runBackground starts the hub loop and the store watcher once.
func (s *DashboardServer) runBackground() {
	s.startOnce.Do(func() {
		go s.handleWebsockets()
		go s.watchStore()
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		srv := s.httpServer
		s.mu.Unlock()

		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = srv.Shutdown(ctx)
		}
		close(s.done)
	})
	return err
}

// -----------------------------------------------------------------------------
// Notifier
// -----------------------------------------------------------------------------

// Notify queues a toast for every client. A full queue drops the toast.
func (s *DashboardServer) Notify(toast models.MToast) {
	if toast.CreatedAt.IsZero() {
		toast.CreatedAt = time.Now()
	}
	s.enqueue(&models.MPushMessage{Type: models.MessageToast, Toast: &toast})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) enqueue(msg *models.MPushMessage) {
	select {
	case s.broadcast <- msg:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s message", msg.Type)
	}
}

// -----------------------------------------------------------------------------

// watchStore re-projects the dashboard after store changes. Changes that
// arrive while one view is being built fold into the next one.
func (s *DashboardServer) watchStore() {
	changes, unsubscribe := s.Controller.Store.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-s.done:
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
		drain:
			for {
				select {
				case <-changes:
				default:
					break drain
				}
			}
			view := s.Controller.View()
			s.enqueue(&models.MPushMessage{Type: models.MessageUpdate, View: &view})
		}
	}
}
