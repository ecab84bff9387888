package server

import (
	"encoding/json"
	"net/http"

	"stock-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				s.drop(client)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			view := s.Controller.View()
			client.trySend(&models.MPushMessage{Type: models.MessageInitial, View: &view})

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.drop(client)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				if !client.trySend(message) {
					// Client too slow, disconnect to prevent Hub blocking
					s.Logger.Info("Dropping slow client %s", client.id)
					s.drop(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) drop(client *Client) {
	delete(s.clients, client)
	client.close()
	s.clientCount.Store(int64(len(s.clients)))
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MPushMessage, 64),
	}
	if c.Query("encoding") == EncodingMsgpack {
		client.binary.Store(true)
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}
	s.Logger.Debug("Client %s connected from %s", client.id, c.ClientIP())

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies one command. Resulting store changes reach the
// client through the regular UPDATE broadcast; only failures are answered
// directly.
func (s *DashboardServer) HandleClientMessage(client *Client, messageType int, message []byte) {
	var cmd models.MClientCommand
	var err error
	if messageType == websocket.BinaryMessage {
		err = msgpack.Unmarshal(message, &cmd)
	} else {
		err = json.Unmarshal(message, &cmd)
	}
	if err != nil {
		s.Logger.Info("Failed to parse command from %s: %v, disconnecting client", client.id, err)
		client.conn.Close()
		return
	}

	if err := s.applyCommand(client, cmd); err != nil {
		client.trySend(&models.MPushMessage{Type: models.MessageError, Error: err.Error()})
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) applyCommand(client *Client, cmd models.MClientCommand) error {
	ctl := s.Controller

	switch cmd.Command {
	case "subscribe":
		client.binary.Store(cmd.Encoding == EncodingMsgpack)
		view := ctl.View()
		client.trySend(&models.MPushMessage{Type: models.MessageInitial, View: &view})
		return nil
	case "select":
		_, err := ctl.SelectSymbol(cmd.Ticker)
		return err
	case "toggle_watchlist":
		_, err := ctl.ToggleFavorite(cmd.Ticker)
		return err
	case "remove_watchlist":
		_, err := ctl.RemoveFromWatchlist(cmd.Ticker)
		return err
	case "search":
		ctl.Search(cmd.Query)
		return nil
	case "sort":
		_, err := ctl.SortBy(cmd.Criterion)
		return err
	case "timeframe":
		_, err := ctl.SetTimeframe(cmd.Timeframe)
		return err
	case "theme":
		if cmd.Value != "" {
			return ctl.Store.SetTheme(cmd.Value)
		}
		_, err := ctl.ToggleTheme()
		return err
	case "view_mode":
		return ctl.SetViewMode(cmd.Value)
	case "chart_type":
		return ctl.SetChartType(cmd.Value)
	case "refresh":
		ctl.RefreshAsync()
		return nil
	default:
		return errUnknownCommand(cmd.Command)
	}
}
