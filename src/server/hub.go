package server

import (
	"encoding/json"
	"net/http"

	"drift-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				// Send full initial state
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case snapshot := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = snapshot
			s.stateMutex.Unlock()

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- snapshot:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					// This ensures reliable 24/7 operation by pruning dead/slow consumers
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a snapshot for all connected dashboard clients.
func (s *DashboardServer) Broadcast(snapshot *models.MSnapshot) {
	if snapshot == nil {
		return
	}
	snapshot.Type = "UPDATE"

	// Non-blocking send: with a full queue the newest snapshot wins later,
	// dropping one intermediate state is harmless.
	select {
	case s.broadcast <- snapshot:
	default:
		s.Logger.Warning("Broadcast queue full, dropping snapshot")
	}
}

// -----------------------------------------------------------------------------

// UpdateSnapshot replaces the cached state without broadcasting.
func (s *DashboardServer) UpdateSnapshot(snapshot *models.MSnapshot) {
	if snapshot == nil {
		return
	}
	s.stateMutex.Lock()
	s.latestState = snapshot
	s.stateMutex.Unlock()
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
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	// A subscribe always answers with a freshly assembled INITIAL snapshot.
	response := s.Service.Snapshot("INITIAL")

	// Use select to avoid blocking if client's send buffer is full
	select {
	case client.send <- response:
	default:
	}
}
