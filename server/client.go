package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/plantworks/leantwin/graph"
	"github.com/plantworks/leantwin/logger"
)

// WebSocket timeout constants following Gorilla best practices
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// Client represents a WebSocket client connection
type Client struct {
	server    *TwinServer
	conn      *websocket.Conn
	send      chan *graph.Graph
	sendMsg   chan interface{}
	id        string
	closeOnce sync.Once
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.logger.Debugw("Read pump started", "client_id", c.id)

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.server.logger.Warnw("JSON unmarshal error",
				"error", err.Error(),
				"client_id", c.id,
			)
			continue
		}

		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors. Expected
// closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		c.server.logger.Warnw("WebSocket read error",
			"error", err.Error(),
			"client_id", c.id,
		)
	}
}

// routeMessage dispatches incoming WebSocket messages.
func (c *Client) routeMessage(msg *ClientMessage) {
	switch msg.Type {
	case "select":
		c.handleSelect(msg.Selection)
	case "clear":
		c.handleClear()
	case "set_verbosity":
		c.handleSetVerbosity(msg.Verbosity)
	case "ping":
		// Deadline already refreshed by the pong handler.
	default:
		c.server.logger.Debugw("Unknown message type",
			"type", msg.Type,
			"client_id", c.id,
		)
	}
}

// handleSelect builds a neighborhood graph for the selection on the
// tracker and broadcasts the result.
func (c *Client) handleSelect(selection string) {
	if _, err := c.server.submitGraphBuild(selection); err != nil {
		c.server.logger.Warnw("Graph build rejected",
			"client_id", c.id,
			"error", err,
		)
	}
}

// handleClear broadcasts an empty graph.
func (c *Client) handleClear() {
	c.server.logger.Debugw("Clearing graph", "client_id", c.id)
	c.server.BroadcastGraph(clearedGraph())
}

// handleSetVerbosity updates the server verbosity level
func (c *Client) handleSetVerbosity(verbosity int) {
	oldVerbosity := int(c.server.verbosity.Load())
	c.server.verbosity.Store(int32(verbosity))

	c.server.logger.Infow("Verbosity level changed",
		"client_id", c.id,
		"old_verbosity", oldVerbosity,
		"new_verbosity", verbosity,
	)
}

// writePump writes graph updates and status messages to the WebSocket
// connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	c.server.logger.Debugw("Write pump started", "client_id", c.id)

	for {
		select {
		case <-c.server.ctx.Done():
			c.server.logger.Debugw("Write pump stopping due to server shutdown",
				"client_id", c.id)
			return
		case g, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(graphEnvelope{Type: "graph", Graph: g}); err != nil {
				c.server.logger.Warnw("Graph write error",
					"error", err.Error(),
					"client_id", c.id,
				)
				return
			}

			if logger.ShouldLogTrace(int(c.server.verbosity.Load())) {
				c.server.logger.Debugw("Sent graph to client",
					"client_id", c.id,
					"nodes", len(g.Nodes),
					"links", len(g.Links),
				)
			}

		case msg, ok := <-c.sendMsg:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Debugw("Message write error",
					"error", err.Error(),
					"client_id", c.id,
				)
				// Status messages are best effort; keep the connection.
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close safely closes the client's channels using sync.Once to prevent
// double-close panics
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.send != nil {
			close(c.send)
		}
		if c.sendMsg != nil {
			close(c.sendMsg)
		}
	})
}
