// Package server is the interactive shell of leantwin: a local HTTP
// API plus a WebSocket channel pushing graph updates and status
// messages to the browser front end. All blocking repository work runs
// on the task tracker; client channel sends are owned by a dedicated
// broadcast worker.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/graph"
	"github.com/plantworks/leantwin/logger"
	"github.com/plantworks/leantwin/session"
	"github.com/plantworks/leantwin/tracker"
)

// TwinServer serves the plant browser UI: REST for state mutation,
// WebSocket for live graph and status updates.
type TwinServer struct {
	cfg     *am.Config
	session *session.Session
	tracker *tracker.Tracker
	paste   *pasteSession

	configWatcher *am.ConfigWatcher

	clients      map[*Client]bool
	broadcast    chan *graph.Graph
	broadcastReq chan *broadcastRequest
	register     chan *Client
	unregister   chan *Client

	mu        sync.RWMutex
	lastGraph *graph.Graph // Cache last broadcast graph for reconnecting clients

	verbosity atomic.Int32
	logger    *zap.SugaredLogger

	mux        *http.ServeMux
	httpServer *http.Server

	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	broadcastDrops atomic.Int64
	state          atomic.Int32
}

// NewTwinServer wires the server around an open session. The tracker
// is started by Start and drained by Stop.
func NewTwinServer(cfg *am.Config, sess *session.Session, verbosity int) *TwinServer {
	ctx, cancel := context.WithCancel(context.Background())

	workers := cfg.Tracker.Workers
	if workers < 1 {
		workers = tracker.DefaultWorkers
	}

	s := &TwinServer{
		cfg:          cfg,
		session:      sess,
		tracker:      tracker.New(workers),
		clients:      make(map[*Client]bool),
		broadcast:    make(chan *graph.Graph, 16),
		broadcastReq: make(chan *broadcastRequest, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		mux:          http.NewServeMux(),
		logger:       logger.Logger.Named("server"),
		ctx:          ctx,
		cancel:       cancel,
	}
	s.verbosity.Store(int32(verbosity))
	s.paste = newPasteSession(s)
	s.setupRoutes()
	return s
}

// handleClientRegister handles a new client connection
func (s *TwinServer) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients,
		)
		client.close()
		return
	}
	s.clients[client] = true
	totalClients := len(s.clients)
	cachedGraph := s.lastGraph
	s.mu.Unlock()

	s.logger.Infow("Client connected",
		"client_id", client.id,
		"total_clients", totalClients,
	)

	// Send cached graph to newly connected client via the broadcast
	// worker so the sends stay single-writer.
	if cachedGraph != nil {
		req := &broadcastRequest{
			reqType:  reqGraph,
			graph:    cachedGraph,
			clientID: client.id,
		}
		select {
		case s.broadcastReq <- req:
		case <-s.ctx.Done():
		default:
			s.logger.Warnw("Broadcast request queue full, skipping cached graph",
				"client_id", client.id)
		}
	}
}

// handleClientUnregister handles a client disconnection
func (s *TwinServer) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	totalClients := len(s.clients)
	s.mu.Unlock()

	// Signal the broadcast worker to close channels; it owns the sends.
	req := &broadcastRequest{reqType: reqClose, client: client}
	select {
	case s.broadcastReq <- req:
	case <-s.ctx.Done():
		client.close()
	}

	s.logger.Infow("Client disconnected",
		"client_id", client.id,
		"total_clients", totalClients,
	)
}

// removeSlowClient evicts a client whose send queue stayed full.
// Only called from the broadcast worker, so closing directly is safe.
func (s *TwinServer) removeSlowClient(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	s.mu.Unlock()

	client.close()

	s.logger.Warnw("Client send channel full, removing client",
		"client_id", client.id,
		"total_drops", s.broadcastDrops.Load(),
	)
}

// handleBroadcast caches the graph and fans it out to every client.
func (s *TwinServer) handleBroadcast(g *graph.Graph) {
	s.mu.Lock()
	s.lastGraph = g
	s.mu.Unlock()

	req := &broadcastRequest{reqType: reqGraph, graph: g}
	select {
	case s.broadcastReq <- req:
	case <-s.ctx.Done():
	default:
		s.logger.Warnw("Broadcast request queue full, dropping graph update")
	}
}

// Run starts the server hub event loop
func (s *TwinServer) Run() {
	go s.runBroadcastWorker()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		case g := <-s.broadcast:
			s.handleBroadcast(g)
		}
	}
}

// BroadcastGraph hands a freshly built graph to the hub.
func (s *TwinServer) BroadcastGraph(g *graph.Graph) {
	select {
	case s.broadcast <- g:
	case <-s.ctx.Done():
	}
}

// LastGraph returns the most recently broadcast graph, nil before the
// first build.
func (s *TwinServer) LastGraph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGraph
}

// Session exposes the server's session for command wiring.
func (s *TwinServer) Session() *session.Session { return s.session }

func (s *TwinServer) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
