package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
)

// getState returns the current server state
func (s *TwinServer) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *TwinServer) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Start launches the hub, the tracker, the config watcher and the
// HTTP listener. Blocks until the listener fails or Stop is called.
func (s *TwinServer) Start(port int) error {
	s.tracker.Start(s.ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	s.startConfigWatcher()

	actualPort, err := findAvailablePort(port)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}
	if actualPort != port {
		s.logger.Infow("Port in use, using alternative",
			"requested_port", port,
			"actual_port", actualPort,
		)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", actualPort),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setState(ServerStateRunning)
	s.logger.Infow("Server ready",
		"url", fmt.Sprintf("http://localhost:%d", actualPort),
		"port", actualPort,
	)

	err = s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// startConfigWatcher reloads runtime settings when the UI config file
// changes on disk. Best effort: a missing watcher never blocks startup.
func (s *TwinServer) startConfigWatcher() {
	watcher, err := am.NewConfigWatcher(am.UIConfigPath())
	if err != nil {
		s.logger.Debugw("Config watcher unavailable", "error", err)
		return
	}
	watcher.OnReload(func(cfg *am.Config) error {
		s.logger.Infow("Configuration reloaded",
			"repository", cfg.Repository.URL)
		return nil
	})
	watcher.Start()
	s.configWatcher = watcher
	am.SetGlobalWatcher(watcher)
}

// Stop gracefully shuts down the server and cleans up resources
func (s *TwinServer) Stop() error {
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	s.paste.Cancel()

	// Stop the HTTP listener first so no new connections arrive.
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnw("HTTP shutdown error", "error", err)
		}
	}

	// Close client connections before canceling the context, so the
	// read pumps unblock and exit cleanly.
	s.mu.Lock()
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
		delete(s.clients, client)
	}
	s.mu.Unlock()

	if len(clientsToClose) > 0 {
		s.logger.Infow("Closing client connections", "count", len(clientsToClose))
		for _, client := range clientsToClose {
			client.conn.Close()
		}
	}

	s.tracker.Stop()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out, forcing exit",
			"timeout", ShutdownTimeout,
		)
	}

	if s.configWatcher != nil {
		if err := s.configWatcher.Stop(); err != nil {
			s.logger.Warnw("Failed to stop config watcher", "error", err)
		}
	}

	// Final save keeps the project consistent with what the UI saw.
	if err := s.session.Save(); err != nil {
		s.logger.Warnw("Failed to save project on shutdown", "error", err)
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete",
		"broadcast_drops", s.broadcastDrops.Load(),
	)
	logger.Cleanup()
	return nil
}
