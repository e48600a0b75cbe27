package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/server"
	"github.com/plantworks/leantwin/session"
)

// ServeCmd starts the leantwin server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the leantwin server",
	Long: `Launch the local leantwin server. The server loads the project from
the storage directory, connects to the configured SPARQL repository,
and serves the REST API plus the WebSocket graph stream on localhost.`,
	RunE: runServe,
}

var (
	servePort       int
	serveRepository string
	serveStorageDir string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (0 uses the configured port)")
	ServeCmd.Flags().StringVar(&serveRepository, "repository", "", "SPARQL repository URL (overrides config)")
	ServeCmd.Flags().StringVar(&serveStorageDir, "storage-dir", "", "Project storage directory (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Default to Info for the server so startup progress is visible.
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = 1
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if serveRepository != "" {
		cfg.Repository.URL = serveRepository
	}
	if serveStorageDir != "" {
		cfg.Storage.Dir = serveStorageDir
	}

	port := servePort
	if port == 0 {
		port = cfg.ServerPort()
	}

	sess, err := session.New(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to load project")
	}

	printStartupBanner(verbosity, cfg, sess.Dir())

	srv := server.NewTwinServer(cfg, sess, verbosity)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}
