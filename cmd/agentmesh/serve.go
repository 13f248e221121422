package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okmesh/agentmesh/internal/loadtest"
	"github.com/okmesh/agentmesh/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listenAddr string
		dbPath     string
		resultsDir string
		retention  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the load test control API",
		Long: `Starts the orchestrator's control surface (/test/start, /test/status,
/test/results). Runs execute one at a time in the background and persist
their results in the SQLite store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, listenAddr, dbPath, resultsDir, retention)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "base scenario file (optional)")
	cmd.Flags().StringVar(&listenAddr, "listen", ":8090", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "agentmesh.db", "SQLite database path")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "also write each run's JSON to this directory")
	cmd.Flags().DurationVar(&retention, "retention", 7*24*time.Hour, "prune stored runs older than this on startup")
	return cmd
}

func runServe(configPath, listenAddr, dbPath, resultsDir string, retention time.Duration) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	var base *loadtest.Config
	if configPath != "" {
		cfg, err := loadtest.Load(configPath)
		if err != nil {
			return err
		}
		base = cfg
		log.Printf("Loaded base scenario %q with %d agents", base.TestName, len(base.Agents))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	if pruned, err := st.Prune(retention); err != nil {
		log.Printf("Prune failed: %v", err)
	} else if pruned > 0 {
		log.Printf("Pruned %d stored runs older than %s", pruned, retention)
	}

	runner := loadtest.NewRunner(st, resultsDir)
	server := &http.Server{
		Addr:    listenAddr,
		Handler: loadtest.NewAPIRouter(loadtest.NewAPI(runner, base)),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Control API listening on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
		log.Printf("Received shutdown signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
