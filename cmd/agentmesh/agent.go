package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okmesh/agentmesh/internal/agent"
	"github.com/okmesh/agentmesh/internal/config"
)

func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run an agent service",
		Long: `Starts one agent process configured from the environment (AGENT_ID,
AGENT_TYPE, AGENT_PORT, ...). The agent serves its task profile over HTTP
and answers A2A messages from peers until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent()
		},
	}
}

func runAgent() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := agent.New(cfg)
	if err != nil {
		return err
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Printf("Received shutdown signal")
		a.Stop()
	}()

	if err := a.Start(); err != nil {
		return err
	}

	log.Printf("Agent stopped")
	return nil
}
