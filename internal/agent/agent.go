package agent

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okmesh/agentmesh/internal/a2a"
	"github.com/okmesh/agentmesh/internal/config"
	"github.com/okmesh/agentmesh/internal/tasks"
)

// Agent hosts one mesh member: a task profile, the HTTP surface peers and
// operators call, and an outbound A2A client for collaboration.
type Agent struct {
	config  *config.Config
	manager *tasks.Manager
	client  *a2a.Client
	handler *a2a.Handler

	activeTasks atomic.Int64
	startTime   time.Time

	server   *http.Server
	shutdown chan struct{}
}

func New(cfg *config.Config) (*Agent, error) {
	profile, err := tasks.ProfileFor(cfg.AgentType)
	if err != nil {
		return nil, err
	}

	return &Agent{
		config:    cfg,
		manager:   tasks.NewManager(cfg.AgentID, profile),
		client:    a2a.NewClientWithTimeout(cfg.AgentID, cfg.AgentType, cfg.A2ATimeout),
		handler:   a2a.NewHandler(cfg.AgentID, cfg.AgentType),
		startTime: time.Now(),
		shutdown:  make(chan struct{}),
	}, nil
}

// Client exposes the agent's outbound A2A client.
func (a *Agent) Client() *a2a.Client {
	return a.client
}

// Start serves the agent API until Stop is called.
func (a *Agent) Start() error {
	log.Printf("Starting agent %s (%s)", a.config.AgentID, a.config.AgentType)

	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.ListenAddress, a.config.Port),
		Handler: NewRouter(a),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Agent API listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("agent server failed: %w", err)
	case <-a.shutdown:
	}

	log.Printf("Shutting down agent...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

func (a *Agent) Stop() {
	select {
	case <-a.shutdown:
		// Already closed
		return
	default:
		close(a.shutdown)
	}
}

func (a *Agent) uptimeSeconds() float64 {
	return time.Since(a.startTime).Seconds()
}
