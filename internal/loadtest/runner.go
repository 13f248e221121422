package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okmesh/agentmesh/internal/store"
	"github.com/okmesh/agentmesh/pkg/types"
)

// ErrRunInProgress rejects a start request while another run is active.
var ErrRunInProgress = errors.New("loadtest: a test run is already in progress")

// runDeadline caps a whole run; a fleet that never answers must not pin the
// runner forever.
const runDeadline = 10 * time.Minute

// Status is the runner's current view, served by the control API.
type Status struct {
	ID          string `json:"id,omitempty"`
	TestName    string `json:"test_name,omitempty"`
	Level       int    `json:"level,omitempty"`
	State       string `json:"state"`
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// RunOutput is the persisted product of one run: the raw records plus the
// derived analysis.
type RunOutput struct {
	ID          string           `json:"id"`
	TestName    string           `json:"test_name"`
	Level       int              `json:"level"`
	Results     []TestResult     `json:"results"`
	Workflows   []WorkflowResult `json:"workflows,omitempty"`
	Analysis    Analysis         `json:"analysis"`
	StartedAt   string           `json:"started_at"`
	CompletedAt string           `json:"completed_at"`
}

// Runner executes load test runs one at a time in the background and persists
// their output through the store.
type Runner struct {
	store      *store.Store
	resultsDir string

	mu      sync.Mutex
	running bool
	current Status
}

func NewRunner(st *store.Store, resultsDir string) *Runner {
	return &Runner{
		store:      st,
		resultsDir: resultsDir,
		current:    Status{State: "idle"},
	}
}

// Start launches a run in the background and returns its id. Only one run
// may be active at a time.
func (r *Runner) Start(cfg *Config) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return "", ErrRunInProgress
	}

	id := uuid.NewString()
	if err := r.store.CreateRun(id, cfg.TestName, cfg.Level); err != nil {
		return "", err
	}

	r.running = true
	r.current = Status{
		ID:        id,
		TestName:  cfg.TestName,
		Level:     cfg.Level,
		State:     "running",
		StartedAt: types.UTCTimestamp(),
	}

	go r.run(id, cfg)
	return id, nil
}

func (r *Runner) run(id string, cfg *Config) {
	ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
	defer cancel()

	log.Printf("Starting load test %s (%s, level %d, %d agents)",
		id, cfg.TestName, cfg.Level, len(cfg.Agents))

	output := RunOutput{
		ID:        id,
		TestName:  cfg.TestName,
		Level:     cfg.Level,
		StartedAt: r.currentStatus().StartedAt,
	}

	output.Results = append(output.Results, NewBasicTester(cfg).Run(ctx)...)
	if cfg.Level >= 2 {
		output.Results = append(output.Results, NewFunctionalTester(cfg).Run(ctx)...)
	}
	if cfg.Level >= 3 {
		output.Workflows = NewWorkflowTester(cfg).Run(ctx)
	}

	output.Analysis = Analyze(output.Results)
	output.CompletedAt = types.UTCTimestamp()

	status := store.StatusCompleted
	payload, err := json.Marshal(output)
	if err != nil {
		log.Printf("Load test %s: failed to encode output: %v", id, err)
		status = store.StatusFailed
		payload = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}

	if err := r.store.CompleteRun(id, status, string(payload)); err != nil {
		log.Printf("Load test %s: failed to persist: %v", id, err)
	}
	if r.resultsDir != "" {
		path := filepath.Join(r.resultsDir, id+".json")
		if err := os.WriteFile(path, payload, 0644); err != nil {
			log.Printf("Load test %s: failed to write %s: %v", id, path, err)
		}
	}

	log.Printf("Load test %s finished: %d/%d calls succeeded",
		id, output.Analysis.Overall.Successful, output.Analysis.Overall.Total)

	r.mu.Lock()
	r.running = false
	r.current.State = status
	r.current.CompletedAt = output.CompletedAt
	r.mu.Unlock()
}

// Status reports the most recent run's state.
func (r *Runner) Status() Status {
	return r.currentStatus()
}

func (r *Runner) currentStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Results fetches a persisted run. The output is nil while the run is still
// in progress.
func (r *Runner) Results(id string) (*store.TestRun, *RunOutput, error) {
	run, err := r.store.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	if run.Status == store.StatusRunning || run.Payload == "" {
		return run, nil, nil
	}

	var output RunOutput
	if err := json.Unmarshal([]byte(run.Payload), &output); err != nil {
		return run, nil, fmt.Errorf("loadtest: decode stored run %s: %w", id, err)
	}
	return run, &output, nil
}

// List returns recent runs, newest first.
func (r *Runner) List(limit int) ([]store.TestRun, error) {
	return r.store.ListRuns(limit)
}
