package loadtest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okmesh/agentmesh/internal/store"
)

// StartRequest is the control API's run-start body. Fields left empty fall
// back to the runner's base scenario.
type StartRequest struct {
	TestName  string            `json:"test_name"`
	TestLevel int               `json:"test_level"`
	Agents    map[string]string `json:"agents"`
}

// API serves the orchestrator's control surface.
type API struct {
	runner *Runner
	base   *Config
}

func NewAPI(runner *Runner, base *Config) *API {
	return &API{runner: runner, base: base}
}

func NewAPIRouter(api *API) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.POST("/test/start", api.handleStart)
	router.GET("/test/status", api.handleStatus)
	router.GET("/test/results/:id", api.handleResult)
	router.GET("/test/results", api.handleResults)
	router.GET("/config", api.handleConfig)

	return router
}

func (a *API) handleStart(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Invalid start request: " + err.Error(),
		})
		return
	}

	cfg, err := a.buildConfig(req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	id, err := a.runner.Start(cfg)
	if errors.Is(err, ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"test_id":   id,
		"test_name": cfg.TestName,
		"level":     cfg.Level,
	})
}

// buildConfig merges a start request over the base scenario.
func (a *API) buildConfig(req StartRequest) (*Config, error) {
	testName := req.TestName
	level := req.TestLevel
	agents := req.Agents

	if a.base != nil {
		if testName == "" {
			testName = a.base.TestName
		}
		if level == 0 {
			level = a.base.Level
		}
		if len(agents) == 0 {
			agents = a.base.Agents
		}
	}

	cfg, err := NewConfig(testName, level, agents)
	if err != nil {
		return nil, err
	}
	if a.base != nil {
		cfg.Pacing = a.base.Pacing
		cfg.Timeouts = a.base.Timeouts
	}
	return cfg, nil
}

func (a *API) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.runner.Status())
}

func (a *API) handleResult(c *gin.Context) {
	run, output, err := a.runner.Results(c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "test run not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if output == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"id":      run.ID,
			"status":  run.Status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  run.Status,
		"run":     output,
	})
}

func (a *API) handleResults(c *gin.Context) {
	runs, err := a.runner.List(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	summaries := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, gin.H{
			"id":         run.ID,
			"test_name":  run.TestName,
			"level":      run.Level,
			"status":     run.Status,
			"created_at": run.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runs":    summaries,
	})
}

func (a *API) handleConfig(c *gin.Context) {
	if a.base == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"test_name": a.base.TestName,
		"level":     a.base.Level,
		"agents":    a.base.Agents,
	})
}
