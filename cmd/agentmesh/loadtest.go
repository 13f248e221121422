package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/okmesh/agentmesh/internal/loadtest"
)

func newLoadtestCmd() *cobra.Command {
	var (
		configPath string
		level      int
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Run a load test scenario against a fleet of agents",
		Long: `Runs the scenario file's tiers in order (1: connectivity, 2: functional
A2A messaging, 3: multi-hop workflows) and prints the aggregate analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadtest(cmd, configPath, level, outputPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "loadtest.yaml", "path to scenario file")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "override test level (1-3)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write full results as JSON to this file")
	return cmd
}

func runLoadtest(cmd *cobra.Command, configPath string, level int, outputPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadtest.Load(configPath)
	if err != nil {
		return err
	}
	if level != 0 {
		if level < 1 || level > 3 {
			return fmt.Errorf("level must be 1, 2 or 3 (got %d)", level)
		}
		cfg.Level = level
	}

	fmt.Fprintf(out, "Running %q at level %d against %d agents\n",
		cfg.TestName, cfg.Level, len(cfg.Agents))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var results []loadtest.TestResult
	var workflows []loadtest.WorkflowResult

	results = append(results, loadtest.NewBasicTester(cfg).Run(ctx)...)
	if cfg.Level >= 2 {
		results = append(results, loadtest.NewFunctionalTester(cfg).Run(ctx)...)
	}
	if cfg.Level >= 3 {
		workflows = loadtest.NewWorkflowTester(cfg).Run(ctx)
	}

	analysis := loadtest.Analyze(results)
	printAnalysis(out, analysis, workflows)

	if outputPath != "" {
		payload, err := json.MarshalIndent(map[string]interface{}{
			"test_name": cfg.TestName,
			"level":     cfg.Level,
			"results":   results,
			"workflows": workflows,
			"analysis":  analysis,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		if err := os.WriteFile(outputPath, payload, 0644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
		fmt.Fprintf(out, "Full results written to %s\n", outputPath)
	}

	if analysis.Overall.Successful < analysis.Overall.Total {
		return fmt.Errorf("%d of %d calls failed",
			analysis.Overall.Total-analysis.Overall.Successful, analysis.Overall.Total)
	}
	return nil
}

func printAnalysis(out io.Writer, analysis loadtest.Analysis, workflows []loadtest.WorkflowResult) {
	fmt.Fprintf(out, "\nOverall: %d/%d succeeded (%.1f%%), avg %.3fs, median %.3fs, p95 %.3fs\n",
		analysis.Overall.Successful, analysis.Overall.Total, analysis.Overall.SuccessRate,
		analysis.Overall.Avg, analysis.Overall.Median, analysis.Overall.P95)

	agents := make([]string, 0, len(analysis.ByAgent))
	for name := range analysis.ByAgent {
		agents = append(agents, name)
	}
	sort.Strings(agents)
	for _, name := range agents {
		stats := analysis.ByAgent[name]
		fmt.Fprintf(out, "  %-24s %d/%d (%.1f%%), avg %.3fs\n",
			name, stats.Successful, stats.Total, stats.SuccessRate, stats.Avg)
	}

	for _, wf := range workflows {
		state := "ok"
		if !wf.Success {
			state = "FAILED: " + wf.Error
		}
		fmt.Fprintf(out, "  workflow %-24s steps=%d time=%.3fs %s\n",
			wf.WorkflowName, wf.StepsCompleted, wf.TotalTime, state)
	}
}
