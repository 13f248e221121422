package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okmesh/agentmesh/internal/version"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentmesh",
		Short: "Agentmesh — A2A multi-agent coordination",
		Long:  "Agentmesh runs autonomous agent services that collaborate over an A2A protocol, plus a load-test orchestrator that exercises and measures the fleet.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newLoadtestCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agentmesh %s\n", version.GetFullVersion())
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
