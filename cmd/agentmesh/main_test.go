package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"version", "agent", "loadtest", "serve"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "agentmesh ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestLoadtestMissingConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"loadtest", "--config", "does-not-exist.yaml"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing scenario file")
	}
}

func TestLoadtestRejectsBadLevel(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"loadtest", "--config", "does-not-exist.yaml", "--level", "9"})

	// Missing file is reported before the level check; both are errors.
	if err := root.Execute(); err == nil {
		t.Fatal("expected error")
	}
}
