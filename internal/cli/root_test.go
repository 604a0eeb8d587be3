package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if output == "" {
		t.Fatal("expected help output, got empty string")
	}
	for _, want := range []string{"bulkren", "Renaming:", "Undo & History:", "run", "undo"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", output)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"normal version", "1.2.3", "1.2.3"},
		{"empty version", "", "1.2.3"}, // Should not change if empty
		{"dev version", "dev", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if rootCmd.Version != tt.want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	subcommands := [][]string{
		{"run"}, {"preview"}, {"check"}, {"undo"}, {"history"},
		{"history", "ls"}, {"history", "show"}, {"history", "export"}, {"history", "prune"},
		{"version"}, {"completion"},
	}

	for _, path := range subcommands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := rootCmd.Find(path)
			if err != nil {
				t.Errorf("Find(%q) error = %v", path, err)
			}
			if subCmd == nil || subCmd.Name() != path[len(path)-1] {
				t.Errorf("Find(%q) returned %v", path, subCmd)
			}
		})
	}
}
