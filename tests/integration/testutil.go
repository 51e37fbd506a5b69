// Package integration runs the built reel binary against isolated data
// directories.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// reelBin is the path to the reel binary under test.
	reelBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv provides an isolated environment with its own config and data
// directory.
type TestEnv struct {
	t       *testing.T
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build reel: %v", buildErr)
	}
	if reelBin == "" {
		t.Fatal("reel binary not built")
	}
	dir := t.TempDir()
	return &TestEnv{
		t:       t,
		Config:  filepath.Join(dir, "config"),
		DataDir: filepath.Join(dir, "data"),
	}
}

// CmdResult holds the result of a reel command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunReel executes reel with the given arguments.
func (e *TestEnv) RunReel(args ...string) CmdResult {
	e.t.Helper()
	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(reelBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run reel: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunReel executes reel and fails the test on a non-zero exit.
func (e *TestEnv) MustRunReel(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunReel(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("reel %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}
