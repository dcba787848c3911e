package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/runtime"
	"github.com/p-org/psym/pkg/valuesummary"
	"github.com/p-org/psym/pkg/valuesummary/domain"
	psymversion "github.com/p-org/psym/pkg/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, guard.UseBackend(guard.BackendBDD))
		valuesummary.SetInvariantChecks(false)
		domain.Default.Reset()
	})

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	psymversion.PsymVersion = "v0.1.0"
	defer func() { psymversion.PsymVersion = "" }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "psym version: 0.1.0")
}

func TestExploreCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr error
	}{
		{
			name: "dpor",
			args: []string{"explore", "--machines=3", "--receivers=3"},
			want: []string{"outcome:            completed", "iterations:         1\n"},
		},
		{
			name: "without reduction",
			args: []string{"explore", "--machines=3", "--dpor=false"},
			want: []string{"outcome:            completed", "iterations:         6\n"},
		},
		{
			name: "sat backend with intervals",
			args: []string{"explore", "--guard-backend=sat", "--interval-ints", "--invariant-checks"},
			want: []string{"outcome:            completed", "iterations:         2\n"},
		},
		{
			name: "iteration bound",
			args: []string{"explore", "--machines=3", "--max-iterations=1"},
			want: []string{"outcome:            bounded", "exhausted:          false"},
		},
		{
			name:    "violation",
			args:    []string{"explore", "--fail-at=2"},
			want:    []string{"outcome:            failed", "violation:"},
			wantErr: runtime.ErrSafetyViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestExploreCmdRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "explore", "--machines=0", "--guard-backend=zdd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "machines must be positive")
}

func TestExploreCmdGuardVariables(t *testing.T) {
	out, err := execute(t, "explore", "--choice-bound=3", "--machines=4", "--messages=3", "--receivers=2", "--max-iterations=20")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome:")
	assert.Greater(t, guard.NumVars(), 64)

	_, err = execute(t, "explore", "--machines=3", "--choice-bound=3", "--guard-vars=1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, guard.ErrVariablesExhausted), "got %v", err)
}

func TestExploreCmdConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psym.yaml")
	require.NoError(t, os.WriteFile(path, []byte("machines: 3\nreceivers: 3\ndpor: false\n"), 0644))

	out, err := execute(t, "explore", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "iterations:         6\n")

	out, err = execute(t, "explore", "--config", path, "--dpor=true")
	require.NoError(t, err)
	assert.Contains(t, out, "iterations:         1\n")
}
