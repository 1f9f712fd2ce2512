package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

func TestParseBugTypes(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		known   []m.BugType
		want    []m.BugType
		wantErr bool
	}{
		{"empty", []string{}, m.KnownBugTypes(), []m.BugType{}, false},
		{"single", []string{"Re-entrancy"}, m.KnownBugTypes(), []m.BugType{m.BugReentrancy}, false},
		{
			"multiple",
			[]string{"tx.origin", "TOD"},
			m.KnownBugTypes(),
			[]m.BugType{m.BugTxOrigin, m.BugTOD},
			false,
		},
		{"unknown", []string{"Gas-Griefing"}, m.KnownBugTypes(), nil, true},
		{
			"catalog-declared type",
			[]string{"Gas-Griefing"},
			[]m.BugType{"Gas-Griefing"},
			[]m.BugType{"Gas-Griefing"},
			false,
		},
		{"not in this catalog", []string{"Re-entrancy"}, []m.BugType{"Gas-Griefing"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBugTypes(tt.args, tt.known)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "solseed", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Equal(t, rootLongDescription, cmd.Long)
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := newRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "vulnerability")
}

func TestInit(t *testing.T) {
	// Test that init() created all the necessary instances
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, truthStore)
	assert.NotNil(t, scoreStore)
	assert.NotNil(t, analyzerRunner)
	assert.NotNil(t, newWorkflow)
}

func TestBuildWorkflow(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})

	wf, err := buildWorkflow(cmd)
	require.NoError(t, err)
	assert.NotNil(t, wf)
}

// withMockWorkflow swaps the workflow factory for the test's lifetime.
func withMockWorkflow(t *testing.T, wf domain.Workflow) {
	t.Helper()

	original := newWorkflow
	newWorkflow = func(_ *cobra.Command) (domain.Workflow, error) {
		return wf, nil
	}

	t.Cleanup(func() { newWorkflow = original })
}

func TestExecute(t *testing.T) {
	// Save original rootCmd
	originalRootCmd := rootCmd

	// Create a mock command that succeeds
	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})

	rootCmd = mockCmd

	// Execute should not panic or exit on the success path.
	Execute()

	rootCmd = originalRootCmd
}
