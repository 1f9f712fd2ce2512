package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"solseed.dev/pkg/solseed/internal/domain"
	domainmocks "solseed.dev/pkg/solseed/internal/domain/mocks"
	m "solseed.dev/pkg/solseed/internal/model"
)

func TestMergeCmd_UsesRootOutputFlagByDefault(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	withMockWorkflow(t, mockWorkflow)
	t.Cleanup(func() { mergeOutputFlag = "" })

	expected := domain.MergeArgs{
		BuggyDir: m.Path(defaultBuggyDir),
		Output:   m.Path(filepath.Join(defaultBuggyDir, "merged_bug_logs.csv")),
	}
	mockWorkflow.On("Merge", mock.Anything, expected).Return(m.GroundTruth{}, nil)

	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"merge"})

	require.NoError(t, cmd.Execute())
}

func TestMergeCmd_MergedFlagOverridesDefault(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	withMockWorkflow(t, mockWorkflow)
	t.Cleanup(func() { mergeOutputFlag = "" })

	expected := domain.MergeArgs{
		BuggyDir: m.Path(defaultBuggyDir),
		Output:   m.Path("gt.csv"),
	}
	gt := m.GroundTruth{
		"Re-entrancy/buggy_token.sol": {
			{ContractID: "Re-entrancy/buggy_token.sol", BugType: m.BugReentrancy, Seq: 1, StartLine: 12, EndLine: 14},
		},
	}
	mockWorkflow.On("Merge", mock.Anything, expected).Return(gt, nil)

	output := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.AddCommand(newMergeCmd())
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"merge", "--merged", "gt.csv"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, output.String(), "merged 1 injection(s)")
}
