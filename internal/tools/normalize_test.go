package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "solseed.dev/pkg/solseed/internal/model"
)

func TestKnownTools(t *testing.T) {
	names := KnownTools()

	assert.Contains(t, names, "slither")
	assert.Contains(t, names, "mythril")
	assert.Contains(t, names, "oyente")
	assert.Contains(t, names, "smartcheck")
	assert.Contains(t, names, "securify")
	assert.Contains(t, names, "llm")
	assert.True(t, Known("slither"))
	assert.False(t, Known("solhint"))
}

func TestNormalizeUnknownTool(t *testing.T) {
	_, _, err := Normalize("solhint", Report{Tool: "solhint"})
	require.Error(t, err)
}

func TestNormalizeSlither(t *testing.T) {
	raw := []byte(`{
		"results": {
			"detectors": [
				{
					"check": "reentrancy-eth",
					"confidence": "High",
					"description": "Reentrancy in Wallet.withdraw",
					"elements": [
						{"source_mapping": {"filename": "buggy_1.sol", "lines": [12, 13, 14]}}
					]
				},
				{
					"check": "naming-convention",
					"confidence": "Informational",
					"description": "style nit",
					"elements": [
						{"source_mapping": {"filename": "buggy_1.sol", "lines": [3]}}
					]
				}
			]
		}
	}`)

	findings, diag, err := Normalize("slither", Report{Tool: "slither", ContractID: "buggy_1", Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 1)

	assert.Equal(t, m.BugReentrancy, findings[0].BugType)
	assert.Equal(t, "buggy_1", findings[0].ContractID)
	require.NotNil(t, findings[0].Lines)
	assert.Equal(t, 12, findings[0].Lines.Start)
	assert.Equal(t, 14, findings[0].Lines.End)
	assert.Equal(t, 1, diag.Ignored)
}

func TestNormalizeSlitherMalformed(t *testing.T) {
	_, diag, err := Normalize("slither", Report{Tool: "slither", ContractID: "c", Raw: []byte("not json")})
	require.Error(t, err)
	assert.Equal(t, 1, diag.Malformed)
}

func TestNormalizeMythril(t *testing.T) {
	raw := []byte(`{
		"issues": [
			{"swc-id": "107", "title": "External Call To User-Supplied Address", "filename": "buggy_4.sol", "lineno": 21},
			{"swc-id": "101", "title": "Integer Arithmetic Bugs", "filename": "buggy_4.sol", "lineno": 33},
			{"swc-id": "999", "title": "Unknown", "filename": "buggy_4.sol", "lineno": 5}
		]
	}`)

	findings, diag, err := Normalize("mythril", Report{Tool: "mythril", ContractID: "buggy_4", Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, m.BugReentrancy, findings[0].BugType)
	assert.Equal(t, 21, findings[0].Lines.Start)
	assert.Equal(t, m.BugOverflowUnderflow, findings[1].BugType)
	assert.Equal(t, 1, diag.Ignored)
}

func TestNormalizeOyente(t *testing.T) {
	raw := []byte(
		"INFO:root:contract buggy_2.sol:\n" +
			"buggy_2.sol:17:9: Warning: Re-Entrancy Vulnerability.\n" +
			"        msg.sender.call.value(amount)()\n" +
			"buggy_2.sol:25:5: Warning: Timestamp Dependency.\n" +
			"buggy_2.sol:30:5: Warning: Something Oyente Never Said.\n",
	)

	findings, diag, err := Normalize("oyente", Report{Tool: "oyente", ContractID: "buggy_2", Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, m.BugReentrancy, findings[0].BugType)
	assert.Equal(t, 17, findings[0].Lines.Start)
	assert.Equal(t, m.BugTimestampDependency, findings[1].BugType)
	assert.Equal(t, 25, findings[1].Lines.Start)
	assert.Equal(t, 1, diag.Ignored)
}

func TestNormalizeSmartcheck(t *testing.T) {
	raw := []byte(
		"ruleId: SOLIDITY_TX_ORIGIN\n" +
			"patternId: xxx\n" +
			"severity: 1\n" +
			"line: 7\n" +
			"column: 12\n" +
			"content: tx.origin\n" +
			"\n" +
			"ruleId: SOLIDITY_VISIBILITY\n" +
			"line: 3\n" +
			"\n" +
			"ruleId: SOLIDITY_SEND\n" +
			"column: 4\n",
	)

	findings, diag, err := Normalize("smartcheck", Report{Tool: "smartcheck", ContractID: "buggy_7", Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 1)

	assert.Equal(t, m.BugTxOrigin, findings[0].BugType)
	assert.Equal(t, 7, findings[0].Lines.Start)
	assert.Equal(t, 1, diag.Ignored)
	assert.Equal(t, 1, diag.Malformed)
}

func TestNormalizeSecurify(t *testing.T) {
	raw := []byte(`{
		"buggy_3.sol:Wallet": {
			"results": {
				"DAO": {"violations": [14], "warnings": []},
				"TODAmount": {"violations": [], "warnings": [20]},
				"LockedEther": {"violations": [2], "warnings": []}
			}
		}
	}`)

	findings, diag, err := Normalize("securify", Report{Tool: "securify", ContractID: "buggy_3", Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 2)

	byType := map[m.BugType]int{}
	for _, f := range findings {
		require.NotNil(t, f.Lines)
		byType[f.BugType] = f.Lines.Start
	}

	// Zero-based report lines shift up by one.
	assert.Equal(t, 15, byType[m.BugReentrancy])
	assert.Equal(t, 21, byType[m.BugTOD])
	assert.Equal(t, 1, diag.Ignored)
}

func TestNormalizeLLM(t *testing.T) {
	raw := []byte(`Here is my analysis.
<<JSON_START>>
{
	"contract": "buggy_5.sol",
	"contract_name": "Wallet",
	"bug_type": "Re-entrancy",
	"findings": [
		{"line": 12, "confidence": "medium", "description": "state written after call"},
		{"line": "12", "confidence": "high", "description": "external call before update"},
		{"line": 30, "confidence": "low", "description": "maybe"},
		{"line": "unknown", "confidence": "high", "description": "no line"}
	]
}
<<JSON_END>>`)

	findings, diag, err := Normalize("llm", Report{Tool: "llm", ContractID: "buggy_5", BugType: m.BugReentrancy, Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, 12, findings[0].Lines.Start)
	assert.Equal(t, "high", findings[0].Confidence)
	assert.Equal(t, 30, findings[1].Lines.Start)
	assert.Equal(t, 1, diag.Malformed)
}

func TestNormalizeLLMStreamed(t *testing.T) {
	raw := []byte(
		`{"model":"qwen2.5-coder","response":"{\"contract\": \"buggy_6.sol\", ","done":false}` + "\n" +
			`{"model":"qwen2.5-coder","response":"\"bug_type\": \"tx.origin\", \"findings\": [{\"line\": 9, \"confidence\": \"high\"}]}","done":true}` + "\n",
	)

	findings, _, err := Normalize("llm", Report{Tool: "llm", ContractID: "buggy_6", Raw: raw})
	require.NoError(t, err)
	require.Len(t, findings, 1)

	assert.Equal(t, m.BugTxOrigin, findings[0].BugType)
	assert.Equal(t, 9, findings[0].Lines.Start)
}

func TestNormalizeLLMNoJSON(t *testing.T) {
	_, diag, err := Normalize("llm", Report{Tool: "llm", ContractID: "c", Raw: []byte("I could not find any bugs.")})
	require.Error(t, err)
	assert.Equal(t, 1, diag.Malformed)
}
