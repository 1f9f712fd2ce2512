package tools

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Oyente reports as plain text, one warning per line:
//
//	buggy_3.sol:41:17: Warning: Integer Overflow.
var oyenteLineRe = regexp.MustCompile(`^([^:]+\.sol):(\d+):\d+:\s*Warning:\s*(.+?)\.?\s*$`)

// Oyente warning labels mapped onto benchmark bug types.
var oyenteWarnings = map[string]m.BugType{
	"re-entrancy vulnerability":             m.BugReentrancy,
	"timestamp dependency":                  m.BugTimestampDependency,
	"transaction-ordering dependence (tod)": m.BugTOD,
	"integer overflow":                      m.BugOverflowUnderflow,
	"integer underflow":                     m.BugOverflowUnderflow,
	"callstack depth attack vulnerability":  m.BugUnhandledExceptions,
}

func normalizeOyente(rep Report) ([]m.Finding, Diagnostics, error) {
	var (
		out  []m.Finding
		diag Diagnostics
	)

	scanner := bufio.NewScanner(bytes.NewReader(rep.Raw))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, "Warning:") {
			continue
		}

		match := oyenteLineRe.FindStringSubmatch(line)
		if match == nil {
			diag.Malformed++
			continue
		}

		bt, ok := oyenteWarnings[strings.ToLower(match[3])]
		if !ok {
			diag.Ignored++
			continue
		}

		lineNo, err := strconv.Atoi(match[2])
		if err != nil {
			diag.Malformed++
			continue
		}

		out = append(out, m.Finding{
			ContractID: contractFromPath(match[1], rep.ContractID),
			BugType:    bt,
			Tool:       rep.Tool,
			Lines:      singleLine(lineNo),
			Raw:        line,
		})
	}

	if err := scanner.Err(); err != nil {
		return out, diag, err
	}

	return out, diag, nil
}
