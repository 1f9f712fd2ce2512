package tools

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	m "solseed.dev/pkg/solseed/internal/model"
)

// SmartCheck reports as "key: value" blocks, one block per finding:
//
//	ruleId: SOLIDITY_TX_ORIGIN
//	line: 12
//	column: 8
//	content: tx.origin
var smartcheckRules = map[string]m.BugType{
	"SOLIDITY_TX_ORIGIN":             m.BugTxOrigin,
	"SOLIDITY_EXACT_TIME":            m.BugTimestampDependency,
	"SOLIDITY_UNCHECKED_CALL":        m.BugUnhandledExceptions,
	"SOLIDITY_SEND":                  m.BugUncheckedSend,
	"SOLIDITY_TRANSFER_IN_LOOP":      m.BugUncheckedSend,
	"SOLIDITY_UINT_CANT_BE_NEGATIVE": m.BugOverflowUnderflow,
	"SOLIDITY_DIV_MUL":               m.BugOverflowUnderflow,
	"SOLIDITY_REENTRANCY_LOW_LEVEL":  m.BugReentrancy,
}

func normalizeSmartcheck(rep Report) ([]m.Finding, Diagnostics, error) {
	var (
		out  []m.Finding
		diag Diagnostics

		rule    string
		hasLine bool
		lineNo  int
	)

	flush := func() {
		if rule == "" {
			return
		}

		bt, ok := smartcheckRules[rule]
		if !ok {
			diag.Ignored++
		} else if !hasLine {
			diag.Malformed++
		} else {
			out = append(out, m.Finding{
				ContractID: rep.ContractID,
				BugType:    bt,
				Tool:       rep.Tool,
				Lines:      singleLine(lineNo),
				Raw:        rule,
			})
		}

		rule = ""
		hasLine = false
	}

	scanner := bufio.NewScanner(bytes.NewReader(rep.Raw))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "ruleId:"):
			flush()

			rule = strings.TrimSpace(strings.TrimPrefix(line, "ruleId:"))
		case strings.HasPrefix(line, "line:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "line:")))
			if err == nil {
				hasLine = true
				lineNo = n
			}
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return out, diag, err
	}

	return out, diag, nil
}
