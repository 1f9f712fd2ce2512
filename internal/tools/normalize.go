// Package tools adapts heterogeneous analyzer and LLM report formats into
// the uniform Finding shape. Adding a tool means adding a normalizer here;
// the matcher never learns about tool formats.
package tools

import (
	"fmt"
	"path/filepath"
	"sort"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Report is one raw report file plus the context the directory layout
// provides: which tool produced it, which contract it analyzed, and which
// bug type the run was hunting (empty when the tool reports its own labels).
type Report struct {
	Tool       string
	ContractID string
	BugType    m.BugType
	Raw        []byte
}

// Diagnostics counts report entries that could not contribute findings.
// Malformed entries are skipped and surfaced, never fatal; ignored entries
// are well-formed rows about vulnerability classes outside the benchmark.
type Diagnostics struct {
	Malformed int
	Ignored   int
}

// Normalizer converts one raw report into findings.
type Normalizer func(rep Report) ([]m.Finding, Diagnostics, error)

var normalizers = map[string]Normalizer{
	"slither":    normalizeSlither,
	"mythril":    normalizeMythril,
	"oyente":     normalizeOyente,
	"smartcheck": normalizeSmartcheck,
	"securify":   normalizeSecurify,
	"llm":        normalizeLLM,
}

// Normalize dispatches to the adapter registered for the tool.
func Normalize(tool string, rep Report) ([]m.Finding, Diagnostics, error) {
	n, ok := normalizers[tool]
	if !ok {
		return nil, Diagnostics{}, fmt.Errorf("no normalizer registered for tool %q", tool)
	}

	rep.Tool = tool

	return n(rep)
}

// Known reports whether a normalizer exists for the tool.
func Known(tool string) bool {
	_, ok := normalizers[tool]
	return ok
}

// KnownTools lists the registered tool names, sorted.
func KnownTools() []string {
	out := make([]string, 0, len(normalizers))
	for name := range normalizers {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// contractFromPath falls back to the report's contract hint when a tool row
// names no file of its own.
func contractFromPath(file, hint string) string {
	if file == "" {
		return hint
	}

	return filepath.Base(file)
}

// singleLine builds a one-line range; non-positive lines mean the tool gave
// no usable location, so the finding stays file-level.
func singleLine(line int) *m.LineRange {
	if line <= 0 {
		return nil
	}

	return &m.LineRange{Start: line, End: line}
}
