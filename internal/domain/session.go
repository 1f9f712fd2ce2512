package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Validator checks syntactic legality of a mutated source. The compiler
// adapter satisfies it; a nil Validator skips validation entirely.
type Validator interface {
	Validate(ctx context.Context, source string) error
}

// Session owns one contract's text for the duration of an injection run.
// It is the only writer of that text: all mutations, sequence-number
// allocation and line bookkeeping go through it. A Session is not safe for
// concurrent use; the workflow gives each contract its own.
type Session struct {
	contract  m.Contract
	text      string
	nextSeq   int
	log       []m.Injection
	validator Validator
}

// NewSession starts an injection session over a contract. The validator may
// be nil to commit mutations without the compiler check.
//
// The text is normalized to end with a newline: insertions always add whole
// lines, and an end-of-text insertion must start a fresh line rather than
// extend the last one.
func NewSession(contract m.Contract, validator Validator) *Session {
	text := contract.Text
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	return &Session{
		contract:  contract,
		text:      text,
		nextSeq:   1,
		validator: validator,
	}
}

// Text returns the current (possibly mutated) source text. Locating against
// this text keeps candidate offsets valid for the next Inject call.
func (s *Session) Text() string {
	return s.text
}

// Log returns the injections committed so far, in sequence order, with line
// numbers valid for the current text.
func (s *Session) Log() []m.Injection {
	out := make([]m.Injection, len(s.log))
	copy(out, s.log)

	return out
}

// UsedLines returns the lines currently covered by committed injections, in
// current-text coordinates. The locator excludes these so a run never picks
// an overlapping or already-used site.
func (s *Session) UsedLines() map[int]bool {
	used := make(map[int]bool)

	for _, inj := range s.log {
		for line := inj.StartLine; line <= inj.EndLine; line++ {
			used[line] = true
		}
	}

	return used
}

// Inject inserts a snippet at a byte offset of the current text, validates
// the result when a validator is present, and commits the mutation together
// with its injection record.
//
// The recorded line is computed against the current text, so earlier
// injections in this session are already accounted for. Committing shifts
// every previously recorded injection at or below the insertion line down
// by the snippet's line count - that shift is what keeps the log's line
// numbers authoritative without ever re-scanning the mutated source.
func (s *Session) Inject(ctx context.Context, snippet m.Snippet, offset int) (m.Injection, error) {
	if offset < 0 || offset > len(s.text) {
		return m.Injection{}, fmt.Errorf("offset %d out of range for %s", offset, s.contract.ID)
	}

	line := 1 + strings.Count(s.text[:offset], "\n")
	mutated := s.text[:offset] + snippet.Code + s.text[offset:]

	if s.validator != nil {
		if err := s.validator.Validate(ctx, mutated); err != nil {
			slog.Debug("injection rejected by compiler",
				"contract", s.contract.ID, "bugType", snippet.BugType, "snippet", snippet.ID, "line", line, "error", err)

			return m.Injection{}, fmt.Errorf("%w: %s at line %d: %v", ErrInvalidInjection, snippet.ID, line, err)
		}
	}

	added := snippet.LineCount()

	for i := range s.log {
		if s.log[i].StartLine >= line {
			s.log[i].StartLine += added
			s.log[i].EndLine += added
		}
	}

	inj := m.Injection{
		ContractID: s.contract.ID,
		BugType:    snippet.BugType,
		SnippetID:  snippet.ID,
		Seq:        s.nextSeq,
		StartLine:  line,
		EndLine:    line + added - 1,
	}

	s.nextSeq++
	s.log = append(s.log, inj)
	s.text = mutated

	slog.Debug("injection committed",
		"contract", s.contract.ID, "bugType", snippet.BugType, "snippet", snippet.ID, "seq", inj.Seq, "line", line)

	return inj, nil
}
