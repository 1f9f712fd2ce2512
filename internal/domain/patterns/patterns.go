// Package patterns implements the structural site rules of the pattern
// catalog. Each rule is a predicate over a lightweight line scan of a
// Solidity source and yields the candidate sites where a snippet with that
// pattern may be legally inserted.
package patterns

import m "solseed.dev/pkg/solseed/internal/model"

// Site is a candidate insertion point: the byte offset of a line start in
// the scanned text and the 1-based line number an insertion there will occupy.
type Site struct {
	Offset int
	Line   int
}

// Rule finds all candidate sites for one structural pattern.
type Rule func(src *Scan) []Site

var rules = map[m.SitePattern]Rule{
	m.SiteContractBody:      contractBodySites,
	m.SiteAfterExternalCall: afterExternalCallSites,
	m.SiteAfterSend:         afterSendSites,
	m.SiteFunctionStart:     functionStartSites,
	m.SiteAfterLoopHeader:   afterLoopHeaderSites,
}

// Sites runs the rule registered for the given pattern. Unknown patterns
// yield no sites; the catalog rejects them at load time.
func Sites(pattern m.SitePattern, src *Scan) []Site {
	rule, ok := rules[pattern]
	if !ok {
		return nil
	}

	return rule(src)
}

// Scan is a line-indexed view of a source text.
type Scan struct {
	lines []scanLine
	size  int
}

type scanLine struct {
	start int // byte offset of the line start
	text  string
}

// NewScan indexes the source by line. Line numbers are 1-based throughout.
func NewScan(src string) *Scan {
	s := &Scan{size: len(src)}
	start := 0

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			s.lines = append(s.lines, scanLine{start: start, text: src[start:i]})
			start = i + 1
		}
	}

	if start < len(src) {
		s.lines = append(s.lines, scanLine{start: start, text: src[start:]})
	}

	return s
}

// LineCount returns the number of indexed lines.
func (s *Scan) LineCount() int {
	return len(s.lines)
}

// lineText returns the text of a 1-based line, without its newline.
func (s *Scan) lineText(line int) string {
	return s.lines[line-1].text
}

// siteAfter builds the Site that inserts directly below the given 1-based
// line. Inserting at the end of the text is allowed: the offset is then the
// text length.
func (s *Scan) siteAfter(line int) Site {
	if line >= len(s.lines) {
		return Site{Offset: s.size, Line: len(s.lines) + 1}
	}

	return Site{Offset: s.lines[line].start, Line: line + 1}
}

// openBraceLine scans forward from a 1-based header line for the line
// carrying the block's opening brace. Returns 0 when none is found within
// the window; declarations without bodies (interfaces, abstract functions)
// produce no site.
func (s *Scan) openBraceLine(header int) int {
	const window = 4

	for line := header; line <= len(s.lines) && line < header+window; line++ {
		text := s.lineText(line)

		// A same-line terminator means there is no block to enter.
		for _, r := range text {
			if r == '{' {
				return line
			}

			if r == ';' {
				return 0
			}
		}
	}

	return 0
}
