package patterns

import (
	"regexp"
	"strings"
)

var (
	externalCallRe = regexp.MustCompile(`\.(call|delegatecall|staticcall|send|transfer)\s*[({]|\.call\.value\s*\(`)
	sendRe         = regexp.MustCompile(`\.(send|transfer)\s*\(`)
)

// afterExternalCallSites yields a site on the line below every external call
// statement. A site is only legal when the statement completes on its line,
// so multi-line call expressions are skipped.
func afterExternalCallSites(src *Scan) []Site {
	return sitesBelowMatching(src, externalCallRe)
}

// afterSendSites yields a site below every .send / .transfer statement.
func afterSendSites(src *Scan) []Site {
	return sitesBelowMatching(src, sendRe)
}

func sitesBelowMatching(src *Scan, re *regexp.Regexp) []Site {
	var sites []Site

	for line := 1; line <= src.LineCount(); line++ {
		text := src.lineText(line)
		if !re.MatchString(text) {
			continue
		}

		if !statementCompletes(text) {
			continue
		}

		sites = append(sites, src.siteAfter(line))
	}

	return sites
}

// statementCompletes reports whether a line ends a statement, so that the
// line below starts at a statement boundary.
func statementCompletes(text string) bool {
	trimmed := strings.TrimRight(text, " \t\r")

	return strings.HasSuffix(trimmed, ";") ||
		strings.HasSuffix(trimmed, "{") ||
		strings.HasSuffix(trimmed, "}")
}
