package patterns

import "regexp"

var contractHeaderRe = regexp.MustCompile(`^\s*(contract|library)\s+[A-Za-z_][A-Za-z0-9_]*`)

// contractBodySites yields one site per contract (or library) declaration,
// directly below the opening brace, where a self-contained declaration can
// be inserted.
func contractBodySites(src *Scan) []Site {
	var sites []Site

	for line := 1; line <= src.LineCount(); line++ {
		if !contractHeaderRe.MatchString(src.lineText(line)) {
			continue
		}

		brace := src.openBraceLine(line)
		if brace == 0 {
			continue
		}

		sites = append(sites, src.siteAfter(brace))
	}

	return sites
}
