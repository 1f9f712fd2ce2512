package patterns

import "regexp"

var (
	functionHeaderRe = regexp.MustCompile(`^\s*function\s+[A-Za-z_][A-Za-z0-9_]*\s*\(`)
	loopHeaderRe     = regexp.MustCompile(`^\s*(for|while)\s*\(`)
)

// functionStartSites yields a site at the first line of every function body.
func functionStartSites(src *Scan) []Site {
	return blockStartSites(src, functionHeaderRe)
}

// afterLoopHeaderSites yields a site at the first line of every for/while body.
func afterLoopHeaderSites(src *Scan) []Site {
	return blockStartSites(src, loopHeaderRe)
}

func blockStartSites(src *Scan, headerRe *regexp.Regexp) []Site {
	var sites []Site

	for line := 1; line <= src.LineCount(); line++ {
		if !headerRe.MatchString(src.lineText(line)) {
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
