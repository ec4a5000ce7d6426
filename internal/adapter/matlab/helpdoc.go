package matlab

import "strings"

// extractHelp returns the contiguous % comment block immediately following
// a declaration, with comment markers stripped. This is the text MATLAB's
// help command would show. declLine is the 1-indexed last physical line of the
// declaration; endLine bounds the search.
func extractHelp(lines []string, declLine, endLine int) string {
	var help []string
	for i := declLine; i < endLine && i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" && len(help) == 0 {
			continue
		}
		if !strings.HasPrefix(trimmed, "%") {
			break
		}
		if trimmed == "%{" || trimmed == "%}" {
			break
		}
		help = append(help, strings.TrimSpace(strings.TrimPrefix(trimmed, "%")))
	}
	return strings.Join(help, "\n")
}
