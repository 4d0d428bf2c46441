// Package pagecheck scans rendered page text for server-side error
// leakage: PHP warnings, notices, and fatals that a healthy theme demo
// must never print into its output.
package pagecheck

import (
	"regexp"
	"strings"
)

const excerptContextLength = 160

// One pattern per PHP error class, anchored on the interpreter's
// message prefix followed by the "in <file> on line <n>" tail that
// distinguishes real interpreter output from article text.
var phpErrorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Fatal error:\s.+? in .+? on line \d+`),
	regexp.MustCompile(`Parse error:\s.+? in .+? on line \d+`),
	regexp.MustCompile(`Warning:\s.+? in .+? on line \d+`),
	regexp.MustCompile(`Notice:\s.+? in .+? on line \d+`),
	regexp.MustCompile(`Deprecated:\s.+? in .+? on line \d+`),
}

// FindPHPErrors returns every PHP error excerpt present in the page
// text, truncated to a reviewable length. An empty result means the
// page is clean.
func FindPHPErrors(pageText string) []string {
	var foundExcerpts []string
	for _, errorPattern := range phpErrorPatterns {
		for _, matchedExcerpt := range errorPattern.FindAllString(pageText, -1) {
			foundExcerpts = append(foundExcerpts, truncateExcerpt(strings.TrimSpace(matchedExcerpt)))
		}
	}
	return foundExcerpts
}

func truncateExcerpt(matchedExcerpt string) string {
	if len(matchedExcerpt) <= excerptContextLength {
		return matchedExcerpt
	}
	return matchedExcerpt[:excerptContextLength]
}
