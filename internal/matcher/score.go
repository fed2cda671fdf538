package matcher

import (
	"math"
	"regexp"
	"strings"
)

// MatchThreshold is the lowest confidence reported as a match.
const MatchThreshold = 0.8

var (
	nonWordRe  = regexp.MustCompile(`[^\w\s]`)
	spaceRe    = regexp.MustCompile(`\s+`)
	platformRe = regexp.MustCompile(`(?i)\s*(?:for\s+mac(?:os)?|mac\s+version)\s*$`)
)

// Clean lowercases s, strips punctuation and collapses whitespace.
func Clean(s string) string {
	s = nonWordRe.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// StripPlatformSuffix removes a trailing "for Mac", "for macOS" or
// "Mac version" from an app name.
func StripPlatformSuffix(name string) string {
	return strings.TrimSpace(platformRe.ReplaceAllString(strings.TrimSpace(name), ""))
}

// Similarity compares two names or developer strings: 1 for an exact match
// after cleaning, 0.95 when one contains the other, word overlap otherwise.
func Similarity(a, b string) float64 {
	ca, cb := Clean(a), Clean(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return 0.95
	}

	wa, wb := strings.Fields(ca), strings.Fields(cb)
	inB := make(map[string]bool, len(wb))
	for _, w := range wb {
		inB[w] = true
	}
	common := 0
	for _, w := range wa {
		if inB[w] {
			common++
			delete(inB, w)
		}
	}
	overlap := float64(common) / float64(max(len(wa), len(wb)))
	if overlap >= 0.5 {
		overlap = math.Min(overlap+0.2, 1)
	}
	return overlap
}

// Score rates a canonical candidate against the query. Without a query
// developer the name similarity carries the full weight. Exact name and
// developer matches earn a bonus; the total is clamped to 1 and rounded to
// four decimals so threshold comparisons are stable.
func Score(candidateName, candidateDeveloper, queryName, queryDeveloper string) float64 {
	name := Similarity(candidateName, queryName)
	score := name
	if Clean(queryDeveloper) != "" {
		score = 0.7*name + 0.3*Similarity(candidateDeveloper, queryDeveloper)
	}

	if cn := Clean(candidateName); cn != "" && cn == Clean(queryName) {
		score += 0.2
		if cd := Clean(candidateDeveloper); cd != "" && cd == Clean(queryDeveloper) {
			score += 0.1
		}
	}
	return round4(math.Min(score, 1))
}

// Accept reports whether a score clears MatchThreshold.
func Accept(score float64) bool {
	return score >= MatchThreshold
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
