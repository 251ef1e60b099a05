// Package naming derives best-effort descriptive labels for finished
// sessions from surface features of their activities, optionally
// matching against previously learned patterns.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/prose/v3"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// minKeywordLen filters out short tokens that carry no theme signal.
const minKeywordLen = 4

// Features are the surface signals extracted from a group of
// activities: application names, web domains, and free-text keywords.
// The details format is "<title> | <app> | <url>"; missing segments
// are tolerated.
type Features struct {
	Apps     []string
	Domains  []string
	Keywords []string

	TotalDurationSec int
	ActivityCount    int
}

// ExtractFeatures pulls apps, domains, and keywords out of the
// meaningful activities in a group. Noise activities contribute
// nothing.
func ExtractFeatures(records []activity.Record, noiseThresholdSec int) Features {
	meaningful, _ := activity.FilterNoise(records, noiseThresholdSec)

	apps := make(map[string]struct{})
	domains := make(map[string]struct{})
	keywords := make(map[string]struct{})

	var total int
	for _, r := range records {
		total += r.DurationSec
	}

	for _, r := range meaningful {
		details := strings.ToLower(r.Details)

		if app := extractApp(details); app != "" {
			apps[app] = struct{}{}
		}
		if domain := extractDomain(details); domain != "" {
			domains[domain] = struct{}{}
		}
		for _, kw := range extractKeywords(details) {
			keywords[kw] = struct{}{}
		}
	}

	return Features{
		Apps:             sortedKeys(apps),
		Domains:          sortedKeys(domains),
		Keywords:         sortedKeys(keywords),
		TotalDurationSec: total,
		ActivityCount:    len(records),
	}
}

// extractApp takes the second pipe-separated segment's first word.
func extractApp(details string) string {
	parts := strings.Split(details, "|")
	if len(parts) < 2 {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(parts[1]))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// extractDomain pulls the host from the first URL in the details,
// stripping a leading www.
func extractDomain(details string) string {
	idx := strings.Index(details, "http")
	if idx < 0 {
		return ""
	}
	urlPart := details[idx:]
	if cut := strings.Index(urlPart, "|"); cut >= 0 {
		urlPart = urlPart[:cut]
	}
	urlPart = strings.TrimSpace(urlPart)
	_, rest, found := strings.Cut(urlPart, "://")
	if !found {
		return ""
	}
	host := rest
	if cut := strings.IndexAny(host, "/?#"); cut >= 0 {
		host = host[:cut]
	}
	return strings.TrimPrefix(host, "www.")
}

// extractKeywords tokenizes the details and keeps alphabetic tokens of
// useful length. Tokenization failures yield no keywords; they are
// never fatal.
func extractKeywords(details string) []string {
	doc, err := prose.NewDocument(strings.ReplaceAll(details, "|", " "))
	if err != nil {
		return nil
	}
	var out []string
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if len(word) >= minKeywordLen && isAlpha(word) {
			out = append(out, word)
		}
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Deterministic output keeps naming and matching stable.
	sort.Strings(out)
	return out
}
