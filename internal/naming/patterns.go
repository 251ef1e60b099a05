package naming

// Pattern is a previously learned session shape: a label plus the
// feature sets that have identified it before, and how often the user
// has confirmed it.
type Pattern struct {
	ID          int64
	Name        string
	SessionType string
	Keywords    []string
	Apps        []string
	Domains     []string
	UsageCount  int
	SuccessRate int // percent of times the user confirmed
}

// PatternSource provides read access to learned patterns. The core
// never writes patterns.
type PatternSource interface {
	Patterns() ([]Pattern, error)
}

// Matcher finds a learned pattern for a feature set. Implementations
// are pluggable so matching strategies stay testable independent of
// the naming heuristics.
type Matcher interface {
	Match(f Features) (Pattern, float64, bool)
}

// Feature weights for overlap scoring. App overlap identifies a
// session shape much more reliably than shared keywords.
const (
	appWeight     = 3
	domainWeight  = 2
	keywordWeight = 1

	// MinSimilarity is the acceptance floor for a pattern match.
	MinSimilarity = 0.3
)

// OverlapMatcher scores patterns by weighted feature overlap,
// normalized by the pattern's total feature count, and accepts the
// best match above MinSimilarity.
type OverlapMatcher struct {
	source PatternSource
}

// NewOverlapMatcher builds a matcher over the given pattern source.
func NewOverlapMatcher(source PatternSource) *OverlapMatcher {
	return &OverlapMatcher{source: source}
}

// Match returns the highest-scoring acceptable pattern, its similarity,
// and whether any pattern qualified. Source failures yield no match;
// they never abort naming.
func (m *OverlapMatcher) Match(f Features) (Pattern, float64, bool) {
	patterns, err := m.source.Patterns()
	if err != nil {
		return Pattern{}, 0, false
	}

	var best Pattern
	bestScore := 0.0
	found := false

	for _, p := range patterns {
		total := len(p.Apps) + len(p.Domains) + len(p.Keywords)
		if total == 0 {
			continue
		}
		score := float64(overlap(f.Apps, p.Apps)*appWeight+
			overlap(f.Domains, p.Domains)*domainWeight+
			overlap(f.Keywords, p.Keywords)*keywordWeight) / float64(total)

		if score > bestScore && score > MinSimilarity {
			bestScore = score
			best = p
			found = true
		}
	}
	return best, bestScore, found
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	n := 0
	for _, s := range b {
		if _, ok := set[s]; ok {
			n++
		}
	}
	return n
}
