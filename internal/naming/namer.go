package naming

import (
	"strings"

	"github.com/flowtrack/flowtrack/internal/flow"
)

// Known domain groups for heuristic naming.
var (
	researchDomains      = []string{"stackoverflow.com", "github.com", "documentation"}
	entertainmentDomains = []string{"youtube.com", "netflix.com", "x.com", "twitter.com"}
)

// Name generates a descriptive session label from extracted features
// and the session's dominance classification. Precedence: coding
// signals, then research domains, then entertainment domains, then a
// generic label from dominance.
func Name(f Features, dominance string) string {
	if f.ActivityCount == 0 {
		return "Empty Session"
	}

	appText := strings.Join(f.Apps, " ")
	if strings.Contains(appText, "code") || strings.Contains(appText, "terminal") {
		for _, d := range f.Domains {
			if strings.Contains(d, "localhost") {
				return "Web Development Session"
			}
		}
		return "Coding Session"
	}

	for _, d := range f.Domains {
		if matchesDomain(d, researchDomains) || strings.HasPrefix(d, "docs.") {
			return "Technical Research"
		}
	}

	for _, d := range f.Domains {
		if matchesDomain(d, entertainmentDomains) {
			if dominance == flow.DomUnproductive {
				return "Entertainment Break"
			}
			return "Mixed Media Session"
		}
	}

	switch dominance {
	case flow.DomProductive:
		return "Productive Work Session"
	case flow.DomUnproductive:
		return "Break Time"
	default:
		return "Mixed Activity Session"
	}
}

func matchesDomain(domain string, known []string) bool {
	for _, k := range known {
		if domain == k {
			return true
		}
	}
	return false
}
