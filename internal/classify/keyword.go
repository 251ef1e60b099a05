package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// Default keyword lists per band. Checked in order: productive,
// unproductive, neutral; first hit wins.
var (
	DefaultProductiveKeywords = []string{
		"localhost", "github", "stackoverflow", "documentation",
		"vscode", "terminal", "python", "code", "programming",
		"development", "docs", "api", "database", "sql",
	}
	DefaultUnproductiveKeywords = []string{
		"youtube", "facebook", "instagram", "tiktok", "netflix",
		"gaming", "memes", "twitter", "x.com", "entertainment",
		"sports", "news", "reddit",
	}
	DefaultNeutralKeywords = []string{
		"email", "calendar", "google", "search", "weather",
		"maps", "settings", "preferences",
	}
)

// Scores assigned to keyword hits. Chosen to land in the middle of the
// matching band so downstream band classification round-trips.
const (
	keywordProductiveScore   = 30
	keywordUnproductiveScore = -30
	keywordHitConfidence     = 60
	keywordMissConfidence    = 30
)

// KeywordClassifier is the offline fallback oracle: substring matching
// against fixed keyword lists. It never fails.
type KeywordClassifier struct {
	productive   []string
	unproductive []string
	neutral      []string
}

// NewKeywordClassifier builds a classifier with the default lists.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		productive:   DefaultProductiveKeywords,
		unproductive: DefaultUnproductiveKeywords,
		neutral:      DefaultNeutralKeywords,
	}
}

// NewKeywordClassifierWithLists builds a classifier with caller-supplied
// lists. Empty lists fall back to the defaults.
func NewKeywordClassifierWithLists(productive, unproductive, neutral []string) *KeywordClassifier {
	c := NewKeywordClassifier()
	if len(productive) > 0 {
		c.productive = productive
	}
	if len(unproductive) > 0 {
		c.unproductive = unproductive
	}
	if len(neutral) > 0 {
		c.neutral = neutral
	}
	return c
}

// Classify matches details against the keyword lists.
func (c *KeywordClassifier) Classify(_ context.Context, details string) (Result, error) {
	lower := strings.ToLower(details)

	if kw, ok := match(lower, c.productive); ok {
		return Result{
			Score:      keywordProductiveScore,
			Confidence: keywordHitConfidence,
			Reasoning:  fmt.Sprintf("matched %s keyword %q", activity.TypeProductive, kw),
		}, nil
	}
	if kw, ok := match(lower, c.unproductive); ok {
		return Result{
			Score:      keywordUnproductiveScore,
			Confidence: keywordHitConfidence,
			Reasoning:  fmt.Sprintf("matched %s keyword %q", activity.TypeUnproductive, kw),
		}, nil
	}
	if kw, ok := match(lower, c.neutral); ok {
		return Result{
			Score:      0,
			Confidence: keywordHitConfidence,
			Reasoning:  fmt.Sprintf("matched %s keyword %q", activity.TypeNeutral, kw),
		}, nil
	}

	return Result{
		Score:      0,
		Confidence: keywordMissConfidence,
		Reasoning:  "no keyword match",
	}, nil
}

func match(lower string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
