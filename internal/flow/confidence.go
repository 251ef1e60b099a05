package flow

// AutoConfirmConfidence is the confidence at which a session's
// classification is accepted without user review.
const AutoConfirmConfidence = 75

// Confidence estimates how trustworthy a session classification is,
// from the clarity of its dominance, its flow quality, and its length.
// Clamped to [30, 95] so a classification is never fully certain and
// never useless.
func Confidence(dominance string, q Quality, st Stats) int {
	conf := 50

	switch {
	case st.ProductiveRatio >= 0.75 || st.UnproductiveRatio >= 0.75:
		conf += 25
	case st.ProductiveRatio >= 0.6 || st.UnproductiveRatio >= 0.6:
		conf += 15
	}

	switch {
	case q.Score >= 80:
		conf += 15
	case q.Score >= 60:
		conf += 10
	}

	switch minutes := st.MeaningfulSec / 60; {
	case minutes >= 20:
		conf += 10
	case minutes >= 10:
		conf += 5
	}

	switch dominance {
	case DomMixed, DomMostlyProductive, DomMostlyUnproductive:
		conf -= 15
	}

	if conf > 95 {
		conf = 95
	}
	if conf < 30 {
		conf = 30
	}
	return conf
}
