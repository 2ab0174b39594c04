package extraction

const (
	amountWeight       = 40
	dateWeight         = 30
	merchantWeight     = 30
	completenessBonus  = 10
	maxConfidenceScore = 100
)

// Confidence scores how complete an extraction is. It depends only on which
// fields were found, never on their values.
func Confidence(hasAmount, hasDate, hasMerchant bool) int {
	score, found := 0, 0
	if hasAmount {
		score += amountWeight
		found++
	}
	if hasDate {
		score += dateWeight
		found++
	}
	if hasMerchant {
		score += merchantWeight
		found++
	}

	if found == 3 {
		score += completenessBonus
	}
	return min(score, maxConfidenceScore)
}
