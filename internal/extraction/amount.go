package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPatterns are ordered from most to least specific. The slice index is
// the candidate's priority; each pattern captures the numeral in group 1.
var amountPatterns = []*regexp.Regexp{
	// Total with "IVA inclusa" qualifier
	mustCompile(`(?i)(?:TOTALE|TOT\.?|TOTAL|DA PAGARE|IMPORTO)\s+(?:IVA\s+INCLUSA|IVA\s+COMPRESA|IVA\s+INCL|COMPRENSIVO|CON\s+IVA)\s*[:=]?\s*(?:EUR|€|EURO)?\s*(\d+[,.]\d{2})`),
	// Total with explicit currency
	mustCompile(`(?i)(?:TOTALE|TOT\.?|TOTAL|DA PAGARE|IMPORTO)\s+(?:COMPLESSIVO|GENERALE|FINALE?)?\s*(?:EUR|€|EURO)\s*(\d+[,.]\d{2})`),
	// Total without currency
	mustCompile(`(?i)(?:TOTALE|TOT\.?|TOTAL|DA PAGARE|IMPORTO)\s*[:=]?\s*(\d+[,.]\d{2})`),
	// Payment method
	mustCompile(`(?i)(?:PAGATO|CONTANTI|CONTANTE|CARTA|BANCOMAT|POS)\s*[:=]?\s*(?:EUR|€)?\s*(\d+[,.]\d{2})`),
	mustCompile(`(?i)(?:EUR|€)\s*(\d+[,.]\d{2})`),
	mustCompile(`(?i)(\d+[,.]\d{2})\s*(?:EUR|€)`),
	// Bare amount alone on its line
	mustCompile(`(?m)^\s*(\d+[,.]\d{2})\s*$`),
}

var maxAmount = decimal.NewFromInt(100000)

type amountCandidate struct {
	value    decimal.Decimal
	priority int
	position int
}

// beats reports whether c should be chosen over other: lower priority first,
// then the later position in the text, then the larger value.
func (c amountCandidate) beats(other amountCandidate) bool {
	if c.priority != other.priority {
		return c.priority < other.priority
	}
	if c.position != other.position {
		return c.position > other.position
	}
	return c.value.GreaterThan(other.value)
}

// ExtractAmount returns the most plausible receipt total in text.
func ExtractAmount(text string) decimal.NullDecimal {
	return extractAmount(text, findExclusions(text))
}

func extractAmount(text string, excluded exclusionZones) decimal.NullDecimal {
	candidates := amountCandidates(text, excluded)
	if len(candidates) == 0 {
		return decimal.NullDecimal{}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.beats(best) {
			best = c
		}
	}
	return decimal.NullDecimal{Decimal: best.value, Valid: true}
}

func amountCandidates(text string, excluded exclusionZones) []amountCandidate {
	var candidates []amountCandidate
	for priority, re := range amountPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if excluded.contains(loc[0]) {
				continue
			}
			value, ok := parseAmount(text[loc[2]:loc[3]])
			if !ok {
				continue
			}
			candidates = append(candidates, amountCandidate{
				value:    value,
				priority: priority,
				position: loc[0],
			})
		}
	}
	return candidates
}

// parseAmount converts an Italian numeral such as "12,50" and enforces the
// accepted range (0, 100000).
func parseAmount(numeral string) (decimal.Decimal, bool) {
	value, err := decimal.NewFromString(strings.Replace(numeral, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if !value.IsPositive() || !value.LessThan(maxAmount) {
		return decimal.Decimal{}, false
	}
	return value, true
}
