package extraction

import "regexp"

// exclusionPatterns match subtotal, taxable-base and tax-excluded lines whose
// amounts must never be reported as the receipt total.
var exclusionPatterns = []*regexp.Regexp{
	mustCompile(`(?i)(?:SUB[\s\-]?TOTALE|SUBTOT|IMPONIBILE|IVA\s+ESCLUSA|IVA\s+ESCL|TOTALE\s+PARZIALE)\s*[:=]?\s*(?:EUR|€)?\s*\d+[,.]\d{2}`),
}

// exclusionZone is a half-open byte interval [start, end) of the input text.
type exclusionZone struct {
	start int
	end   int
}

type exclusionZones []exclusionZone

// findExclusions returns every region of text covered by an exclusion pattern.
// Overlapping and repeated matches are all kept; contains treats them as a union.
func findExclusions(text string) exclusionZones {
	var zones exclusionZones
	for _, re := range exclusionPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			zones = append(zones, exclusionZone{start: loc[0], end: loc[1]})
		}
	}
	return zones
}

// contains reports whether offset falls inside any zone
func (z exclusionZones) contains(offset int) bool {
	for _, zone := range z {
		if offset >= zone.start && offset < zone.end {
			return true
		}
	}
	return false
}
