package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	merchantLineWindow = 5
	merchantMinLen     = 3
	merchantMaxLen     = 50
)

// merchantSkipPatterns match header, fiscal and total lines that are never a
// business name.
var merchantSkipPatterns = []*regexp.Regexp{
	mustCompile(`(?i)^(?:SCONTRINO|RICEVUTA|DOCUMENTO|FISCALE)`),
	mustCompile(`(?i)^(?:P\.IVA|P\.I\.|C\.F\.|REG\.)`),
	mustCompile(`(?i)^(?:DATA|ORA|CASSA)`),
	mustCompile(`(?i)^(?:TOTALE|TOT|SUBTOT|RESTO)`),
	mustCompile(`^\d+[,.]\d{2}$`),
	mustCompile(`^[\d/.\-]+$`),
}

var merchantDisallowedChars = mustCompile(`(?i)[^\w\s\-'àèéìòù]`)

// ExtractMerchant returns the first plausible business name among the first
// few non-empty lines of text, or "" if there is none.
func ExtractMerchant(text string) string {
	lines := nonEmptyLines(text)
	if len(lines) > merchantLineWindow {
		lines = lines[:merchantLineWindow]
	}

	for _, line := range lines {
		if isBoilerplate(line) {
			continue
		}
		if n := utf8.RuneCountInString(line); n < merchantMinLen || n > merchantMaxLen {
			continue
		}
		cleaned := cleanMerchant(line)
		if utf8.RuneCountInString(cleaned) >= merchantMinLen {
			return cleaned
		}
	}
	return ""
}

func cleanMerchant(line string) string {
	// Composed form so that "e" + combining grave survives as "è"
	line = norm.NFC.String(line)
	return trimSpace(merchantDisallowedChars.ReplaceAllString(line, ""))
}

func isBoilerplate(line string) bool {
	for _, re := range merchantSkipPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = trimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
