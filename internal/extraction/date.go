package extraction

import (
	"regexp"
	"strings"
	"time"
)

// italianMonths maps abbreviated and full Italian month names to month numbers
var italianMonths = map[string]string{
	"GEN": "01", "GENNAIO": "01",
	"FEB": "02", "FEBBRAIO": "02",
	"MAR": "03", "MARZO": "03",
	"APR": "04", "APRILE": "04",
	"MAG": "05", "MAGGIO": "05",
	"GIU": "06", "GIUGNO": "06",
	"LUG": "07", "LUGLIO": "07",
	"AGO": "08", "AGOSTO": "08",
	"SET": "09", "SETTEMBRE": "09",
	"OTT": "10", "OTTOBRE": "10",
	"NOV": "11", "NOVEMBRE": "11",
	"DIC": "12", "DICEMBRE": "12",
}

type datePattern struct {
	re           *regexp.Regexp
	textualMonth bool
}

// datePatterns are tried in order; groups are day, month, year.
var datePatterns = []datePattern{
	{re: mustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})`)},
	{re: mustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2})`)},
	{
		re:           mustCompile(`(?i)(\d{1,2})\s+(GEN|FEB|MAR|APR|MAG|GIU|LUG|AGO|SET|OTT|NOV|DIC)\w*\s+(\d{4})`),
		textualMonth: true,
	},
}

// ExtractDate returns the first valid date in text as YYYY-MM-DD, or "" if
// none of the patterns produce a real calendar date.
func ExtractDate(text string) string {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		day := zeroPad(m[1])
		year := m[3]
		var month string
		if p.textualMonth {
			month = monthCode(m[2])
		} else {
			month = zeroPad(m[2])
			if len(year) == 2 {
				year = "20" + year
			}
		}

		candidate := year + "-" + month + "-" + day
		// time.Parse rejects out-of-range days such as 2024-02-30
		if _, err := time.Parse(time.DateOnly, candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// monthCode looks up a month by its first three letters. Unknown names fall
// back to January.
func monthCode(name string) string {
	key := strings.ToUpper(name)
	if len(key) > 3 {
		key = key[:3]
	}
	if code, ok := italianMonths[key]; ok {
		return code
	}
	return "01"
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
