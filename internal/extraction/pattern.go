package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// spaceChars is the whitespace found in OCR output: ASCII spacing plus
// vertical tab, the Unicode space separators (NBSP included), line and
// paragraph separators and the byte order mark.
const spaceChars = `\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}`

// mustCompile compiles expr with every \s widened to spaceChars, both inside
// and outside character classes.
func mustCompile(expr string) *regexp.Regexp {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			if expr[i+1] == 's' {
				if inClass {
					b.WriteString(spaceChars)
				} else {
					b.WriteString("[" + spaceChars + "]")
				}
			} else {
				b.WriteByte(c)
				b.WriteByte(expr[i+1])
			}
			i++
			continue
		case c == '[' && !inClass:
			inClass = true
		case c == ']' && inClass:
			inClass = false
		}
		b.WriteByte(c)
	}
	return regexp.MustCompile(b.String())
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// trimSpace trims the same whitespace set the patterns recognize
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
