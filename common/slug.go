package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify derives a lowercase, dash separated, ASCII identifier from a display name.
// Accents are folded ("Événements" -> "evenements"), '@' becomes "at", other punctuation is dropped.
func Slugify(name string) string {
	folding := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(folding, name)
	if err != nil {
		ascii = name
	}
	ascii = strings.ReplaceAll(ascii, "@", " at ")

	var b strings.Builder
	pendingSeparator := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSeparator && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSeparator = false
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			pendingSeparator = true
		}
	}
	return b.String()
}
