package audit

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxNotesLength is the maximum number of characters kept from approver notes.
const MaxNotesLength = 1000

const maxStripPasses = 8

// SanitizeNotes strips markup from free-text notes, drops script and style
// bodies, collapses whitespace and truncates to MaxNotesLength runes.
func SanitizeNotes(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Text() decodes entities, so escaped markup becomes live markup after one
	// pass. Strip until the text stops changing.
	text := raw
	for i := 0; i < maxStripPasses && strings.ContainsAny(text, "<&"); i++ {
		stripped := stripMarkup(text)
		if stripped == text {
			break
		}
		text = stripped
	}
	if strings.Contains(text, "<") {
		text = strings.NewReplacer("<", "", ">", "").Replace(text)
	}

	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > MaxNotesLength {
		text = string([]rune(text)[:MaxNotesLength])
	}
	return text
}

func stripMarkup(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.NewReplacer("<", "", ">", "").Replace(raw)
	}
	doc.Find("script, style, iframe, object, embed").Remove()
	return doc.Text()
}
