package segment

import (
	"regexp"
	"strings"
)

var (
	// Protected periods are Marker by now, so every match here is a real boundary.
	boundary     = regexp.MustCompile(`[.!?]\s+`)
	bulletGlyph  = regexp.MustCompile(`^\s*[\x{2022}\x{00B7}\x{25AA}*-]\s*`)
	surroundTrim = " \t\n\r\"'“”‘’"
)

// Split segments raw text into sentences.
//
// The text is normalized and protected first, then cut after every unprotected
// '.', '!' or '?' that is followed by whitespace. Each sentence keeps its
// terminal punctuation. A trailing fragment without terminal punctuation is
// still returned when it is not empty.
func Split(raw string) []string {
	text := Protect(Normalize(raw))
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range boundary.FindAllStringIndex(text, -1) {
		// Keep the punctuation, drop the whitespace.
		if s := cleanSentence(text[last : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if last < len(text) {
		if s := cleanSentence(text[last:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// cleanSentence restores protected periods and strips quotes, whitespace and a
// leading bullet glyph.
func cleanSentence(s string) string {
	s = strings.Trim(Restore(s), surroundTrim)
	s = bulletGlyph.ReplaceAllString(s, "")
	return strings.Trim(s, surroundTrim)
}
