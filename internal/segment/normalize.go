// Package segment turns raw policy-document text into ordered sentences.
//
// Segmentation runs in two passes. Normalize repairs layout artifacts (dashes,
// hyphenated line wraps, whitespace). Protect then hides every period that must
// not end a sentence (decimals, catalog abbreviations, initials) behind Marker,
// so the splitter can cut on plain terminal punctuation and restore the periods
// afterwards.
//
// The rules are tuned for formal, abbreviation-heavy institutional prose and are
// not a general sentence-boundary detector.
package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Marker replaces protected periods between Protect and Restore.
// It is a private-use code point, so it never occurs in fetched documents.
const Marker = '\uE000'

// Abbreviations is the fixed catalog of period-bearing abbreviations that never end a sentence.
var Abbreviations = []string{
	"U.S.", "Mr.", "Mrs.", "Ms.", "Dr.", "St.", "No.", "Inc.", "Ltd.", "Jr.", "Sr.", "Co.", "vs.",
	"Prof.", "Fig.", "Eq.", "cf.", "e.g.", "i.e.", "Jan.", "Feb.", "Mar.", "Apr.", "Jun.", "Jul.",
	"Aug.", "Sep.", "Sept.", "Oct.", "Nov.", "Dec.",
}

var (
	dashReplacer  = strings.NewReplacer("–", "-", "—", "-")
	wrapHyphen    = regexp.MustCompile(`(\w)-\s+(\w)`)
	protectRegexp = mustProtectPattern(Abbreviations)
)

// Normalize replaces en/em dashes, joins words hyphenated across a line wrap
// and collapses whitespace runs into single spaces.
func Normalize(raw string) string {
	text := dashReplacer.Replace(raw)

	// Joining consumes the next word character, so "a- b- c" needs a second pass.
	for {
		joined := wrapHyphen.ReplaceAllString(text, "$1$2")
		if joined == text {
			break
		}
		text = joined
	}

	return strings.Join(strings.Fields(text), " ")
}

// Protect replaces every period inside a decimal number, a catalog abbreviation
// or a name initial with Marker. The input is expected to be normalized.
//
// All three kinds of span are found by one combined pattern in a single
// left-to-right pass, so each period is rewritten at most once regardless of
// how the abbreviations overlap.
func Protect(text string) string {
	matches := protectRegexp.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if m[6] >= 0 && !initialFollows(text, end) {
			// An initial only counts when a capitalized word follows.
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(hidePeriods(text[start:end]))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// Restore turns every Marker back into a period.
func Restore(text string) string {
	return strings.ReplaceAll(text, string(Marker), ".")
}

func hidePeriods(span string) string {
	return strings.ReplaceAll(span, ".", string(Marker))
}

// initialFollows reports whether text[pos:] is whitespace followed by an upper-case letter.
func initialFollows(text string, pos int) bool {
	rest := text[pos:]
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if len(trimmed) == len(rest) || trimmed == "" {
		return false
	}
	return trimmed[0] >= 'A' && trimmed[0] <= 'Z'
}

// mustProtectPattern builds the combined protection pattern.
// Group 1: decimals. Group 2: abbreviations (longest first). Group 3: initials.
func mustProtectPattern(abbrs []string) *regexp.Regexp {
	if err := checkCatalog(abbrs); err != nil {
		panic(err)
	}

	sorted := append([]string(nil), abbrs...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, a := range sorted {
		quoted[i] = regexp.QuoteMeta(a)
	}

	pattern := `(\d+(?:\.\d+)+)` +
		`|\b(` + strings.Join(quoted, "|") + `)` +
		`|\b([A-Z]\.)`
	return regexp.MustCompile(pattern)
}

// checkCatalog rejects entries the pattern cannot protect: every entry must
// carry a period, must not contain Marker and must be listed once. Overlapping
// entries such as "U.S." and "S." are allowed; the longest alternative wins at
// each position and a protected span is never rescanned.
func checkCatalog(abbrs []string) error {
	seen := make(map[string]bool, len(abbrs))
	for _, a := range abbrs {
		if !strings.Contains(a, ".") {
			return fmt.Errorf("abbreviation %q has no period to protect", a)
		}
		if strings.ContainsRune(a, Marker) {
			return fmt.Errorf("abbreviation %q contains the protection marker", a)
		}
		if seen[a] {
			return fmt.Errorf("abbreviation %q listed twice", a)
		}
		seen[a] = true
	}

	return nil
}
