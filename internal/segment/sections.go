package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PreambleTitle names the untitled text before the first recognized heading
const PreambleTitle = "Preamble"

// sectionTag is inserted before every heading match. The private-use
// delimiters keep it from colliding with document text.
const sectionTag = "\uE001SECTION\uE001"

// DefaultTitles is the catalog of minutes section headings, matched case-insensitively.
var DefaultTitles = []string{
	"Staff Economic Outlook",
	"Staff Review of the Economic Situation",
	"Staff Review of the Financial Situation",
	"Participants' Views on Current Conditions and the Economic Outlook",
	"Participants' Assessments of the Outlook",
	"Committee Policy Action",
	"Implementation Note",
	"Votes for this action",
	"Summary of Economic Projections",
}

// DuplicatePolicy decides how a repeated heading is merged
type DuplicatePolicy int

const (
	// DuplicateOverwrite keeps only the sentences of the last occurrence,
	// at the position of the first one.
	DuplicateOverwrite DuplicatePolicy = iota
	// DuplicateAppend appends the sentences of later occurrences.
	DuplicateAppend
)

func (p DuplicatePolicy) String() string {
	if p == DuplicateAppend {
		return "append"
	}
	return "overwrite"
}

// ParseDuplicatePolicy maps a config value onto a DuplicatePolicy
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return DuplicateOverwrite, nil
	case "append":
		return DuplicateAppend, nil
	default:
		return DuplicateOverwrite, fmt.Errorf("unknown duplicate policy %q (supported: overwrite, append)", s)
	}
}

// Section is one titled part of a document with its sentences in order
type Section struct {
	Title     string
	Sentences []string
}

// SectionSplitter partitions minutes text on a catalog of known headings
type SectionSplitter struct {
	titles     []string
	pattern    *regexp.Regexp
	duplicates DuplicatePolicy
}

// NewSectionSplitter compiles the heading catalog into one alternation.
// A nil or empty titles slice selects DefaultTitles.
func NewSectionSplitter(titles []string, duplicates DuplicatePolicy) *SectionSplitter {
	if len(titles) == 0 {
		titles = DefaultTitles
	}

	// Longest first so a heading that extends another one wins.
	ordered := append([]string(nil), titles...)
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	quoted := make([]string, len(ordered))
	for i, t := range ordered {
		quoted[i] = regexp.QuoteMeta(t)
	}

	return &SectionSplitter{
		titles:     titles,
		pattern:    regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`),
		duplicates: duplicates,
	}
}

// Split partitions raw text into sections and segments each body.
// Sections are returned in first-appearance order. Text before the first
// heading becomes the Preamble section.
func (s *SectionSplitter) Split(raw string) []Section {
	marked := s.pattern.ReplaceAllString(raw, "\n"+sectionTag+"${1}\n")

	var sections []Section
	index := make(map[string]int)

	for i, chunk := range strings.Split(marked, sectionTag) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		title, body := PreambleTitle, chunk
		if i > 0 {
			// Every chunk after the first starts with the heading line inserted above.
			title, body, _ = strings.Cut(chunk, "\n")
			title = strings.TrimSpace(title)
		}

		sentences := Split(body)
		key := strings.ToLower(title)
		if at, ok := index[key]; ok {
			if s.duplicates == DuplicateAppend {
				sections[at].Sentences = append(sections[at].Sentences, sentences...)
			} else {
				sections[at].Sentences = sentences
			}
			continue
		}
		index[key] = len(sections)
		sections = append(sections, Section{Title: title, Sentences: sentences})
	}

	return sections
}

// Titles returns the heading catalog in configured order
func (s *SectionSplitter) Titles() []string {
	return append([]string(nil), s.titles...)
}
