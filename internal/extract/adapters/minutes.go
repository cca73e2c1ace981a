package adapters

import (
	"path/filepath"
	"strings"

	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/segment"
)

// MinutesAdapter splits minutes on the known section headings
type MinutesAdapter struct {
	BaseAdapter
	splitter *segment.SectionSplitter
}

// NewMinutesAdapter creates a minutes adapter; a nil splitter uses the default catalog
func NewMinutesAdapter(splitter *segment.SectionSplitter) *MinutesAdapter {
	if splitter == nil {
		splitter = segment.NewSectionSplitter(nil, segment.DuplicateOverwrite)
	}
	return &MinutesAdapter{splitter: splitter}
}

// Name returns the adapter name
func (a *MinutesAdapter) Name() string { return "minutes" }

// DocType returns model.DocMinutes
func (a *MinutesAdapter) DocType() model.DocType { return model.DocMinutes }

// CanHandle checks the filename for a minutes hint
func (a *MinutesAdapter) CanHandle(name string) bool {
	return a.HasMinutesHint(name)
}

// Sections runs the section splitter over the raw text
func (a *MinutesAdapter) Sections(name string, text string) []segment.Section {
	return a.splitter.Split(text)
}

// PreSplitMinutesAdapter handles minutes files that already hold a single
// section, named like FOMC_SEO_2023-10-31.txt. The section tag comes from the
// second underscore-separated field of the filename.
type PreSplitMinutesAdapter struct {
	BaseAdapter
}

// DefaultPreSplitTag is used when the filename carries no usable tag
const DefaultPreSplitTag = "MINUTES"

// NewPreSplitMinutesAdapter creates a pre-split minutes adapter
func NewPreSplitMinutesAdapter() *PreSplitMinutesAdapter {
	return &PreSplitMinutesAdapter{}
}

// Name returns the adapter name
func (a *PreSplitMinutesAdapter) Name() string { return "minutes-presplit" }

// DocType returns model.DocMinutes
func (a *PreSplitMinutesAdapter) DocType() model.DocType { return model.DocMinutes }

// CanHandle requires a minutes hint and the fomc_ prefix field
func (a *PreSplitMinutesAdapter) CanHandle(name string) bool {
	return a.HasMinutesHint(name) && strings.Contains(a.LowerName(name), "fomc_")
}

// Sections segments the whole body under the tag taken from the filename
func (a *PreSplitMinutesAdapter) Sections(name string, text string) []segment.Section {
	return []segment.Section{{Title: a.Tag(name), Sentences: segment.Split(text)}}
}

// Tag derives the section tag from the filename
func (a *PreSplitMinutesAdapter) Tag(name string) string {
	lower := a.LowerName(name)
	lower = strings.TrimSuffix(lower, filepath.Ext(lower))

	fields := strings.Split(lower, "_")
	if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
		return DefaultPreSplitTag
	}
	return strings.ToUpper(fields[1])
}
