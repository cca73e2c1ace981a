package adapters

import (
	"path/filepath"
	"strings"

	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/segment"
)

// Adapter turns the text of one kind of document into titled sections
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// DocType returns the series the document feeds
	DocType() model.DocType

	// CanHandle checks if this adapter handles the given filename
	CanHandle(name string) bool

	// Sections segments the document text into titled sentence groups
	Sections(name string, text string) []segment.Section
}

// Registry manages document adapters
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

// NewRegistry creates a registry with the built-in adapters.
// Order matters: pre-split minutes files must be recognized before regular minutes.
func NewRegistry(splitter *segment.SectionSplitter) *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0, 2),
	}

	registry.Register(NewPreSplitMinutesAdapter())
	registry.Register(NewMinutesAdapter(splitter))

	// Anything without a minutes hint is a statement
	registry.fallback = NewStatementAdapter()

	return registry
}

// Register appends an adapter; earlier registrations win
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the adapter for the given filename
func (r *Registry) FindAdapter(name string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(name) {
			return adapter
		}
	}
	return r.fallback
}

// BaseAdapter provides filename helpers shared by adapters
type BaseAdapter struct{}

// minutesHints are filename substrings that mark a minutes document
var minutesHints = []string{"minutes", "rmpstc", "seo"}

// LowerName returns the lower-cased base name of a path
func (b *BaseAdapter) LowerName(name string) string {
	return strings.ToLower(filepath.Base(name))
}

// HasMinutesHint reports whether the filename names a minutes document
func (b *BaseAdapter) HasMinutesHint(name string) bool {
	lower := b.LowerName(name)
	for _, hint := range minutesHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// StatementAdapter treats the whole document as one "Statement" section
type StatementAdapter struct {
	BaseAdapter
}

// StatementSection is the fixed section label of statements
const StatementSection = "Statement"

// NewStatementAdapter creates the default adapter
func NewStatementAdapter() *StatementAdapter {
	return &StatementAdapter{}
}

// Name returns the adapter name
func (a *StatementAdapter) Name() string { return "statement" }

// DocType returns model.DocStatement
func (a *StatementAdapter) DocType() model.DocType { return model.DocStatement }

// CanHandle always returns true (fallback adapter)
func (a *StatementAdapter) CanHandle(name string) bool { return true }

// Sections segments the whole text as a single section
func (a *StatementAdapter) Sections(name string, text string) []segment.Section {
	return []segment.Section{{Title: StatementSection, Sentences: segment.Split(text)}}
}
