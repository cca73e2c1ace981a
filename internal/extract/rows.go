package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/hawkdove/internal/extract/adapters"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/segment"
)

// ErrNoDateToken is returned when a filename carries no YYYY-MM-DD token
var ErrNoDateToken = errors.New("no YYYY-MM-DD token in filename")

var dateToken = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// DateExtractionError reports a document whose date cannot be derived from its name
type DateExtractionError struct {
	Name string
	Err  error
}

func (e *DateExtractionError) Error() string {
	return fmt.Sprintf("extract date from %q: %v", e.Name, e.Err)
}

func (e *DateExtractionError) Unwrap() error { return e.Err }

// DocumentError pairs a document with the error that stopped it from being built
type DocumentError struct {
	Document model.Document
	Err      error
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Document.Name, e.Err)
}

func (e DocumentError) Unwrap() error { return e.Err }

// RowBuilder turns document files into sentence rows
type RowBuilder struct {
	registry *adapters.Registry
}

// NewRowBuilder creates a row builder; a nil splitter uses the default heading catalog
func NewRowBuilder(splitter *segment.SectionSplitter) *RowBuilder {
	return &RowBuilder{registry: adapters.NewRegistry(splitter)}
}

// Build reads one document and returns its rows in document order
func (b *RowBuilder) Build(doc model.Document) ([]model.SentenceRow, error) {
	name := doc.Name
	if name == "" {
		name = filepath.Base(doc.Path)
	}

	// Check the name before touching the file
	if _, err := ExtractDate(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", doc.Path, err)
	}

	// Undecodable bytes are dropped, not fatal
	text := strings.ToValidUTF8(string(data), "")

	return b.BuildText(name, text)
}

// BuildText builds rows from text already in memory
func (b *RowBuilder) BuildText(name, text string) ([]model.SentenceRow, error) {
	date, err := ExtractDate(name)
	if err != nil {
		return nil, err
	}

	adapter := b.registry.FindAdapter(name)
	docType := adapter.DocType()

	var rows []model.SentenceRow
	for _, section := range adapter.Sections(name, text) {
		for _, sentence := range section.Sentences {
			rows = append(rows, model.SentenceRow{
				Date:     date,
				DocType:  docType,
				Section:  section.Title,
				Sentence: sentence,
			})
		}
	}
	return rows, nil
}

// BuildAll builds every document, collecting failures instead of stopping at the first one
func (b *RowBuilder) BuildAll(docs []model.Document) ([]model.SentenceRow, []DocumentError) {
	var rows []model.SentenceRow
	var failed []DocumentError

	for _, doc := range docs {
		docRows, err := b.Build(doc)
		if err != nil {
			failed = append(failed, DocumentError{Document: doc, Err: err})
			continue
		}
		rows = append(rows, docRows...)
	}
	return rows, failed
}

// ExtractDate parses the first YYYY-MM-DD token of the filename stem
func ExtractDate(name string) (time.Time, error) {
	stem := filepath.Base(name)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	token := dateToken.FindString(stem)
	if token == "" {
		return time.Time{}, &DateExtractionError{Name: name, Err: ErrNoDateToken}
	}

	date, err := time.Parse(time.DateOnly, token)
	if err != nil {
		return time.Time{}, &DateExtractionError{Name: name, Err: err}
	}
	return date, nil
}
