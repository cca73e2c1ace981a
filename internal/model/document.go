package model

import "time"

// DocType identifies which series a document feeds
type DocType string

const (
	DocStatement DocType = "statement" // Post-meeting policy statement
	DocMinutes   DocType = "minutes"   // Meeting minutes (sectioned)
)

// DocTypes lists the document types in output order
var DocTypes = []DocType{DocStatement, DocMinutes}

// Valid reports whether t is a known document type
func (t DocType) Valid() bool {
	return t == DocStatement || t == DocMinutes
}

// Label is the ternary sentiment class of a sentence
type Label int8

const (
	LabelNegative Label = -1
	LabelNeutral  Label = 0
	LabelPositive Label = 1
)

// Valid reports whether l is one of -1, 0, 1
func (l Label) Valid() bool {
	return l >= LabelNegative && l <= LabelPositive
}

func (l Label) String() string {
	switch l {
	case LabelNegative:
		return "negative"
	case LabelNeutral:
		return "neutral"
	case LabelPositive:
		return "positive"
	default:
		return "invalid"
	}
}

// Document is a local text file handed over by the fetcher.
// Name carries the filename metadata (date token and type hints).
type Document struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// SentenceRow is one detected sentence of one document
type SentenceRow struct {
	Date     time.Time `json:"date"`
	DocType  DocType   `json:"doc_type"`
	Section  string    `json:"section"`
	Sentence string    `json:"sentence"`
}

// LabeledRow is a SentenceRow with its predicted label attached
type LabeledRow struct {
	SentenceRow
	Label Label `json:"label"`
}

// Source is a discovered document that has not been downloaded yet
type Source struct {
	URL     string    `json:"url"`
	Date    time.Time `json:"date"`
	DocType DocType   `json:"doc_type"`
}
