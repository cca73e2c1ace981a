package adapters

import (
	"testing"

	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/segment"
)

func TestRegistry_FindAdapter(t *testing.T) {
	registry := NewRegistry(nil)

	tests := []struct {
		name        string
		wantAdapter string
		wantType    model.DocType
	}{
		{"2023-11-01_statement_ab12cd34ef.txt", "statement", model.DocStatement},
		{"monetary20231101a1_2023-11-01.txt", "statement", model.DocStatement},
		{"2023-11-01_minutes_ab12cd34ef.txt", "minutes", model.DocMinutes},
		{"FOMC_Minutes_2023-11-01.txt", "minutes-presplit", model.DocMinutes},
		{"FOMC_SEO_2023-10-31.txt", "minutes-presplit", model.DocMinutes},
		{"fomcminutes20231101.txt", "minutes", model.DocMinutes},
		{"/data/text/RMPSTC_2023-10-31.txt", "minutes", model.DocMinutes},
		{"fomc_statement_2023-11-01.txt", "statement", model.DocStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := registry.FindAdapter(tt.name)
			if adapter.Name() != tt.wantAdapter {
				t.Errorf("FindAdapter(%q) = %s, want %s", tt.name, adapter.Name(), tt.wantAdapter)
			}
			if adapter.DocType() != tt.wantType {
				t.Errorf("FindAdapter(%q).DocType() = %s, want %s", tt.name, adapter.DocType(), tt.wantType)
			}
		})
	}
}

func TestPreSplitMinutesAdapter_Tag(t *testing.T) {
	adapter := NewPreSplitMinutesAdapter()

	tests := map[string]string{
		"FOMC_SEO_2023-10-31.txt":      "SEO",
		"fomc_rmpstc_2023-10-31.txt":   "RMPSTC",
		"/tmp/FOMC_minutes_2023-10-31": "MINUTES",
		"fomc_.txt":                    DefaultPreSplitTag,
		"fomcminutes.txt":              DefaultPreSplitTag,
	}
	for name, want := range tests {
		if got := adapter.Tag(name); got != want {
			t.Errorf("Tag(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestPreSplitMinutesAdapter_SingleSection(t *testing.T) {
	adapter := NewPreSplitMinutesAdapter()
	text := "Committee Policy Action\nRates were held. Staff Economic Outlook was revised."

	sections := adapter.Sections("FOMC_SEO_2023-10-31.txt", text)
	if len(sections) != 1 {
		t.Fatalf("expected the section splitter to be bypassed, got %d sections", len(sections))
	}
	if sections[0].Title != "SEO" {
		t.Errorf("title = %q, want SEO", sections[0].Title)
	}
	if len(sections[0].Sentences) != 2 {
		t.Errorf("expected 2 sentences, got %d: %q", len(sections[0].Sentences), sections[0].Sentences)
	}
}

func TestMinutesAdapter_UsesSplitter(t *testing.T) {
	splitter := segment.NewSectionSplitter(nil, segment.DuplicateAppend)
	adapter := NewMinutesAdapter(splitter)

	sections := adapter.Sections("minutes.txt", "Intro.\nImplementation Note\nA.\nImplementation Note\nB.")
	if len(sections) != 2 {
		t.Fatalf("expected preamble + 1 merged section, got %d", len(sections))
	}
	if got := len(sections[1].Sentences); got != 2 {
		t.Errorf("append policy should keep both bodies, got %d sentences", got)
	}
}

func TestStatementAdapter(t *testing.T) {
	sections := NewStatementAdapter().Sections("statement.txt", "Growth slowed. Inflation eased.")
	if len(sections) != 1 || sections[0].Title != StatementSection {
		t.Fatalf("expected one %q section, got %+v", StatementSection, sections)
	}
	if len(sections[0].Sentences) != 2 {
		t.Errorf("expected 2 sentences, got %d", len(sections[0].Sentences))
	}
}
