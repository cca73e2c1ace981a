package model

import "time"

// Report represents the complete result of one index build.
// Every build recomputes the full history; nothing is carried over between runs.
type Report struct {
	RunID   string    `json:"run_id"`   // Unique id of this build
	BuiltAt time.Time `json:"built_at"` // When the build finished

	Documents int             `json:"documents"`         // Documents that produced rows
	Sentences int             `json:"sentences"`         // Labeled sentences fed to the aggregator
	Skipped   []SkippedSource `json:"skipped,omitempty"` // Documents rejected by the row builder

	Predictor string `json:"predictor"` // Label predictor name

	Series Series `json:"series"` // Per-type daily/monthly/quarterly series

	HeadlineMonthly   []Headline `json:"headline_monthly"`
	HeadlineQuarterly []Headline `json:"headline_quarterly"`
	Latest            *Headline  `json:"latest,omitempty"` // Most recent monthly headline
}

// SkippedSource records a document that could not be turned into rows
type SkippedSource struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
