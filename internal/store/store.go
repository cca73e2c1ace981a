// Package store persists built index tables in sqlite for the read API.
// Each Save replaces the previous tables; only the run log accumulates.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ppiankov/hawkdove/internal/model"
)

// ErrNotFound is returned when a query has no rows
var ErrNotFound = errors.New("not found")

// Run is one recorded index build
type Run struct {
	RunID     string    `json:"run_id" gorm:"primaryKey"`
	BuiltAt   time.Time `json:"built_at" gorm:"index"`
	Documents int       `json:"documents"`
	Sentences int       `json:"sentences"`
	Skipped   int       `json:"skipped"`
	Predictor string    `json:"predictor"`
}

// HeadlineRow is one combined index point
type HeadlineRow struct {
	ID    uint            `gorm:"primaryKey"`
	RunID string          `gorm:"index"`
	Freq  model.Frequency `gorm:"uniqueIndex:idx_headline_period"`
	Date  time.Time       `gorm:"uniqueIndex:idx_headline_period"`
	Score float64
	Index int `gorm:"column:index_0_100"`
}

// AggregateRow is one point of a per-type series
type AggregateRow struct {
	ID       uint            `gorm:"primaryKey"`
	RunID    string          `gorm:"index"`
	DocType  model.DocType   `gorm:"uniqueIndex:idx_aggregate_period"`
	Freq     model.Frequency `gorm:"uniqueIndex:idx_aggregate_period"`
	Date     time.Time       `gorm:"uniqueIndex:idx_aggregate_period"`
	Score    float64
	Positive float64
	Neutral  float64
	Negative float64
	Count    int
}

// Store wraps the sqlite database
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the database at path, creating its directory
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Run{}, &HeadlineRow{}, &AggregateRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save replaces the stored tables with the report's and records the run
func (s *Store) Save(ctx context.Context, report *model.Report) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&HeadlineRow{}).Error; err != nil {
			return fmt.Errorf("clear headlines: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&AggregateRow{}).Error; err != nil {
			return fmt.Errorf("clear aggregates: %w", err)
		}

		var headlines []HeadlineRow
		for _, h := range report.HeadlineMonthly {
			headlines = append(headlines, headlineRow(report.RunID, model.Monthly, h))
		}
		for _, h := range report.HeadlineQuarterly {
			headlines = append(headlines, headlineRow(report.RunID, model.Quarterly, h))
		}
		if len(headlines) > 0 {
			if err := tx.Create(&headlines).Error; err != nil {
				return fmt.Errorf("insert headlines: %w", err)
			}
		}

		var aggregates []AggregateRow
		for _, docType := range model.DocTypes {
			ts := report.Series.Of(docType)
			for _, freq := range []model.Frequency{model.Daily, model.Monthly, model.Quarterly} {
				for _, a := range ts.At(freq) {
					aggregates = append(aggregates, aggregateRow(report.RunID, freq, a))
				}
			}
		}
		if len(aggregates) > 0 {
			if err := tx.CreateInBatches(&aggregates, 200).Error; err != nil {
				return fmt.Errorf("insert aggregates: %w", err)
			}
		}

		run := Run{
			RunID:     report.RunID,
			BuiltAt:   report.BuiltAt.UTC(),
			Documents: report.Documents,
			Sentences: report.Sentences,
			Skipped:   len(report.Skipped),
			Predictor: report.Predictor,
		}
		if err := tx.Save(&run).Error; err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		return nil
	})
}

// Headlines returns the combined index at freq, oldest first
func (s *Store) Headlines(ctx context.Context, freq model.Frequency) ([]model.Headline, error) {
	var rows []HeadlineRow
	err := s.db.WithContext(ctx).
		Where("freq = ?", freq).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.Headline, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Headline{Date: r.Date.UTC(), Score: r.Score, Index: r.Index})
	}
	return out, nil
}

// Latest returns the most recent monthly headline
func (s *Store) Latest(ctx context.Context) (*model.Headline, error) {
	var row HeadlineRow
	err := s.db.WithContext(ctx).
		Where("freq = ?", model.Monthly).
		Order("date DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &model.Headline{Date: row.Date.UTC(), Score: row.Score, Index: row.Index}, nil
}

// Series returns one document type's series at freq, oldest first
func (s *Store) Series(ctx context.Context, docType model.DocType, freq model.Frequency) ([]model.Aggregate, error) {
	var rows []AggregateRow
	err := s.db.WithContext(ctx).
		Where("doc_type = ? AND freq = ?", docType, freq).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.Aggregate, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Aggregate{
			Date:     r.Date.UTC(),
			DocType:  r.DocType,
			Score:    r.Score,
			Positive: r.Positive,
			Neutral:  r.Neutral,
			Negative: r.Negative,
			Count:    r.Count,
		})
	}
	return out, nil
}

// LastRun returns the most recent build
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Order("built_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func headlineRow(runID string, freq model.Frequency, h model.Headline) HeadlineRow {
	return HeadlineRow{RunID: runID, Freq: freq, Date: h.Date.UTC(), Score: h.Score, Index: h.Index}
}

func aggregateRow(runID string, freq model.Frequency, a model.Aggregate) AggregateRow {
	return AggregateRow{
		RunID:    runID,
		DocType:  a.DocType,
		Freq:     freq,
		Date:     a.Date.UTC(),
		Score:    a.Score,
		Positive: a.Positive,
		Neutral:  a.Neutral,
		Negative: a.Negative,
		Count:    a.Count,
	}
}
