package store

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/model"
)

// Reader is the read side of the Store served over HTTP
type Reader interface {
	Headlines(ctx context.Context, freq model.Frequency) ([]model.Headline, error)
	Latest(ctx context.Context) (*model.Headline, error)
	Series(ctx context.Context, docType model.DocType, freq model.Frequency) ([]model.Aggregate, error)
	LastRun(ctx context.Context) (*Run, error)
}

var _ Reader = (*Store)(nil)

type pointJSON struct {
	Date     string   `json:"date"`
	Score    float64  `json:"score"`
	Index    *int     `json:"index_0_100,omitempty"`
	Positive *float64 `json:"positive,omitempty"`
	Neutral  *float64 `json:"neutral,omitempty"`
	Negative *float64 `json:"negative,omitempty"`
	Count    int      `json:"count,omitempty"`
}

// NewRouter builds the read-only index API
func NewRouter(r Reader, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		run, err := r.LastRun(c.Request.Context())
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusOK, gin.H{"status": "ok", "last_run": nil})
		case err != nil:
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "ok", "last_run": run})
		}
	})

	api := router.Group("/api")
	{
		api.GET("/index", func(c *gin.Context) {
			freq, ok := parseFreq(c, model.Monthly)
			if !ok {
				return
			}
			if freq == model.Daily {
				c.JSON(http.StatusBadRequest, gin.H{"error": "headline index is monthly or quarterly"})
				return
			}
			headlines, err := r.Headlines(c.Request.Context(), freq)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, headlinePoints(headlines))
		})

		api.GET("/latest", func(c *gin.Context) {
			latest, err := r.Latest(c.Request.Context())
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no index built yet"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, headlinePoints([]model.Headline{*latest}))
		})

		api.GET("/series/:doc_type", func(c *gin.Context) {
			docType := model.DocType(c.Param("doc_type"))
			if !docType.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "doc_type must be statement or minutes"})
				return
			}
			freq, ok := parseFreq(c, model.Monthly)
			if !ok {
				return
			}
			series, err := r.Series(c.Request.Context(), docType, freq)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, aggregatePoints(series))
		})
	}

	return router
}

func parseFreq(c *gin.Context, def model.Frequency) (model.Frequency, bool) {
	raw := c.Query("freq")
	if raw == "" {
		return def, true
	}
	freq, ok := model.ParseFrequency(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "freq must be daily, monthly or quarterly"})
		return "", false
	}
	return freq, true
}

func headlinePoints(headlines []model.Headline) []pointJSON {
	out := make([]pointJSON, 0, len(headlines))
	for _, h := range headlines {
		index := h.Index
		out = append(out, pointJSON{Date: h.Date.Format(time.DateOnly), Score: h.Score, Index: &index})
	}
	return out
}

func aggregatePoints(series []model.Aggregate) []pointJSON {
	out := make([]pointJSON, 0, len(series))
	for _, a := range series {
		pos, neu, neg := a.Positive, a.Neutral, a.Negative
		out = append(out, pointJSON{
			Date:     a.Date.Format(time.DateOnly),
			Score:    a.Score,
			Positive: &pos,
			Neutral:  &neu,
			Negative: &neg,
			Count:    a.Count,
		})
	}
	return out
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
