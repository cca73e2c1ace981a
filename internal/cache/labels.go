package cache

import (
	"sync/atomic"
	"time"

	"github.com/ppiankov/hawkdove/internal/model"
)

// LabelCache stores predicted labels keyed by predictor name and sentence text
type LabelCache struct {
	store     Cache
	namespace string
	ttl       time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLabelCache wraps a byte cache. The namespace is usually the predictor
// name so labels from different models never mix.
func NewLabelCache(store Cache, namespace string, ttl time.Duration) *LabelCache {
	return &LabelCache{store: store, namespace: namespace, ttl: ttl}
}

// Get returns the cached label of a sentence
func (c *LabelCache) Get(sentence string) (model.Label, bool) {
	val, ok := c.store.Get(Key(c.namespace, sentence))
	if !ok || len(val) != 1 {
		c.misses.Add(1)
		return 0, false
	}

	label := model.Label(int8(val[0]))
	if !label.Valid() {
		c.misses.Add(1)
		return 0, false
	}
	c.hits.Add(1)
	return label, true
}

// Set caches the label of a sentence
func (c *LabelCache) Set(sentence string, label model.Label) error {
	return c.store.Set(Key(c.namespace, sentence), []byte{byte(label)}, c.ttl)
}

// Stats returns the hit and miss counts since creation
func (c *LabelCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
