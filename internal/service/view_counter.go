package service

import (
	"context"
	"fmt"
	"sync"

	"go-blog-app/internal/logger"
)

// viewStore persists accumulated view counts.
type viewStore interface {
	AddViews(ctx context.Context, views map[int64]int64) error
}

// ViewCounter queues article views in memory and writes them in batches.
type ViewCounter struct {
	mu      sync.Mutex
	pending map[int64]int64
	repo    viewStore
	log     logger.Logger
}

// NewViewCounter creates a ViewCounter flushing into repo.
func NewViewCounter(repo viewStore, log logger.Logger) *ViewCounter {
	return &ViewCounter{pending: make(map[int64]int64), repo: repo, log: log}
}

// Add records one view of an article.
func (v *ViewCounter) Add(articleID int64) {
	v.mu.Lock()
	v.pending[articleID]++
	v.mu.Unlock()
}

// Pending returns the views of an article not yet written.
func (v *ViewCounter) Pending(articleID int64) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending[articleID]
}

// Flush writes all queued views. On failure the counts are queued again.
func (v *ViewCounter) Flush(ctx context.Context) error {
	v.mu.Lock()
	batch := v.pending
	v.pending = make(map[int64]int64)
	v.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := v.repo.AddViews(ctx, batch); err != nil {
		v.mu.Lock()
		for id, n := range batch {
			v.pending[id] += n
		}
		v.mu.Unlock()
		return fmt.Errorf("failed to flush article views: %w", err)
	}
	v.log.Debug(fmt.Sprintf("flushed views for %d articles", len(batch)))
	return nil
}
