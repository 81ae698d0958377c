package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
)

// FragmentKey names a cached rendering fragment varied on the given values.
func FragmentKey(name string, vary ...string) string {
	sum := md5.Sum([]byte(strings.Join(vary, ":")))
	return fmt.Sprintf("template.cache.%s.%s", name, hex.EncodeToString(sum[:]))
}

// Invalidator deletes derived cache entries when the data behind them changes.
type Invalidator struct {
	store Store
	log   logger.Logger
}

// NewInvalidator creates an Invalidator over store.
func NewInvalidator(store Store, log logger.Logger) *Invalidator {
	return &Invalidator{store: store, log: log}
}

// DeleteFragments deletes FragmentKey(name, id+suffix) for every suffix.
// All deletes are attempted; the first error is returned.
func (i *Invalidator) DeleteFragments(ctx context.Context, name, id string, suffixes []string) error {
	var first error
	for _, suffix := range suffixes {
		key := FragmentKey(name, id+suffix)
		i.log.Debug(fmt.Sprintf("delete %s fragment key: %s", name, key))
		if err := i.store.Delete(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SidebarKey names the rendered sidebar for a user and link show type.
func SidebarKey(username, showType string) string {
	return FragmentKey("sidebar", username+showType)
}

// DeleteSidebar deletes the sidebar fragments of username for every link show type.
func (i *Invalidator) DeleteSidebar(ctx context.Context, username string) error {
	return i.DeleteFragments(ctx, "sidebar", username, data.ShowTypeCodes())
}

// Clear empties the whole store.
func (i *Invalidator) Clear(ctx context.Context) error {
	i.log.Info("clearing cache")
	return i.store.Clear(ctx)
}
