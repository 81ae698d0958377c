package service

import (
	"context"
	"errors"
	"fmt"

	"go-blog-app/internal/cache"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
)

// settingsCacheKey holds the cached BlogSettings record.
const settingsCacheKey = "get_blog_setting"

// SettingsService reads and writes the site-wide BlogSettings record.
type SettingsService struct {
	repo  SettingsRepository
	store cache.Store
	inv   *cache.Invalidator
	log   logger.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo SettingsRepository, store cache.Store, inv *cache.Invalidator, log logger.Logger) *SettingsService {
	return &SettingsService{repo: repo, store: store, inv: inv, log: log}
}

// GetSettings returns the cached settings record, creating it with defaults on
// first use.
func (s *SettingsService) GetSettings(ctx context.Context) (*data.BlogSettings, error) {
	cached, err := cache.Load[*data.BlogSettings](ctx, s.store, settingsCacheKey)
	if err != nil {
		s.log.Error(err, "failed to read cached blog settings")
	} else if v, ok := cached.Get(); ok && v != nil {
		return v, nil
	}

	settings, err := s.repo.First(ctx)
	if errors.Is(err, data.ErrNotFound) {
		s.log.Info("no blog settings found, creating defaults")
		settings = data.DefaultBlogSettings()
		if err := s.repo.Create(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to create default blog settings: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if err := cache.Put(ctx, s.store, settingsCacheKey, settings, 0); err != nil {
		s.log.Error(err, "failed to cache blog settings")
	}
	return settings, nil
}

// SaveSettings stores settings and clears the whole cache, since every cached
// fragment may depend on them. Creating a second record fails with
// ErrSettingsSingleton.
func (s *SettingsService) SaveSettings(ctx context.Context, settings *data.BlogSettings) error {
	others, err := s.repo.CountExcluding(ctx, settings.ID)
	if err != nil {
		return err
	}
	if others > 0 {
		return ErrSettingsSingleton
	}

	if settings.ID == 0 {
		err = s.repo.Create(ctx, settings)
	} else {
		err = s.repo.Update(ctx, settings)
	}
	if err != nil {
		return err
	}

	if err := s.inv.Clear(ctx); err != nil {
		s.log.Error(err, "failed to clear cache after saving settings")
	}
	return nil
}
