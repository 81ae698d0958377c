package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SettingsRepository persists the BlogSettings record.
type SettingsRepository struct {
	DB *sqlx.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// First returns the settings row with the lowest id.
func (r *SettingsRepository) First(ctx context.Context) (*BlogSettings, error) {
	var s BlogSettings
	if err := r.DB.GetContext(ctx, &s, "SELECT * FROM blog_settings ORDER BY id LIMIT 1"); err != nil {
		return nil, wrapGet(err, "blog settings")
	}
	return &s, nil
}

// CountExcluding counts settings rows whose id differs from id.
func (r *SettingsRepository) CountExcluding(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM blog_settings WHERE id <> ?", id); err != nil {
		return 0, fmt.Errorf("failed to count blog settings: %w", err)
	}
	return n, nil
}

// Create inserts s and sets its ID.
func (r *SettingsRepository) Create(ctx context.Context, s *BlogSettings) error {
	query := `INSERT INTO blog_settings (sitename, site_description, site_seo_description, site_keywords,
		article_sub_length, sidebar_article_count, sidebar_comment_count, show_google_adsense,
		google_adsense_codes, open_site_comment, analytics_code, footer_title, resource_path,
		show_views_bar, show_category_bar, show_search_bar, show_menu_bar)
		VALUES (:sitename, :site_description, :site_seo_description, :site_keywords,
		:article_sub_length, :sidebar_article_count, :sidebar_comment_count, :show_google_adsense,
		:google_adsense_codes, :open_site_comment, :analytics_code, :footer_title, :resource_path,
		:show_views_bar, :show_category_bar, :show_search_bar, :show_menu_bar)`
	res, err := r.DB.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to insert blog settings: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Update overwrites the row identified by s.ID.
func (r *SettingsRepository) Update(ctx context.Context, s *BlogSettings) error {
	query := `UPDATE blog_settings SET sitename = :sitename, site_description = :site_description,
		site_seo_description = :site_seo_description, site_keywords = :site_keywords,
		article_sub_length = :article_sub_length, sidebar_article_count = :sidebar_article_count,
		sidebar_comment_count = :sidebar_comment_count, show_google_adsense = :show_google_adsense,
		google_adsense_codes = :google_adsense_codes, open_site_comment = :open_site_comment,
		analytics_code = :analytics_code, footer_title = :footer_title, resource_path = :resource_path,
		show_views_bar = :show_views_bar, show_category_bar = :show_category_bar,
		show_search_bar = :show_search_bar, show_menu_bar = :show_menu_bar
		WHERE id = :id`
	res, err := r.DB.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to update blog settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("blog settings %d: %w", s.ID, ErrNotFound)
	}
	return nil
}
