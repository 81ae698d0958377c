package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// TagRepository handles database operations for tags.
type TagRepository struct {
	DB *sqlx.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{DB: db}
}

const tagColumns = `id, name, slug, created_time, last_mod_time`

// GetBySlug finds a tag by its slug.
func (r *TagRepository) GetBySlug(ctx context.Context, slug string) (*Tag, error) {
	var tag Tag
	if err := r.DB.GetContext(ctx, &tag, "SELECT "+tagColumns+" FROM tags WHERE slug = ? ORDER BY id LIMIT 1", slug); err != nil {
		return nil, wrapGet(err, fmt.Sprintf("tag %q", slug))
	}
	return &tag, nil
}

// GetAll retrieves all tags ordered by name.
func (r *TagRepository) GetAll(ctx context.Context) ([]*Tag, error) {
	var tags []*Tag
	if err := r.DB.SelectContext(ctx, &tags, "SELECT "+tagColumns+" FROM tags ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

// Save inserts a tag, deriving its slug from the name, and returns its ID.
func (r *TagRepository) Save(ctx context.Context, tag *Tag) (int64, error) {
	now := time.Now().UTC()
	tag.Slug = Slugify(tag.Name)
	tag.CreatedAt = now
	tag.LastModTime = now
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO tags (name, slug, created_time, last_mod_time) VALUES (:name, :slug, :created_time, :last_mod_time)`, tag)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	tag.ID = id
	return id, nil
}

// ArticleCount counts the distinct published posts carrying the tag.
func (r *TagRepository) ArticleCount(ctx context.Context, tagID int64) (int, error) {
	var n int
	query := `SELECT COUNT(DISTINCT a.id) FROM articles a
		JOIN article_tags at ON at.article_id = a.id
		WHERE at.tag_id = ? AND a.status = 'p' AND a.type = 'a'`
	if err := r.DB.GetContext(ctx, &n, query, tagID); err != nil {
		return 0, fmt.Errorf("failed to count tag articles: %w", err)
	}
	return n, nil
}
