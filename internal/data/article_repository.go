package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

// SQLArticleRepository stores articles and their tag links using sqlx.
type SQLArticleRepository struct {
	db *sqlx.DB
}

// NewSQLArticleRepository creates a new SQLArticleRepository.
func NewSQLArticleRepository(db *sqlx.DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

const articleColumns = `id, title, body, pub_time, status, comment_status, type, views, author_id,
	article_order, category_id, created_time, last_mod_time`

// publishedPosts restricts a query to visible blog posts.
const publishedPosts = `status = 'p' AND type = 'a'`

// GetByID retrieves a single article with its tags.
func (r *SQLArticleRepository) GetByID(ctx context.Context, id int64) (*Article, error) {
	var article Article
	if err := r.db.GetContext(ctx, &article, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id); err != nil {
		return nil, wrapGet(err, fmt.Sprintf("article %d", id))
	}
	tags, err := r.TagsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Tags = tags
	return &article, nil
}

// Create inserts a new article and sets its ID.
func (r *SQLArticleRepository) Create(ctx context.Context, article *Article) error {
	now := time.Now().UTC()
	if article.PubTime.IsZero() {
		article.PubTime = now
	}
	article.PubTime = article.PubTime.UTC()
	article.CreatedAt = now
	article.LastModTime = now
	if article.Status == "" {
		article.Status = StatusPublished
	}
	if article.CommentStatus == "" {
		article.CommentStatus = CommentOpen
	}
	if article.Type == "" {
		article.Type = TypeArticle
	}

	query := `INSERT INTO articles (title, body, pub_time, status, comment_status, type, views, author_id,
		article_order, category_id, created_time, last_mod_time)
		VALUES (:title, :body, :pub_time, :status, :comment_status, :type, :views, :author_id,
		:article_order, :category_id, :created_time, :last_mod_time)`
	res, err := r.db.NamedExecContext(ctx, query, article)
	if err != nil {
		return fmt.Errorf("failed to execute create article query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read article id: %w", err)
	}
	article.ID = id
	return nil
}

// Update updates an existing article.
func (r *SQLArticleRepository) Update(ctx context.Context, article *Article) error {
	article.LastModTime = time.Now().UTC()
	query := `UPDATE articles SET title = :title, body = :body, pub_time = :pub_time, status = :status,
		comment_status = :comment_status, type = :type, article_order = :article_order,
		category_id = :category_id, last_mod_time = :last_mod_time WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, article)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("article %d: %w", article.ID, ErrNotFound)
	}
	return nil
}

// ListPublished returns published posts ordered for display.
func (r *SQLArticleRepository) ListPublished(ctx context.Context) ([]*Article, error) {
	var articles []*Article
	query := "SELECT " + articleColumns + " FROM articles WHERE " + publishedPosts + " ORDER BY article_order DESC, pub_time DESC"
	if err := r.db.SelectContext(ctx, &articles, query); err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	return articles, nil
}

// ListByCategories returns published posts filed under any of the categories.
func (r *SQLArticleRepository) ListByCategories(ctx context.Context, categoryIDs []int64) ([]*Article, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+articleColumns+" FROM articles WHERE "+publishedPosts+
		" AND category_id IN (?) ORDER BY article_order DESC, pub_time DESC", categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}
	var articles []*Article
	if err := r.db.SelectContext(ctx, &articles, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list articles by category: %w", err)
	}
	return articles, nil
}

// ListByTag returns published posts carrying the tag.
func (r *SQLArticleRepository) ListByTag(ctx context.Context, tagID int64) ([]*Article, error) {
	var articles []*Article
	query := `SELECT a.id, a.title, a.body, a.pub_time, a.status, a.comment_status, a.type, a.views, a.author_id,
		a.article_order, a.category_id, a.created_time, a.last_mod_time
		FROM articles a JOIN article_tags at ON at.article_id = a.id
		WHERE at.tag_id = ? AND a.status = 'p' AND a.type = 'a'
		ORDER BY a.article_order DESC, a.pub_time DESC`
	if err := r.db.SelectContext(ctx, &articles, query, tagID); err != nil {
		return nil, fmt.Errorf("failed to list articles by tag: %w", err)
	}
	return articles, nil
}

// Next returns the published post with the smallest id greater than id.
func (r *SQLArticleRepository) Next(ctx context.Context, id int64) (*Article, error) {
	var article Article
	query := "SELECT " + articleColumns + " FROM articles WHERE id > ? AND status = 'p' ORDER BY id LIMIT 1"
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		return nil, wrapGet(err, fmt.Sprintf("article after %d", id))
	}
	return &article, nil
}

// Prev returns the published post with the largest id smaller than id. It is
// the nearest earlier article by id; article_order does not move it.
func (r *SQLArticleRepository) Prev(ctx context.Context, id int64) (*Article, error) {
	var article Article
	query := "SELECT " + articleColumns + " FROM articles WHERE id < ? AND status = 'p' ORDER BY id DESC LIMIT 1"
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		return nil, wrapGet(err, fmt.Sprintf("article before %d", id))
	}
	return &article, nil
}

// Recent returns the latest published posts.
func (r *SQLArticleRepository) Recent(ctx context.Context, limit int) ([]*Article, error) {
	var articles []*Article
	query := "SELECT " + articleColumns + " FROM articles WHERE " + publishedPosts + " ORDER BY pub_time DESC LIMIT ?"
	if err := r.db.SelectContext(ctx, &articles, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent articles: %w", err)
	}
	return articles, nil
}

// MostViewed returns the published posts with the highest view counts.
func (r *SQLArticleRepository) MostViewed(ctx context.Context, limit int) ([]*Article, error) {
	var articles []*Article
	query := "SELECT " + articleColumns + " FROM articles WHERE " + publishedPosts + " ORDER BY views DESC, id LIMIT ?"
	if err := r.db.SelectContext(ctx, &articles, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list most viewed articles: %w", err)
	}
	return articles, nil
}

// AddViews increments view counters in a single transaction.
func (r *SQLArticleRepository) AddViews(ctx context.Context, views map[int64]int64) error {
	if len(views) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE articles SET views = views + ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare view update: %w", err)
	}
	defer stmt.Close()

	for id, n := range views {
		if _, err := stmt.ExecContext(ctx, n, id); err != nil {
			return fmt.Errorf("failed to add views to article %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// TagsFor returns the tags of an article ordered by name.
func (r *SQLArticleRepository) TagsFor(ctx context.Context, articleID int64) ([]*Tag, error) {
	var tags []*Tag
	query := `SELECT t.id, t.name, t.slug, t.created_time, t.last_mod_time FROM tags t
		JOIN article_tags at ON at.tag_id = t.id WHERE at.article_id = ? ORDER BY t.name`
	if err := r.db.SelectContext(ctx, &tags, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to get article tags: %w", err)
	}
	return tags, nil
}

// SetTags replaces the tag links of an article.
func (r *SQLArticleRepository) SetTags(ctx context.Context, articleID int64, tagIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear article tags: %w", err)
	}
	for _, tagID := range lo.Uniq(tagIDs) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?)`, articleID, tagID); err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tagID, err)
		}
	}
	return tx.Commit()
}
