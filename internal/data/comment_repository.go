package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CommentRepository handles database operations for comments.
type CommentRepository struct {
	DB *sqlx.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

const commentColumns = `id, body, article_id, author_id, name, email, url, parent_id, is_enable, created_time`

// GetByID finds a comment by its ID.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	var comment Comment
	if err := r.DB.GetContext(ctx, &comment, "SELECT "+commentColumns+" FROM comments WHERE id = ?", id); err != nil {
		return nil, wrapGet(err, fmt.Sprintf("comment %d", id))
	}
	return &comment, nil
}

// ListEnabled returns the visible comments of an article, oldest first.
func (r *CommentRepository) ListEnabled(ctx context.Context, articleID int64) ([]*Comment, error) {
	var comments []*Comment
	query := "SELECT " + commentColumns + " FROM comments WHERE article_id = ? AND is_enable = 1 ORDER BY id"
	if err := r.DB.SelectContext(ctx, &comments, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Recent returns the latest visible comments across the site.
func (r *CommentRepository) Recent(ctx context.Context, limit int) ([]*Comment, error) {
	var comments []*Comment
	query := "SELECT " + commentColumns + " FROM comments WHERE is_enable = 1 ORDER BY id DESC LIMIT ?"
	if err := r.DB.SelectContext(ctx, &comments, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent comments: %w", err)
	}
	return comments, nil
}

// Create inserts a comment and sets its ID.
func (r *CommentRepository) Create(ctx context.Context, comment *Comment) error {
	comment.CreatedAt = time.Now().UTC()
	query := `INSERT INTO comments (body, article_id, author_id, name, email, url, parent_id, is_enable, created_time)
		VALUES (:body, :article_id, :author_id, :name, :email, :url, :parent_id, :is_enable, :created_time)`
	res, err := r.DB.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}
