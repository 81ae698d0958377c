package service

import (
	"context"

	"go-blog-app/internal/data"
)

// ArticleRepository defines the database operations the services need on articles.
type ArticleRepository interface {
	GetByID(ctx context.Context, id int64) (*data.Article, error)
	ListPublished(ctx context.Context) ([]*data.Article, error)
	ListByCategories(ctx context.Context, categoryIDs []int64) ([]*data.Article, error)
	ListByTag(ctx context.Context, tagID int64) ([]*data.Article, error)
	Next(ctx context.Context, id int64) (*data.Article, error)
	Prev(ctx context.Context, id int64) (*data.Article, error)
	Recent(ctx context.Context, limit int) ([]*data.Article, error)
	MostViewed(ctx context.Context, limit int) ([]*data.Article, error)
	AddViews(ctx context.Context, views map[int64]int64) error
}

// CategoryRepository defines the database operations on categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*data.Category, error)
	GetBySlug(ctx context.Context, slug string) (*data.Category, error)
	Children(ctx context.Context, parentID int64) ([]*data.Category, error)
}

// TagRepository defines the database operations on tags.
type TagRepository interface {
	GetBySlug(ctx context.Context, slug string) (*data.Tag, error)
	ArticleCount(ctx context.Context, tagID int64) (int, error)
}

// CommentRepository defines the database operations on comments.
type CommentRepository interface {
	GetByID(ctx context.Context, id int64) (*data.Comment, error)
	ListEnabled(ctx context.Context, articleID int64) ([]*data.Comment, error)
	Recent(ctx context.Context, limit int) ([]*data.Comment, error)
	Create(ctx context.Context, comment *data.Comment) error
}

// SidebarRepository defines the reads behind the sidebar.
type SidebarRepository interface {
	EnabledBlocks(ctx context.Context) ([]*data.SideBar, error)
	LinksFor(ctx context.Context, showTypes []string) ([]*data.Link, error)
}

// SettingsRepository defines the database operations on BlogSettings.
type SettingsRepository interface {
	First(ctx context.Context) (*data.BlogSettings, error)
	CountExcluding(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, s *data.BlogSettings) error
	Update(ctx context.Context, s *data.BlogSettings) error
}

// UserRepository defines the database operations on users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*data.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatar string) error
}
