//go:build unit

package service

import (
	"context"
	"fmt"
	"testing"

	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/markdown"
)

// newTestCache creates a new in-memory cache for testing.
func newTestCache(t *testing.T) (cache.Store, func()) {
	t.Helper()
	c, err := cache.New(config.CacheConfig{Driver: "sqlite", FilePath: "file::memory:"}, config.RedisConfig{})
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	teardown := func() {
		c.Close()
	}
	return c, teardown
}

// mockArticleRepository is a mock implementation of the ArticleRepository interface.
type mockArticleRepository struct {
	articles     map[int64]*data.Article
	errToReturn  error
	nextCalled   int
	prevCalled   int
	viewsWritten map[int64]int64
}

var _ ArticleRepository = (*mockArticleRepository)(nil)

func newMockArticleRepository(articles ...*data.Article) *mockArticleRepository {
	m := &mockArticleRepository{articles: make(map[int64]*data.Article), viewsWritten: make(map[int64]int64)}
	for _, a := range articles {
		m.articles[a.ID] = a
	}
	return m
}

func (m *mockArticleRepository) GetByID(ctx context.Context, id int64) (*data.Article, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	a, ok := m.articles[id]
	if !ok {
		return nil, fmt.Errorf("article %d: %w", id, data.ErrNotFound)
	}
	return a, nil
}

func (m *mockArticleRepository) ListPublished(ctx context.Context) ([]*data.Article, error) {
	var out []*data.Article
	for _, a := range m.articles {
		if a.Published() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockArticleRepository) ListByCategories(ctx context.Context, categoryIDs []int64) ([]*data.Article, error) {
	var out []*data.Article
	for _, a := range m.articles {
		for _, id := range categoryIDs {
			if a.CategoryID != nil && *a.CategoryID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *mockArticleRepository) ListByTag(ctx context.Context, tagID int64) ([]*data.Article, error) {
	return []*data.Article{}, nil
}

func (m *mockArticleRepository) Next(ctx context.Context, id int64) (*data.Article, error) {
	m.nextCalled++
	if a, ok := m.articles[id+1]; ok {
		return a, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockArticleRepository) Prev(ctx context.Context, id int64) (*data.Article, error) {
	m.prevCalled++
	if a, ok := m.articles[id-1]; ok {
		return a, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockArticleRepository) Recent(ctx context.Context, limit int) ([]*data.Article, error) {
	return []*data.Article{}, nil
}

func (m *mockArticleRepository) MostViewed(ctx context.Context, limit int) ([]*data.Article, error) {
	return []*data.Article{}, nil
}

func (m *mockArticleRepository) AddViews(ctx context.Context, views map[int64]int64) error {
	if m.errToReturn != nil {
		return m.errToReturn
	}
	for id, n := range views {
		m.viewsWritten[id] += n
	}
	return nil
}

// mockCategoryRepository is a mock implementation of the CategoryRepository interface.
type mockCategoryRepository struct {
	categories    map[int64]*data.Category
	getByIDCalled int
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func newMockCategoryRepository(categories ...*data.Category) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[int64]*data.Category)}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*data.Category, error) {
	m.getByIDCalled++
	c, ok := m.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, data.ErrNotFound)
	}
	return c, nil
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*data.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockCategoryRepository) Children(ctx context.Context, parentID int64) ([]*data.Category, error) {
	var out []*data.Category
	for id := int64(1); id <= int64(len(m.categories)); id++ {
		c := m.categories[id]
		if c != nil && c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

// mockTagRepository is a mock implementation of the TagRepository interface.
type mockTagRepository struct {
	count       int
	countCalled int
}

func (m *mockTagRepository) GetBySlug(ctx context.Context, slug string) (*data.Tag, error) {
	return &data.Tag{ID: 1, Name: slug, Slug: slug}, nil
}

func (m *mockTagRepository) ArticleCount(ctx context.Context, tagID int64) (int, error) {
	m.countCalled++
	return m.count, nil
}

// mockCommentRepository is a mock implementation of the CommentRepository interface.
type mockCommentRepository struct {
	comments   []*data.Comment
	listCalled int
}

var _ CommentRepository = (*mockCommentRepository)(nil)

func (m *mockCommentRepository) GetByID(ctx context.Context, id int64) (*data.Comment, error) {
	for _, c := range m.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockCommentRepository) ListEnabled(ctx context.Context, articleID int64) ([]*data.Comment, error) {
	m.listCalled++
	var out []*data.Comment
	for _, c := range m.comments {
		if c.ArticleID == articleID && c.IsEnable {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepository) Recent(ctx context.Context, limit int) ([]*data.Comment, error) {
	return m.comments, nil
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *data.Comment) error {
	comment.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, comment)
	return nil
}

// mockSidebarRepository is a mock implementation of the SidebarRepository interface.
type mockSidebarRepository struct {
	linksCalled   int
	lastShowTypes []string
}

func (m *mockSidebarRepository) EnabledBlocks(ctx context.Context) ([]*data.SideBar, error) {
	return []*data.SideBar{{ID: 1, Name: "about", Content: "<p>hi</p>", IsEnable: true}}, nil
}

func (m *mockSidebarRepository) LinksFor(ctx context.Context, showTypes []string) ([]*data.Link, error) {
	m.linksCalled++
	m.lastShowTypes = showTypes
	return []*data.Link{}, nil
}

// mockSettingsRepository is a mock implementation of the SettingsRepository interface.
type mockSettingsRepository struct {
	rows        []*data.BlogSettings
	firstCalled int
}

var _ SettingsRepository = (*mockSettingsRepository)(nil)

func (m *mockSettingsRepository) First(ctx context.Context) (*data.BlogSettings, error) {
	m.firstCalled++
	if len(m.rows) == 0 {
		return nil, data.ErrNotFound
	}
	return m.rows[0], nil
}

func (m *mockSettingsRepository) CountExcluding(ctx context.Context, id int64) (int, error) {
	n := 0
	for _, r := range m.rows {
		if r.ID != id {
			n++
		}
	}
	return n, nil
}

func (m *mockSettingsRepository) Create(ctx context.Context, s *data.BlogSettings) error {
	s.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, s)
	return nil
}

func (m *mockSettingsRepository) Update(ctx context.Context, s *data.BlogSettings) error {
	for i, r := range m.rows {
		if r.ID == s.ID {
			m.rows[i] = s
			return nil
		}
	}
	return data.ErrNotFound
}

// testBlog bundles a BlogService with its mocks.
type testBlog struct {
	svc        *BlogService
	store      cache.Store
	articles   *mockArticleRepository
	categories *mockCategoryRepository
	tags       *mockTagRepository
	comments   *mockCommentRepository
	sidebars   *mockSidebarRepository
	settings   *mockSettingsRepository
}

func newTestBlog(t *testing.T, articles *mockArticleRepository, categories *mockCategoryRepository) (*testBlog, func()) {
	t.Helper()
	store, teardown := newTestCache(t)
	log := logger.Nop()
	tb := &testBlog{
		store:      store,
		articles:   articles,
		categories: categories,
		tags:       &mockTagRepository{},
		comments:   &mockCommentRepository{},
		sidebars:   &mockSidebarRepository{},
		settings:   &mockSettingsRepository{},
	}
	settings := NewSettingsService(tb.settings, store, cache.NewInvalidator(store, log), log)
	tb.svc = NewBlogService(Repositories{
		Articles:   articles,
		Categories: categories,
		Tags:       tb.tags,
		Comments:   tb.comments,
		Sidebars:   tb.sidebars,
	}, store, settings, NewViewCounter(articles, log), markdown.New(), log)
	return tb, teardown
}
