package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go-blog-app/internal/cache"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/markdown"
	"go-blog-app/internal/tree"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	neighbourTTL = 100 * time.Minute
	commentsTTL  = 100 * time.Minute
	treeTTL      = 10 * time.Hour
	sidebarTTL   = 10 * time.Hour
)

// Repositories groups the data access the blog service depends on.
type Repositories struct {
	Articles   ArticleRepository
	Categories CategoryRepository
	Tags       TagRepository
	Comments   CommentRepository
	Sidebars   SidebarRepository
}

// Crumb is one step of a category breadcrumb.
type Crumb struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ArticleDetail is an article with everything shown alongside it.
type ArticleDetail struct {
	Article      *data.Article
	HTML         string
	Views        int64
	CategoryTree []Crumb
	Next         *data.Article
	Prev         *data.Article
	Comments     []*data.Comment
}

// CategoryDetail is a category page.
type CategoryDetail struct {
	Category      *data.Category
	Breadcrumbs   []Crumb
	SubCategories []*data.Category
	Articles      []*data.Article
}

// TagDetail is a tag page.
type TagDetail struct {
	Tag          *data.Tag
	ArticleCount int
	Articles     []*data.Article
}

// BlogServicer defines the read and comment operations exposed over HTTP.
type BlogServicer interface {
	GetArticle(ctx context.Context, id int64) (*ArticleDetail, error)
	CategoryDetail(ctx context.Context, slug string) (*CategoryDetail, error)
	TagDetail(ctx context.Context, slug string) (*TagDetail, error)
	PostComment(ctx context.Context, articleID int64, form CommentForm) (*data.Comment, error)
	Sidebar(ctx context.Context, username, showType string) (*Sidebar, error)
	PublishedArticles(ctx context.Context) ([]*data.Article, error)
}

// BlogService provides the blog's business logic. Derived values are memoized
// in the cache store and invalidated when comments are posted.
type BlogService struct {
	repos    Repositories
	settings *SettingsService
	views    *ViewCounter
	renderer *markdown.Renderer
	inv      *cache.Invalidator
	validate *validator.Validate
	log      logger.Logger

	next          *cache.Memo[int64, *data.Article]
	prev          *cache.Memo[int64, *data.Article]
	categoryTree  *cache.Memo[int64, []Crumb]
	subCategories *cache.Memo[int64, []*data.Category]
	tagCount      *cache.Memo[int64, int]
	comments      *cache.Memo[commentsKey, []*data.Comment]
	sidebar       *cache.Memo[SidebarRequest, *Sidebar]
}

// NewBlogService creates a new BlogService.
func NewBlogService(repos Repositories, store cache.Store, settings *SettingsService,
	views *ViewCounter, renderer *markdown.Renderer, log logger.Logger) *BlogService {
	s := &BlogService{
		repos:    repos,
		settings: settings,
		views:    views,
		renderer: renderer,
		inv:      cache.NewInvalidator(store, log),
		validate: newValidator(),
		log:      log,
	}

	withLog := cache.WithLogger(log)
	s.next = cache.NewMemo(store, "next_article", optional(repos.Articles.Next), cache.WithTTL(neighbourTTL), withLog)
	s.prev = cache.NewMemo(store, "prev_article", optional(repos.Articles.Prev), cache.WithTTL(neighbourTTL), withLog)
	s.categoryTree = cache.NewMemo(store, "category_tree", s.loadCategoryTree, cache.WithTTL(treeTTL), withLog)
	s.subCategories = cache.NewMemo(store, "sub_categories", s.loadSubCategories, cache.WithTTL(treeTTL), withLog)
	s.tagCount = cache.NewMemo(store, "tag_article_count", s.loadTagCount, cache.WithTTL(treeTTL), withLog)
	s.comments = cache.NewMemo(store, "article_comments", s.loadComments, cache.WithTTL(commentsTTL), withLog)
	s.sidebar = cache.NewMemo(store, "sidebar", s.loadSidebar, cache.WithTTL(sidebarTTL), withLog)
	return s
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// optional turns a lookup failing with data.ErrNotFound into a cacheable "no result".
func optional[V any](get func(ctx context.Context, id int64) (V, error)) cache.Func[int64, V] {
	return func(ctx context.Context, id int64) (V, bool, error) {
		v, err := get(ctx, id)
		if errors.Is(err, data.ErrNotFound) {
			var zero V
			return zero, false, nil
		}
		if err != nil {
			var zero V
			return zero, false, err
		}
		return v, true, nil
	}
}

// GetArticle returns a published article with its neighbours, breadcrumbs and
// comments, and counts the view.
func (s *BlogService) GetArticle(ctx context.Context, id int64) (*ArticleDetail, error) {
	article, err := s.repos.Articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.Published() {
		return nil, fmt.Errorf("article %d: %w", id, data.ErrNotFound)
	}

	s.views.Add(article.ID)

	html, err := s.renderer.Render(article.Body)
	if err != nil {
		return nil, err
	}
	crumbs, err := s.ArticleCategoryTree(ctx, article)
	if err != nil {
		return nil, err
	}
	next, _, err := s.NextArticle(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	prev, _, err := s.PrevArticle(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.CommentList(ctx, article.ID)
	if err != nil {
		return nil, err
	}

	return &ArticleDetail{
		Article:      article,
		HTML:         html,
		Views:        article.Views + s.views.Pending(article.ID),
		CategoryTree: crumbs,
		Next:         next,
		Prev:         prev,
		Comments:     comments,
	}, nil
}

// NextArticle returns the published article following id, if any.
func (s *BlogService) NextArticle(ctx context.Context, id int64) (*data.Article, bool, error) {
	return s.next.Get(ctx, id)
}

// PrevArticle returns the published article preceding id, if any.
func (s *BlogService) PrevArticle(ctx context.Context, id int64) (*data.Article, bool, error) {
	return s.prev.Get(ctx, id)
}

// ArticleCategoryTree returns the (name, url) pairs from the article's category
// up to the root category.
func (s *BlogService) ArticleCategoryTree(ctx context.Context, article *data.Article) ([]Crumb, error) {
	if article.CategoryID == nil {
		return []Crumb{}, nil
	}
	crumbs, _, err := s.categoryTree.Get(ctx, *article.CategoryID)
	return crumbs, err
}

func (s *BlogService) loadCategoryTree(ctx context.Context, categoryID int64) ([]Crumb, bool, error) {
	start, err := s.repos.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, false, err
	}
	chain, err := tree.Ancestors(start, categoryKey, func(c *data.Category) (*data.Category, bool, error) {
		if c.ParentID == nil {
			return nil, false, nil
		}
		parent, err := s.repos.Categories.GetByID(ctx, *c.ParentID)
		if err != nil {
			return nil, false, err
		}
		return parent, true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return lo.Map(chain, func(c *data.Category, _ int) Crumb {
		return Crumb{Name: c.Name, URL: c.URL()}
	}), true, nil
}

// SubCategories returns the category and all of its descendants.
func (s *BlogService) SubCategories(ctx context.Context, categoryID int64) ([]*data.Category, error) {
	cats, _, err := s.subCategories.Get(ctx, categoryID)
	return cats, err
}

func (s *BlogService) loadSubCategories(ctx context.Context, categoryID int64) ([]*data.Category, bool, error) {
	start, err := s.repos.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, false, err
	}
	all, err := tree.Descendants(start, categoryKey, func(c *data.Category) ([]*data.Category, error) {
		return s.repos.Categories.Children(ctx, c.ID)
	})
	if err != nil {
		return nil, false, err
	}
	return all, true, nil
}

func categoryKey(c *data.Category) int64 { return c.ID }

// CategoryDetail returns a category with its breadcrumbs, sub-categories and
// the articles filed under any of them.
func (s *BlogService) CategoryDetail(ctx context.Context, slug string) (*CategoryDetail, error) {
	category, err := s.repos.Categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	crumbs, _, err := s.categoryTree.Get(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	subs, err := s.SubCategories(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	articles, err := s.repos.Articles.ListByCategories(ctx, lo.Map(subs, func(c *data.Category, _ int) int64 { return c.ID }))
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{
		Category:      category,
		Breadcrumbs:   crumbs,
		SubCategories: lo.Filter(subs, func(c *data.Category, _ int) bool { return c.ID != category.ID }),
		Articles:      articles,
	}, nil
}

// TagArticleCount returns the number of published articles carrying the tag.
func (s *BlogService) TagArticleCount(ctx context.Context, tagID int64) (int, error) {
	n, _, err := s.tagCount.Get(ctx, tagID)
	return n, err
}

func (s *BlogService) loadTagCount(ctx context.Context, tagID int64) (int, bool, error) {
	n, err := s.repos.Tags.ArticleCount(ctx, tagID)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// TagDetail returns a tag with its articles.
func (s *BlogService) TagDetail(ctx context.Context, slug string) (*TagDetail, error) {
	tag, err := s.repos.Tags.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	count, err := s.TagArticleCount(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	articles, err := s.repos.Articles.ListByTag(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	return &TagDetail{Tag: tag, ArticleCount: count, Articles: articles}, nil
}

// PublishedArticles lists every published post, for the sitemap.
func (s *BlogService) PublishedArticles(ctx context.Context) ([]*data.Article, error) {
	return s.repos.Articles.ListPublished(ctx)
}

// FlushViews writes queued article views to the database.
func (s *BlogService) FlushViews(ctx context.Context) error {
	return s.views.Flush(ctx)
}
