package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SettingsServicer defines the settings operations exposed over HTTP.
type SettingsServicer interface {
	GetSettings(ctx context.Context) (*data.BlogSettings, error)
	SaveSettings(ctx context.Context, s *data.BlogSettings) error
}

// AvatarRefresher stores a remote avatar for a user.
type AvatarRefresher interface {
	RefreshAvatar(ctx context.Context, userID int64, url string) (string, bool, error)
}

// BlogHandler holds the dependencies for the blog API handlers.
type BlogHandler struct {
	blog     service.BlogServicer
	settings SettingsServicer
	users    AvatarRefresher
	log      logger.Logger
	now      func() time.Time
}

// NewBlogHandler creates a new BlogHandler with the given dependencies.
func NewBlogHandler(blog service.BlogServicer, settings SettingsServicer, users AvatarRefresher, log logger.Logger) *BlogHandler {
	return &BlogHandler{blog: blog, settings: settings, users: users, log: log, now: time.Now}
}

// articleSummary is the listing form of an article.
type articleSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Views     string `json:"views"`
}

func (h *BlogHandler) summarize(a *data.Article) articleSummary {
	return articleSummary{
		ID:        a.ID,
		Title:     a.Title,
		URL:       a.URL(),
		Published: humanize.RelTime(a.PubTime, h.now(), "ago", "from now"),
		Views:     humanize.Comma(a.Views),
	}
}

func (h *BlogHandler) summarizeAll(articles []*data.Article) []articleSummary {
	out := make([]articleSummary, len(articles))
	for i, a := range articles {
		out[i] = h.summarize(a)
	}
	return out
}

type articleResponse struct {
	articleSummary
	HTML         string          `json:"html"`
	Tags         []*data.Tag     `json:"tags"`
	CategoryTree []service.Crumb `json:"category_tree"`
	Next         *articleSummary `json:"next,omitempty"`
	Prev         *articleSummary `json:"prev,omitempty"`
	Comments     []*data.Comment `json:"comments"`
}

// articleHandler returns a published article with its neighbours and comments.
func (h *BlogHandler) articleHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid article id", Code: http.StatusBadRequest}
	}

	detail, err := h.blog.GetArticle(r.Context(), id)
	if err != nil {
		return toAppError(err, "Failed to load article")
	}

	summary := h.summarize(detail.Article)
	summary.Views = humanize.Comma(detail.Views)
	resp := articleResponse{
		articleSummary: summary,
		HTML:           detail.HTML,
		Tags:           detail.Article.Tags,
		CategoryTree:   detail.CategoryTree,
		Comments:       detail.Comments,
	}
	if detail.Next != nil {
		next := h.summarize(detail.Next)
		resp.Next = &next
	}
	if detail.Prev != nil {
		prev := h.summarize(detail.Prev)
		resp.Prev = &prev
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// postCommentHandler stores a new comment on an article.
func (h *BlogHandler) postCommentHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid article id", Code: http.StatusBadRequest}
	}

	var form service.CommentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid comment payload", Code: http.StatusBadRequest}
	}

	comment, err := h.blog.PostComment(r.Context(), id, form)
	if err != nil {
		return toAppError(err, "Failed to save comment")
	}
	middleware.WriteJSON(w, http.StatusCreated, comment)
	return nil
}

type categoryResponse struct {
	Category      *data.Category   `json:"category"`
	Breadcrumbs   []service.Crumb  `json:"breadcrumbs"`
	SubCategories []*data.Category `json:"sub_categories"`
	Articles      []articleSummary `json:"articles"`
}

// categoryHandler returns a category with the articles of its whole subtree.
func (h *BlogHandler) categoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	detail, err := h.blog.CategoryDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return toAppError(err, "Failed to load category")
	}
	middleware.WriteJSON(w, http.StatusOK, categoryResponse{
		Category:      detail.Category,
		Breadcrumbs:   detail.Breadcrumbs,
		SubCategories: detail.SubCategories,
		Articles:      h.summarizeAll(detail.Articles),
	})
	return nil
}

type tagResponse struct {
	Tag          *data.Tag        `json:"tag"`
	ArticleCount int              `json:"article_count"`
	Articles     []articleSummary `json:"articles"`
}

// tagHandler returns a tag with its articles.
func (h *BlogHandler) tagHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	detail, err := h.blog.TagDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return toAppError(err, "Failed to load tag")
	}
	middleware.WriteJSON(w, http.StatusOK, tagResponse{
		Tag:          detail.Tag,
		ArticleCount: detail.ArticleCount,
		Articles:     h.summarizeAll(detail.Articles),
	})
	return nil
}

// sidebarHandler returns the sidebar for a link show type. The optional "user"
// query parameter selects the viewer's cached variant.
func (h *BlogHandler) sidebarHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	sb, err := h.blog.Sidebar(r.Context(), r.URL.Query().Get("user"), chi.URLParam(r, "type"))
	if err != nil {
		return toAppError(err, "Failed to load sidebar")
	}
	middleware.WriteJSON(w, http.StatusOK, sb)
	return nil
}

// getSettingsHandler returns the site settings.
func (h *BlogHandler) getSettingsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	s, err := h.settings.GetSettings(r.Context())
	if err != nil {
		return toAppError(err, "Failed to load settings")
	}
	middleware.WriteJSON(w, http.StatusOK, s)
	return nil
}

// putSettingsHandler replaces the site settings.
func (h *BlogHandler) putSettingsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var s data.BlogSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid settings payload", Code: http.StatusBadRequest}
	}
	if err := h.settings.SaveSettings(r.Context(), &s); err != nil {
		return toAppError(err, "Failed to save settings")
	}
	middleware.LoggerFrom(r.Context(), h.log).Info("settings updated by " + middleware.Subject(r.Context()))
	middleware.WriteJSON(w, http.StatusOK, &s)
	return nil
}

type avatarRequest struct {
	UserID int64  `json:"user_id"`
	URL    string `json:"url"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
	Stored bool   `json:"stored"`
}

// avatarHandler copies a remote avatar into the site's storage.
func (h *BlogHandler) avatarHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req avatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" || req.UserID == 0 {
		return &middleware.AppError{Error: err, Message: "user_id and url are required", Code: http.StatusBadRequest}
	}
	location, stored, err := h.users.RefreshAvatar(r.Context(), req.UserID, req.URL)
	if err != nil {
		return toAppError(err, "Failed to save avatar")
	}
	middleware.WriteJSON(w, http.StatusOK, avatarResponse{Avatar: location, Stored: stored})
	return nil
}
