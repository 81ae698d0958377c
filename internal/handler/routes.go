package handler

import (
	"net/http"

	"go-blog-app/internal/logger"
	appmw "go-blog-app/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router.
// authz guards every route; see auth.SeedDefaultPolicies for the rules.
func NewRouter(blogHandler *BlogHandler, seoHandler *SeoHandler, authz func(http.Handler) http.Handler, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmw.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(authz)

	handle := appmw.Error(log)

	r.Method(http.MethodGet, "/robots.txt", handle(seoHandler.robotsHandler))
	r.Method(http.MethodGet, "/sitemap.xml", handle(seoHandler.sitemapHandler))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/articles/{id}", handle(blogHandler.articleHandler))
		r.Method(http.MethodPost, "/articles/{id}/comments", handle(blogHandler.postCommentHandler))
		r.Method(http.MethodGet, "/categories/{slug}", handle(blogHandler.categoryHandler))
		r.Method(http.MethodGet, "/tags/{slug}", handle(blogHandler.tagHandler))
		r.Method(http.MethodGet, "/sidebar/{type}", handle(blogHandler.sidebarHandler))
		r.Method(http.MethodGet, "/settings", handle(blogHandler.getSettingsHandler))
		r.Method(http.MethodPut, "/settings", handle(blogHandler.putSettingsHandler))
		r.Method(http.MethodPost, "/avatars", handle(blogHandler.avatarHandler))
	})

	return r
}
