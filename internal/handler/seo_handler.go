package handler

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"go-blog-app/internal/data"
	"go-blog-app/internal/middleware"
)

// SiteURLs resolves absolute URLs of the site.
type SiteURLs interface {
	FullURL(ctx context.Context, path string) (string, error)
}

// articleLister lists the articles included in the sitemap.
type articleLister interface {
	PublishedArticles(ctx context.Context) ([]*data.Article, error)
}

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	articles articleLister
	site     SiteURLs
}

// NewSeoHandler creates a new SeoHandler.
func NewSeoHandler(articles articleLister, site SiteURLs) *SeoHandler {
	return &SeoHandler{articles: articles, site: site}
}

// robotsHandler serves robots.txt pointing at the sitemap.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	sitemap, err := h.site.FullURL(r.Context(), "/sitemap.xml")
	if err != nil {
		return toAppError(err, "Failed to resolve site domain")
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Sitemap: "+sitemap)
	return nil
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a dynamic sitemap.xml.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	articles, err := h.articles.PublishedArticles(r.Context())
	if err != nil {
		return toAppError(err, "Failed to retrieve articles for sitemap")
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, len(articles)),
	}
	for i, a := range articles {
		loc, err := h.site.FullURL(r.Context(), a.URL())
		if err != nil {
			return toAppError(err, "Failed to resolve site domain")
		}
		sitemap.URLs[i] = sitemapURL{
			Loc:     loc,
			LastMod: a.LastModTime.Format(sitemapDateFormat),
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to generate sitemap XML", Code: http.StatusInternalServerError}
	}
	return nil
}
