package service

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
)

// debugDomain is the site domain reported when running in debug mode.
const debugDomain = "127.0.0.1:8000"

// Site answers questions about the public address of the blog.
type Site struct {
	domain *cache.Memo[struct{}, string]
}

// NewSite creates a Site for the server configuration.
func NewSite(cfg config.ServerConfig, store cache.Store, opts ...cache.Option) *Site {
	fn := func(ctx context.Context, _ struct{}) (string, bool, error) {
		if cfg.Debug {
			return debugDomain, true, nil
		}
		return cfg.Domain, cfg.Domain != "", nil
	}
	opts = append([]cache.Option{cache.WithTTL(10 * time.Hour)}, opts...)
	return &Site{domain: cache.NewMemo(store, "current_site_domain", fn, opts...)}
}

// CurrentSiteDomain returns the host (and port) the site is served on.
func (s *Site) CurrentSiteDomain(ctx context.Context) (string, error) {
	domain, _, err := s.domain.Get(ctx, struct{}{})
	return domain, err
}

// FullURL returns the absolute https URL of path on the current site.
func (s *Site) FullURL(ctx context.Context, path string) (string, error) {
	domain, err := s.CurrentSiteDomain(ctx)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "https://" + domain + path, nil
}

// ParseDictToURL encodes params as "k=v" pairs joined by "&", sorted by key.
// Slashes are left unescaped.
func ParseDictToURL(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = quote(k) + "=" + quote(params[k])
	}
	return strings.Join(pairs, "&")
}

var unescapeQuery = strings.NewReplacer("+", "%20", "%2F", "/")

func quote(s string) string {
	return unescapeQuery.Replace(url.QueryEscape(s))
}
