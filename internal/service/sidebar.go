package service

import (
	"context"

	"go-blog-app/internal/cache"
	"go-blog-app/internal/data"

	"github.com/samber/lo"
)

// SidebarRequest selects the sidebar rendered for a user on a kind of page.
type SidebarRequest struct {
	Username string
	ShowType string
}

// CacheKey matches the fragment keys removed by cache.Invalidator.DeleteSidebar.
func (r SidebarRequest) CacheKey() (string, error) {
	return cache.SidebarKey(r.Username, r.ShowType), nil
}

// Sidebar is the content of the sidebar.
type Sidebar struct {
	ShowType       string          `json:"show_type"`
	Blocks         []*data.SideBar `json:"blocks"`
	Links          []*data.Link    `json:"links"`
	RecentArticles []*data.Article `json:"recent_articles"`
	RecentComments []*data.Comment `json:"recent_comments"`
	MostViewed     []*data.Article `json:"most_viewed,omitempty"`
}

// Sidebar returns the sidebar for a page of the given link show type.
func (s *BlogService) Sidebar(ctx context.Context, username, showType string) (*Sidebar, error) {
	if !lo.Contains(data.ShowTypeCodes(), showType) {
		return nil, ErrInvalidShowType
	}
	sb, _, err := s.sidebar.Get(ctx, SidebarRequest{Username: username, ShowType: showType})
	return sb, err
}

func (s *BlogService) loadSidebar(ctx context.Context, req SidebarRequest) (*Sidebar, bool, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, false, err
	}

	blocks, err := s.repos.Sidebars.EnabledBlocks(ctx)
	if err != nil {
		return nil, false, err
	}
	links, err := s.repos.Sidebars.LinksFor(ctx, lo.Uniq([]string{req.ShowType, data.ShowTypeAll}))
	if err != nil {
		return nil, false, err
	}
	recent, err := s.repos.Articles.Recent(ctx, settings.SidebarArticleCount)
	if err != nil {
		return nil, false, err
	}
	comments, err := s.repos.Comments.Recent(ctx, settings.SidebarCommentCount)
	if err != nil {
		return nil, false, err
	}

	sb := &Sidebar{
		ShowType:       req.ShowType,
		Blocks:         blocks,
		Links:          links,
		RecentArticles: recent,
		RecentComments: comments,
	}
	if settings.ShowViewsBar {
		if sb.MostViewed, err = s.repos.Articles.MostViewed(ctx, settings.SidebarArticleCount); err != nil {
			return nil, false, err
		}
	}
	return sb, true, nil
}
