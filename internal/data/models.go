package data

import (
	"fmt"
	"time"
)

// Article publication states.
const (
	StatusDraft     = "d"
	StatusPublished = "p"
)

// Article comment states.
const (
	CommentOpen   = "o"
	CommentClosed = "c"
)

// Article kinds.
const (
	TypeArticle = "a"
	TypePage    = "p"
)

// LinkShowType says on which pages a link or sidebar block is shown.
type LinkShowType struct {
	Code  string
	Label string
}

// LinkShowTypes lists every show type in display order.
var LinkShowTypes = []LinkShowType{
	{Code: "i", Label: "Home"},
	{Code: "l", Label: "List"},
	{Code: "p", Label: "Article page"},
	{Code: "a", Label: "Full Site"},
	{Code: "s", Label: "Friendly Link Page"},
}

// ShowTypeAll marks links displayed on every page.
const ShowTypeAll = "a"

// ShowTypeCodes returns the codes of LinkShowTypes.
func ShowTypeCodes() []string {
	codes := make([]string, len(LinkShowTypes))
	for i, t := range LinkShowTypes {
		codes[i] = t.Code
	}
	return codes
}

// User is an article or comment author.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Nickname  string    `db:"nickname" json:"nickname"`
	Email     string    `db:"email" json:"email"`
	Avatar    string    `db:"avatar" json:"avatar"`
	CreatedAt time.Time `db:"created_time" json:"created_time"`
}

// Article is a blog post or standalone page.
type Article struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Body          string    `db:"body" json:"body"`
	PubTime       time.Time `db:"pub_time" json:"pub_time"`
	Status        string    `db:"status" json:"status"`
	CommentStatus string    `db:"comment_status" json:"comment_status"`
	Type          string    `db:"type" json:"type"`
	Views         int64     `db:"views" json:"views"`
	AuthorID      int64     `db:"author_id" json:"author_id"`
	ArticleOrder  int       `db:"article_order" json:"article_order"`
	CategoryID    *int64    `db:"category_id" json:"category_id"`
	CreatedAt     time.Time `db:"created_time" json:"created_time"`
	LastModTime   time.Time `db:"last_mod_time" json:"last_mod_time"`
	Tags          []*Tag    `db:"-" json:"tags,omitempty"`
}

// URL is the article's path, dated by creation time.
func (a *Article) URL() string {
	return fmt.Sprintf("/article/%d/%d/%d/%d.html",
		a.CreatedAt.Year(), int(a.CreatedAt.Month()), a.CreatedAt.Day(), a.ID)
}

// Published reports whether the article is publicly visible.
func (a *Article) Published() bool {
	return a.Status == StatusPublished
}

// CommentsOpen reports whether the article accepts comments.
func (a *Article) CommentsOpen() bool {
	return a.CommentStatus == CommentOpen
}

// Category groups articles; categories nest through ParentID.
type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	ParentID    *int64    `db:"parent_id" json:"parent_id"`
	CreatedAt   time.Time `db:"created_time" json:"created_time"`
	LastModTime time.Time `db:"last_mod_time" json:"last_mod_time"`
}

func (c *Category) URL() string {
	return "/category/" + c.Slug + ".html"
}

// Tag labels articles.
type Tag struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	CreatedAt   time.Time `db:"created_time" json:"created_time"`
	LastModTime time.Time `db:"last_mod_time" json:"last_mod_time"`
}

func (t *Tag) URL() string {
	return "/tag/" + t.Slug + ".html"
}

// Link is an external link shown in the sidebar.
type Link struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Link        string    `db:"link" json:"link"`
	Sequence    int       `db:"sequence" json:"sequence"`
	IsEnable    bool      `db:"is_enable" json:"is_enable"`
	ShowType    string    `db:"show_type" json:"show_type"`
	CreatedAt   time.Time `db:"created_time" json:"created_time"`
	LastModTime time.Time `db:"last_mod_time" json:"last_mod_time"`
}

// SideBar is a block of HTML shown in the sidebar.
type SideBar struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Content     string    `db:"content" json:"content"`
	Sequence    int       `db:"sequence" json:"sequence"`
	IsEnable    bool      `db:"is_enable" json:"is_enable"`
	CreatedAt   time.Time `db:"created_time" json:"created_time"`
	LastModTime time.Time `db:"last_mod_time" json:"last_mod_time"`
}

// Comment is a reader comment on an article. ParentID links replies.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	Body      string    `db:"body" json:"body"`
	ArticleID int64     `db:"article_id" json:"article_id"`
	AuthorID  *int64    `db:"author_id" json:"author_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"-"`
	URL       string    `db:"url" json:"url,omitempty"`
	ParentID  *int64    `db:"parent_id" json:"parent_id,omitempty"`
	IsEnable  bool      `db:"is_enable" json:"is_enable"`
	CreatedAt time.Time `db:"created_time" json:"created_time"`
}

// BlogSettings is the site-wide configuration record. At most one row exists.
type BlogSettings struct {
	ID                  int64  `db:"id" json:"id"`
	SiteName            string `db:"sitename" json:"sitename"`
	SiteDescription     string `db:"site_description" json:"site_description"`
	SiteSEODescription  string `db:"site_seo_description" json:"site_seo_description"`
	SiteKeywords        string `db:"site_keywords" json:"site_keywords"`
	ArticleSubLength    int    `db:"article_sub_length" json:"article_sub_length"`
	SidebarArticleCount int    `db:"sidebar_article_count" json:"sidebar_article_count"`
	SidebarCommentCount int    `db:"sidebar_comment_count" json:"sidebar_comment_count"`
	ShowGoogleAdsense   bool   `db:"show_google_adsense" json:"show_google_adsense"`
	GoogleAdsenseCodes  string `db:"google_adsense_codes" json:"google_adsense_codes"`
	OpenSiteComment     bool   `db:"open_site_comment" json:"open_site_comment"`
	AnalyticsCode       string `db:"analytics_code" json:"analytics_code"`
	FooterTitle         string `db:"footer_title" json:"footer_title"`
	ResourcePath        string `db:"resource_path" json:"resource_path"`
	ShowViewsBar        bool   `db:"show_views_bar" json:"show_views_bar"`
	ShowCategoryBar     bool   `db:"show_category_bar" json:"show_category_bar"`
	ShowSearchBar       bool   `db:"show_search_bar" json:"show_search_bar"`
	ShowMenuBar         bool   `db:"show_menu_bar" json:"show_menu_bar"`
}

// DefaultBlogSettings is the record created when the site has no settings yet.
func DefaultBlogSettings() *BlogSettings {
	return &BlogSettings{
		SiteName:            "mtuktarov empire",
		SiteDescription:     "if I had my own world...",
		SiteSEODescription:  "mtuktarov",
		SiteKeywords:        "love,hope,truth",
		ArticleSubLength:    300,
		SidebarArticleCount: 10,
		SidebarCommentCount: 5,
		OpenSiteComment:     true,
		FooterTitle:         "if I had my own world...",
		ResourcePath:        "media",
	}
}
