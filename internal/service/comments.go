package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-blog-app/internal/data"
)

// CommentForm is the payload of a new comment.
type CommentForm struct {
	Name     string `json:"name" validate:"required,max=245"`
	Email    string `json:"email" validate:"required,email,max=254"`
	URL      string `json:"url" validate:"omitempty,url,max=200"`
	Body     string `json:"body" validate:"required,max=300"`
	ParentID *int64 `json:"parent_comment_id" validate:"omitempty,gt=0"`
	AuthorID *int64 `json:"-"`
}

// commentsKey identifies the cached comment list of an article.
type commentsKey struct {
	ArticleID int64
}

func (k commentsKey) CacheKey() (string, error) {
	return fmt.Sprintf("article_comments_%d", k.ArticleID), nil
}

// CommentList returns the enabled comments of an article.
func (s *BlogService) CommentList(ctx context.Context, articleID int64) ([]*data.Comment, error) {
	comments, _, err := s.comments.Get(ctx, commentsKey{ArticleID: articleID})
	return comments, err
}

func (s *BlogService) loadComments(ctx context.Context, key commentsKey) ([]*data.Comment, bool, error) {
	comments, err := s.repos.Comments.ListEnabled(ctx, key.ArticleID)
	if err != nil {
		return nil, false, err
	}
	if comments == nil {
		comments = []*data.Comment{}
	}
	s.log.Info(fmt.Sprintf("set article comments:%d", key.ArticleID))
	return comments, true, nil
}

// PostComment validates and stores a comment, then drops every cached view
// that shows it.
func (s *BlogService) PostComment(ctx context.Context, articleID int64, form CommentForm) (*data.Comment, error) {
	if err := s.validate.StructCtx(ctx, form); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.OpenSiteComment {
		return nil, ErrCommentsClosed
	}

	article, err := s.repos.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !article.Published() {
		return nil, fmt.Errorf("article %d: %w", articleID, data.ErrNotFound)
	}
	if !article.CommentsOpen() {
		return nil, ErrCommentsClosed
	}

	if form.ParentID != nil {
		parent, err := s.repos.Comments.GetByID(ctx, *form.ParentID)
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		if err != nil {
			return nil, err
		}
		if parent.ArticleID != article.ID {
			return nil, ErrInvalidParent
		}
	}

	comment := &data.Comment{
		Body:      s.renderer.Sanitize(form.Body),
		ArticleID: article.ID,
		AuthorID:  form.AuthorID,
		Name:      strings.TrimSpace(form.Name),
		Email:     form.Email,
		URL:       form.URL,
		ParentID:  form.ParentID,
		IsEnable:  true,
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidateComment(ctx, article, comment)
	return comment, nil
}

// invalidateComment drops the cached comment list and the sidebars showing
// recent comments.
func (s *BlogService) invalidateComment(ctx context.Context, article *data.Article, comment *data.Comment) {
	if err := s.comments.Forget(ctx, commentsKey{ArticleID: article.ID}); err != nil {
		s.log.Error(err, "failed to delete cached comments")
	}
	for _, username := range []string{comment.Name, ""} {
		if err := s.inv.DeleteSidebar(ctx, username); err != nil {
			s.log.Error(err, "failed to delete sidebar fragments")
		}
	}
}
