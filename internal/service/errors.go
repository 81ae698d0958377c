package service

import "errors"

var (
	// ErrSettingsSingleton is returned when saving a second BlogSettings record.
	ErrSettingsSingleton = errors.New("only one blog settings record may exist")
	// ErrCommentsClosed is returned when an article or the site does not accept comments.
	ErrCommentsClosed = errors.New("comments are closed")
	// ErrInvalidShowType is returned for an unknown link show type.
	ErrInvalidShowType = errors.New("unknown link show type")
	// ErrInvalidParent is returned when a reply targets a comment of another article.
	ErrInvalidParent = errors.New("parent comment does not belong to this article")
)
