package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SidebarRepository reads the links and HTML blocks shown in the sidebar.
type SidebarRepository struct {
	DB *sqlx.DB
}

// NewSidebarRepository creates a new SidebarRepository.
func NewSidebarRepository(db *sqlx.DB) *SidebarRepository {
	return &SidebarRepository{DB: db}
}

// EnabledBlocks returns the enabled sidebar blocks in sequence order.
func (r *SidebarRepository) EnabledBlocks(ctx context.Context) ([]*SideBar, error) {
	var blocks []*SideBar
	query := `SELECT id, name, content, sequence, is_enable, created_time, last_mod_time
		FROM sidebars WHERE is_enable = 1 ORDER BY sequence`
	if err := r.DB.SelectContext(ctx, &blocks, query); err != nil {
		return nil, fmt.Errorf("failed to list sidebars: %w", err)
	}
	return blocks, nil
}

// LinksFor returns the enabled links shown for any of the given show types.
func (r *SidebarRepository) LinksFor(ctx context.Context, showTypes []string) ([]*Link, error) {
	if len(showTypes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, link, sequence, is_enable, show_type, created_time, last_mod_time
		FROM links WHERE is_enable = 1 AND show_type IN (?) ORDER BY sequence`, showTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to build links query: %w", err)
	}
	var links []*Link
	if err := r.DB.SelectContext(ctx, &links, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// SaveLink inserts a link.
func (r *SidebarRepository) SaveLink(ctx context.Context, link *Link) error {
	link.CreatedAt = time.Now().UTC()
	link.LastModTime = link.CreatedAt
	query := `INSERT INTO links (name, link, sequence, is_enable, show_type, created_time, last_mod_time)
		VALUES (:name, :link, :sequence, :is_enable, :show_type, :created_time, :last_mod_time)`
	if _, err := r.DB.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}
	return nil
}

// SaveBlock inserts a sidebar block.
func (r *SidebarRepository) SaveBlock(ctx context.Context, block *SideBar) error {
	block.CreatedAt = time.Now().UTC()
	block.LastModTime = block.CreatedAt
	query := `INSERT INTO sidebars (name, content, sequence, is_enable, created_time, last_mod_time)
		VALUES (:name, :content, :sequence, :is_enable, :created_time, :last_mod_time)`
	if _, err := r.DB.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("failed to insert sidebar: %w", err)
	}
	return nil
}
