//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedAuthor(t *testing.T, repo *UserRepository) int64 {
	t.Helper()
	u := &User{Username: "admin", Nickname: "Admin", Email: "admin@example.com"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create author: %v", err)
	}
	return u.ID
}

func TestArticleRepository_CreateAndGet(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewSQLArticleRepository(db)
	tags := NewTagRepository(db)
	authorID := seedAuthor(t, NewUserRepository(db))

	article := &Article{Title: "Hello", Body: "# hi", AuthorID: authorID}
	if err := repo.Create(ctx, article); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if article.ID == 0 {
		t.Fatal("expected article id to be set")
	}

	goID, err := tags.Save(ctx, &Tag{Name: "Go"})
	if err != nil {
		t.Fatal(err)
	}
	webID, err := tags.Save(ctx, &Tag{Name: "Web"})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SetTags(ctx, article.ID, []int64{webID, goID, goID}); err != nil {
		t.Fatalf("SetTags failed: %v", err)
	}

	got, err := repo.GetByID(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != StatusPublished || got.CommentStatus != CommentOpen || got.Type != TypeArticle {
		t.Errorf("expected defaults p/o/a, got %s/%s/%s", got.Status, got.CommentStatus, got.Type)
	}
	if len(got.Tags) != 2 || got.Tags[0].Name != "Go" {
		t.Errorf("expected tags [Go Web], got %v", got.Tags)
	}

	_, err = repo.GetByID(ctx, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArticleRepository_NextPrev(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewSQLArticleRepository(db)
	authorID := seedAuthor(t, NewUserRepository(db))

	var ids []int64
	for i, status := range []string{StatusPublished, StatusDraft, StatusPublished} {
		a := &Article{Title: string(rune('a' + i)), Body: "x", AuthorID: authorID, Status: status}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, a.ID)
	}

	next, err := repo.Next(ctx, ids[0])
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next.ID != ids[2] {
		t.Errorf("expected drafts to be skipped, got %d", next.ID)
	}

	prev, err := repo.Prev(ctx, ids[2])
	if err != nil {
		t.Fatalf("Prev failed: %v", err)
	}
	if prev.ID != ids[0] {
		t.Errorf("expected %d, got %d", ids[0], prev.ID)
	}

	if _, err := repo.Next(ctx, ids[2]); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after the last article, got %v", err)
	}
}

func TestArticleRepository_PrevIgnoresArticleOrder(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewSQLArticleRepository(db)
	authorID := seedAuthor(t, NewUserRepository(db))

	var ids []int64
	for i, order := range []int{9, 0, 0} {
		a := &Article{Title: "ordered " + string(rune('a'+i)), Body: "x", AuthorID: authorID, ArticleOrder: order}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, a.ID)
	}

	prev, err := repo.Prev(ctx, ids[2])
	if err != nil {
		t.Fatalf("Prev failed: %v", err)
	}
	if prev.ID != ids[1] {
		t.Errorf("expected the nearest earlier article %d, got %d", ids[1], prev.ID)
	}
}

func TestArticleRepository_AddViews(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewSQLArticleRepository(db)
	authorID := seedAuthor(t, NewUserRepository(db))

	a := &Article{Title: "Popular", Body: "x", AuthorID: authorID, PubTime: time.Now().Add(-time.Hour)}
	b := &Article{Title: "Quiet", Body: "x", AuthorID: authorID}
	for _, art := range []*Article{a, b} {
		if err := repo.Create(ctx, art); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.AddViews(ctx, map[int64]int64{a.ID: 5, b.ID: 1}); err != nil {
		t.Fatalf("AddViews failed: %v", err)
	}
	if err := repo.AddViews(ctx, map[int64]int64{a.ID: 2}); err != nil {
		t.Fatalf("AddViews failed: %v", err)
	}

	top, err := repo.MostViewed(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].ID != a.ID || top[0].Views != 7 {
		t.Errorf("expected Popular with 7 views, got %+v", top)
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != b.ID {
		t.Errorf("expected newest article first, got %+v", recent)
	}
}

func TestTagRepository_ArticleCount(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	articles := NewSQLArticleRepository(db)
	tags := NewTagRepository(db)
	authorID := seedAuthor(t, NewUserRepository(db))

	tagID, err := tags.Save(ctx, &Tag{Name: "Go Lang"})
	if err != nil {
		t.Fatal(err)
	}
	for i, status := range []string{StatusPublished, StatusPublished, StatusDraft} {
		a := &Article{Title: string(rune('a' + i)), Body: "x", AuthorID: authorID, Status: status}
		if err := articles.Create(ctx, a); err != nil {
			t.Fatal(err)
		}
		if err := articles.SetTags(ctx, a.ID, []int64{tagID}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := tags.ArticleCount(ctx, tagID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 published articles, got %d", n)
	}

	tag, err := tags.GetBySlug(ctx, "go-lang")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if tag.ID != tagID {
		t.Errorf("expected tag %d, got %d", tagID, tag.ID)
	}
}
