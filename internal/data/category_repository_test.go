//go:build integration

package data

import (
	"context"
	"errors"
	"testing"

	"go-blog-app/internal/config"

	"github.com/jmoiron/sqlx"
)

// setupTestDB creates a new in-memory SQLite database with the full schema.
// It returns the database and a teardown function to be deferred.
func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	schema, err := Schema("sqlite3")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	db.MustExec(schema)

	teardown := func() {
		db.Close()
	}
	return db, teardown
}

func setupCategoryTest(t *testing.T) (*CategoryRepository, func()) {
	t.Helper()
	db, teardown := setupTestDB(t)
	return NewCategoryRepository(db), teardown
}

func TestCategoryRepository_SaveParent(t *testing.T) {
	repo, teardown := setupCategoryTest(t)
	defer teardown()

	category := &Category{Name: "Science"}
	id, err := repo.Save(context.Background(), category)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}
	if category.Slug != "science" {
		t.Errorf("expected slug 'science', got '%s'", category.Slug)
	}
}

func TestCategoryRepository_SaveSubcategory(t *testing.T) {
	repo, teardown := setupCategoryTest(t)
	defer teardown()
	ctx := context.Background()

	parentID, err := repo.Save(ctx, &Category{Name: "Technology"})
	if err != nil {
		t.Fatalf("failed to save parent category: %v", err)
	}

	childID, err := repo.Save(ctx, &Category{Name: "Programming", ParentID: &parentID})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if childID == 0 {
		t.Error("expected non-zero id")
	}

	children, err := repo.Children(ctx, parentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != childID {
		t.Errorf("expected Programming as only child, got %v", children)
	}
}

func TestCategoryRepository_Update(t *testing.T) {
	repo, teardown := setupCategoryTest(t)
	defer teardown()
	ctx := context.Background()

	category := &Category{Name: "Movies"}
	id, err := repo.Save(ctx, category)
	if err != nil {
		t.Fatal(err)
	}
	category.Name = "Films Noir"
	if _, err := repo.Save(ctx, category); err != nil {
		t.Fatal(err)
	}

	found, err := repo.GetBySlug(ctx, "films-noir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != id {
		t.Errorf("expected id %d, got %d", id, found.ID)
	}
}

func TestCategoryRepository_GetByID(t *testing.T) {
	repo, teardown := setupCategoryTest(t)
	defer teardown()
	ctx := context.Background()

	id, err := repo.Save(ctx, &Category{Name: "Movies"})
	if err != nil {
		t.Fatal(err)
	}

	found, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find category, but got nil")
	}
	if found.Name != "Movies" {
		t.Errorf("expected name 'Movies', got '%s'", found.Name)
	}

	// Test not found
	_, err = repo.GetByID(ctx, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_GetAll(t *testing.T) {
	repo, teardown := setupCategoryTest(t)
	defer teardown()
	ctx := context.Background()

	if _, err := repo.Save(ctx, &Category{Name: "Music"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Save(ctx, &Category{Name: "Books"}); err != nil {
		t.Fatal(err)
	}

	categories, err := repo.GetAll(ctx)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "Books" {
		t.Errorf("expected categories ordered by name, got %s first", categories[0].Name)
	}
}
