//go:build integration

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-blog-app/internal/auth"
	"go-blog-app/internal/avatar"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/markdown"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

const testAdminToken = "test-admin-token"

type testApp struct {
	Router   *chi.Mux
	DB       *sqlx.DB
	Store    cache.Store
	Articles *data.SQLArticleRepository
	AuthorID int64
}

// setupIntegrationTest initializes a full application stack for testing.
func setupIntegrationTest(t *testing.T) (*testApp, func()) {
	t.Helper()
	db, err := data.NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	schema, err := data.Schema("sqlite3")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	db.MustExec(schema)

	store, err := cache.NewSQLiteStore("file::memory:")
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	log := logger.New(config.LogConfig{Level: "debug", Format: "console"}, nil)
	articles := data.NewSQLArticleRepository(db)
	settings := service.NewSettingsService(data.NewSettingsRepository(db), store, cache.NewInvalidator(store, log), log)
	site := service.NewSite(config.ServerConfig{Domain: "blog.example.com"}, store)
	blog := service.NewBlogService(service.Repositories{
		Articles:   articles,
		Categories: data.NewCategoryRepository(db),
		Tags:       data.NewTagRepository(db),
		Comments:   data.NewCommentRepository(db),
		Sidebars:   data.NewSidebarRepository(db),
	}, store, settings, service.NewViewCounter(articles, log), markdown.New(), log)
	users := service.NewUserService(data.NewUserRepository(db), avatar.NewFetcher(avatar.LocalStorage{}, log), log)

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		t.Fatalf("Failed to create enforcer: %v", err)
	}
	if err := auth.SeedDefaultPolicies(enforcer, log); err != nil {
		t.Fatalf("Failed to seed policies: %v", err)
	}
	authz := middleware.Authorizer(enforcer, testAdminToken, log)

	router := NewRouter(NewBlogHandler(blog, settings, users, log), NewSeoHandler(blog, site), authz, log)

	author := &data.User{Username: "admin"}
	if err := data.NewUserRepository(db).Create(context.Background(), author); err != nil {
		t.Fatalf("Failed to create author: %v", err)
	}

	app := &testApp{Router: router, DB: db, Store: store, Articles: articles, AuthorID: author.ID}
	teardown := func() {
		store.Close()
		db.Close()
	}
	return app, teardown
}

func (app *testApp) createArticle(t *testing.T, a *data.Article) *data.Article {
	t.Helper()
	a.AuthorID = app.AuthorID
	if err := app.Articles.Create(context.Background(), a); err != nil {
		t.Fatalf("Failed to create article: %v", err)
	}
	return a
}

func (app *testApp) do(method, path, body string) *httptest.ResponseRecorder {
	return app.doWithToken("", method, path, body)
}

// admin sends the request with the admin bearer token.
func (app *testApp) admin(method, path, body string) *httptest.ResponseRecorder {
	return app.doWithToken(testAdminToken, method, path, body)
}

func (app *testApp) doWithToken(token, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)
	return rr
}

func TestArticleEndpoints(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()

	first := app.createArticle(t, &data.Article{Title: "First", Body: "# Hello"})
	app.createArticle(t, &data.Article{Title: "Second", Body: "two"})
	draft := app.createArticle(t, &data.Article{Title: "Draft", Body: "wip", Status: data.StatusDraft})

	t.Run("published article", func(t *testing.T) {
		rr := app.do("GET", "/api/articles/"+itoa(first.ID), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
		}
		body := rr.Body.String()
		if !strings.Contains(body, `"html":"\u003ch1`) {
			t.Errorf("expected rendered heading in %s", body)
		}
		if !strings.Contains(body, `"next":{`) {
			t.Errorf("expected next article in %s", body)
		}
	})

	t.Run("draft is hidden", func(t *testing.T) {
		rr := app.do("GET", "/api/articles/"+itoa(draft.ID), "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"status":404`) {
			t.Errorf("expected JSON error body, got %s", rr.Body.String())
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := app.do("GET", "/api/articles/abc", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})
}

func TestCommentEndpoint(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()
	article := app.createArticle(t, &data.Article{Title: "Commented", Body: "x"})
	path := "/api/articles/" + itoa(article.ID) + "/comments"

	rr := app.do("POST", path, `{"name":"bob","email":"bob","body":"hi"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for invalid email, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "email") {
		t.Errorf("expected email field in error, got %s", rr.Body.String())
	}

	rr = app.do("POST", path, `{"name":"bob","email":"bob@example.com","body":"hi"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr = app.do("GET", "/api/articles/"+itoa(article.ID), "")
	if !strings.Contains(rr.Body.String(), `"body":"hi"`) {
		t.Errorf("expected posted comment in article, got %s", rr.Body.String())
	}
}

func TestSettingsEndpoints(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()

	rr := app.do("GET", "/api/settings", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"sitename":"mtuktarov empire"`) {
		t.Errorf("expected default settings, got %s", rr.Body.String())
	}

	rr = app.admin("PUT", "/api/settings", `{"sitename":"second","article_sub_length":100}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("expected status %d for a second settings record, got %d", http.StatusConflict, rr.Code)
	}

	rr = app.admin("PUT", "/api/settings", `{"id":1,"sitename":"renamed","article_sub_length":100,"resource_path":"media"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	rr = app.do("GET", "/api/settings", "")
	if !strings.Contains(rr.Body.String(), `"sitename":"renamed"`) {
		t.Errorf("expected renamed settings, got %s", rr.Body.String())
	}
}

func TestSidebarAndSeoEndpoints(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()
	app.createArticle(t, &data.Article{Title: "Indexed", Body: "x"})

	rr := app.do("GET", "/api/sidebar/i", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	rr = app.do("GET", "/api/sidebar/z", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for unknown show type, got %d", http.StatusBadRequest, rr.Code)
	}

	rr = app.do("GET", "/robots.txt", "")
	if !strings.Contains(rr.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml") {
		t.Errorf("unexpected robots.txt: %s", rr.Body.String())
	}

	rr = app.do("GET", "/sitemap.xml", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<loc>https://blog.example.com/article/") {
		t.Errorf("expected article in sitemap, got %s", rr.Body.String())
	}
}

func TestAvatarEndpoint(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()

	remote := httptest.NewServer(http.NotFoundHandler())
	defer remote.Close()

	rr := app.admin("POST", "/api/avatars", `{"user_id":`+itoa(app.AuthorID)+`,"url":"`+remote.URL+`/a.png"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"stored":false`) || !strings.Contains(rr.Body.String(), remote.URL+"/a.png") {
		t.Errorf("expected remote url to be kept, got %s", rr.Body.String())
	}
}

func TestWriteRoutesRequireAdmin(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()
	settings := `{"id":1,"sitename":"taken over","article_sub_length":100,"resource_path":"media"}`

	rr := app.do("PUT", "/api/settings", settings)
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status %d for anonymous settings update, got %d", http.StatusForbidden, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":403`) {
		t.Errorf("expected JSON error body, got %s", rr.Body.String())
	}

	rr = app.doWithToken("wrong-token", "PUT", "/api/settings", settings)
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status %d for a wrong token, got %d", http.StatusForbidden, rr.Code)
	}

	rr = app.do("POST", "/api/avatars", `{"user_id":`+itoa(app.AuthorID)+`,"url":"http://127.0.0.1:1/a.png"}`)
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status %d for anonymous avatar refresh, got %d", http.StatusForbidden, rr.Code)
	}

	rr = app.do("GET", "/api/settings", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d for anonymous read, got %d", http.StatusOK, rr.Code)
	}
	if strings.Contains(rr.Body.String(), "taken over") {
		t.Errorf("anonymous update must not be applied, got %s", rr.Body.String())
	}
}
