package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tskinner/inkwell/internal/auth"
	"github.com/tskinner/inkwell/internal/blog"
	"github.com/tskinner/inkwell/internal/database"
	"github.com/tskinner/inkwell/internal/model"
	"github.com/tskinner/inkwell/internal/notify"
	"github.com/tskinner/inkwell/internal/push"
	"github.com/tskinner/inkwell/internal/store"
)

// noopNotifier satisfies blog.Notifier without any delivery.
type noopNotifier struct{}

func (noopNotifier) Dispatch(recipients []model.User, payload push.Payload) []notify.Outcome {
	return nil
}

func setupPostHandler(t *testing.T) (*PostHandler, *store.UserStore, *store.PostStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	ps := store.NewPostStore(db)
	svc := blog.NewService(ps, us, noopNotifier{}, nil, slog.Default())
	return NewPostHandler(svc, us, slog.Default()), us, ps
}

func authedForm(t *testing.T, method, path string, form url.Values, userID int64) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: userID}))
}

func TestPostCreateRedirects(t *testing.T) {
	h, us, ps := setupPostHandler(t)

	user, _ := us.Create("alice@example.com", "Alice", "h", false)

	rec := httptest.NewRecorder()
	h.Create(rec, authedForm(t, "POST", "/posts", url.Values{
		"title":   {"First Post"},
		"content": {"Hello, world."},
	}, user.ID))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/posts?created=1" {
		t.Errorf("Location = %q, want %q", loc, "/posts?created=1")
	}

	posts, _ := ps.List()
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].Title != "First Post" || posts[0].AuthorID != user.ID {
		t.Errorf("post = %+v", posts[0])
	}
}

func TestPostCreateInvalidRerendersForm(t *testing.T) {
	h, us, ps := setupPostHandler(t)

	user, _ := us.Create("alice@example.com", "Alice", "h", false)

	rec := httptest.NewRecorder()
	h.Create(rec, authedForm(t, "POST", "/posts", url.Values{
		"title":   {""},
		"content": {"body"},
	}, user.ID))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "title is required") {
		t.Errorf("expected validation message in body")
	}
	if posts, _ := ps.List(); len(posts) != 0 {
		t.Error("invalid post must not be persisted")
	}
}

func TestPostShowNotFound(t *testing.T) {
	h, us, _ := setupPostHandler(t)

	user, _ := us.Create("alice@example.com", "Alice", "h", false)

	req := authedForm(t, "GET", "/posts/999", nil, user.ID)
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostUpdateForbiddenForNonOwner(t *testing.T) {
	h, us, ps := setupPostHandler(t)

	owner, _ := us.Create("alice@example.com", "Alice", "h", false)
	other, _ := us.Create("bob@example.com", "Bob", "h", false)
	post, _ := ps.Create("Original", "body", owner.ID)

	req := authedForm(t, "PUT", "/posts/1", url.Values{
		"title": {"Hijacked"}, "content": {"body"},
	}, other.ID)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	got, _ := ps.GetByID(post.ID)
	if got.Title != "Original" {
		t.Errorf("title = %q, post changed by non-owner", got.Title)
	}
}

func TestPostUpdateViaMethodOverride(t *testing.T) {
	h, us, ps := setupPostHandler(t)

	owner, _ := us.Create("alice@example.com", "Alice", "h", false)
	post, _ := ps.Create("Original", "body", owner.ID)

	req := authedForm(t, "POST", "/posts/1", url.Values{
		"_method": {"PUT"}, "title": {"Edited"}, "content": {"new body"},
	}, owner.ID)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.FormMethodOverride(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	got, _ := ps.GetByID(post.ID)
	if got.Title != "Edited" {
		t.Errorf("title = %q, want %q", got.Title, "Edited")
	}
}

func TestPostDeleteForbiddenForNonOwner(t *testing.T) {
	h, us, ps := setupPostHandler(t)

	owner, _ := us.Create("alice@example.com", "Alice", "h", false)
	other, _ := us.Create("bob@example.com", "Bob", "h", false)
	post, _ := ps.Create("Keep", "body", owner.ID)

	req := authedForm(t, "DELETE", "/posts/1", nil, other.ID)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if got, _ := ps.GetByID(post.ID); got == nil {
		t.Fatal("post deleted by non-owner")
	}

	// Owner delete succeeds
	req = authedForm(t, "DELETE", "/posts/1", nil, owner.ID)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got, _ := ps.GetByID(post.ID); got != nil {
		t.Error("expected post gone")
	}
}

func TestPostIndexShowsAuthors(t *testing.T) {
	h, us, ps := setupPostHandler(t)

	alice, _ := us.Create("alice@example.com", "Alice", "h", false)
	ps.Create("Alice writes", "body", alice.ID)

	req := authedForm(t, "GET", "/posts", nil, alice.ID)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Alice writes") {
		t.Error("expected post title in index")
	}
	if !strings.Contains(body, "by Alice") {
		t.Error("expected author name in index")
	}
}
