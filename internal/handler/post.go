package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/tskinner/inkwell/internal/auth"
	"github.com/tskinner/inkwell/internal/blog"
	"github.com/tskinner/inkwell/internal/model"
	"github.com/tskinner/inkwell/internal/store"
)

type PostHandler struct {
	svc       *blog.Service
	userStore *store.UserStore
	templates *template.Template
	logger    *slog.Logger
}

func NewPostHandler(svc *blog.Service, us *store.UserStore, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:       svc,
		userStore: us,
		templates: parseTemplates(),
		logger:    logger,
	}
}

type postView struct {
	Post       model.Post
	AuthorName string
	Mine       bool
}

// Index handles GET /posts.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("list posts", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	names := make(map[int64]string)
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		name, ok := names[p.AuthorID]
		if !ok {
			if u, err := h.userStore.GetByID(p.AuthorID); err == nil && u != nil {
				name = u.Name
			}
			names[p.AuthorID] = name
		}
		views = append(views, postView{Post: p, AuthorName: name, Mine: p.AuthorID == userID})
	}

	var flash string
	switch {
	case r.URL.Query().Get("created") == "1":
		flash = "Blog post created successfully."
	case r.URL.Query().Get("updated") == "1":
		flash = "Blog post updated successfully."
	case r.URL.Query().Get("deleted") == "1":
		flash = "Blog post deleted successfully."
	}

	h.templates.ExecuteTemplate(w, "posts_index.html", map[string]any{
		"Posts": views,
		"Flash": flash,
	})
}

// NewForm handles GET /posts/new.
func (h *PostHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "posts_new.html", nil)
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	title := r.FormValue("title")
	content := r.FormValue("content")

	_, err := h.svc.CreatePost(r.Context(), userID, title, content)
	if err != nil {
		if errors.Is(err, blog.ErrValidation) {
			w.WriteHeader(http.StatusBadRequest)
			h.templates.ExecuteTemplate(w, "posts_new.html", map[string]any{
				"Title":   title,
				"Content": content,
				"Error":   validationMessage(err),
			})
			return
		}
		h.logger.Error("create post", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts?created=1", http.StatusSeeOther)
}

// Show handles GET /posts/{id}.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err, "get post")
		return
	}

	var authorName string
	if u, err := h.userStore.GetByID(post.AuthorID); err == nil && u != nil {
		authorName = u.Name
	}

	h.templates.ExecuteTemplate(w, "posts_show.html", map[string]any{
		"Post":       post,
		"AuthorName": authorName,
		"Mine":       post.AuthorID == auth.UserID(r.Context()),
	})
}

// EditForm handles GET /posts/{id}/edit. Owner-only; the underlying update
// enforces ownership again.
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err, "get post")
		return
	}
	if post.AuthorID != auth.UserID(r.Context()) {
		http.Error(w, "Unauthorized to edit this blog.", http.StatusForbidden)
		return
	}

	h.templates.ExecuteTemplate(w, "posts_edit.html", map[string]any{"Post": post})
}

// Update handles PUT /posts/{id} and the POST form fallback with
// _method=PUT.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	userID := auth.UserID(r.Context())
	title := r.FormValue("title")
	content := r.FormValue("content")

	post, err := h.svc.UpdatePost(r.Context(), userID, id, title, content)
	if err != nil {
		if errors.Is(err, blog.ErrValidation) {
			existing, gerr := h.svc.GetPost(r.Context(), id)
			if gerr != nil {
				h.renderError(w, r, gerr, "get post")
				return
			}
			existing.Title = title
			existing.Content = content
			w.WriteHeader(http.StatusBadRequest)
			h.templates.ExecuteTemplate(w, "posts_edit.html", map[string]any{
				"Post":  existing,
				"Error": validationMessage(err),
			})
			return
		}
		h.renderError(w, r, err, "update post")
		return
	}

	http.Redirect(w, r, "/posts?updated=1", http.StatusSeeOther)
	_ = post
}

// Delete handles DELETE /posts/{id} and the POST /posts/{id}/delete fallback.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.svc.DeletePost(r.Context(), auth.UserID(r.Context()), id); err != nil {
		h.renderError(w, r, err, "delete post")
		return
	}

	http.Redirect(w, r, "/posts?deleted=1", http.StatusSeeOther)
}

// FormMethodOverride routes POST /posts/{id} with _method=PUT to Update so
// plain HTML forms can edit posts.
func (h *PostHandler) FormMethodOverride(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("_method") == "PUT" {
		h.Update(w, r)
		return
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func (h *PostHandler) renderError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, blog.ErrForbidden):
		http.Error(w, "Unauthorized to modify this blog.", http.StatusForbidden)
	default:
		h.logger.Error(op, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// validationMessage strips the sentinel prefix for display.
func validationMessage(err error) string {
	msg := err.Error()
	const prefix = "validation failed: "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
