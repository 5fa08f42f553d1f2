package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/tskinner/inkwell/internal/auth"
	"github.com/tskinner/inkwell/internal/store"
)

type PageHandler struct {
	userStore *store.UserStore
	postStore *store.PostStore
	templates *template.Template
	logger    *slog.Logger
}

func NewPageHandler(us *store.UserStore, ps *store.PostStore, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		userStore: us,
		postStore: ps,
		templates: parseTemplates(),
		logger:    logger,
	}
}

// Home handles GET /.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// Dashboard handles GET /dashboard.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.userStore.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("dashboard user lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	posts, err := h.postStore.ListByAuthor(userID)
	if err != nil {
		h.logger.Error("dashboard posts", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "dashboard.html", map[string]any{
		"User":  user,
		"Posts": posts,
	})
}
