package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tskinner/inkwell/internal/auth"
	"github.com/tskinner/inkwell/internal/store"
)

const (
	sessionCookieName = "inkwell_session"
	minPasswordLen    = 8
)

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	templates    *template.Template
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		templates:    parseTemplates(),
		logger:       logger,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "login.html", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	renderError := func(msg string) {
		w.WriteHeader(http.StatusUnauthorized)
		h.templates.ExecuteTemplate(w, "login.html", map[string]any{
			"Email": email,
			"Error": msg,
		})
	}

	if email == "" || password == "" {
		renderError("Email and password are required.")
		return
	}

	user, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		renderError("Internal error. Please try again.")
		return
	}
	// Same message for unknown email and wrong password
	if user == nil {
		renderError("Invalid email or password.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		renderError("Invalid email or password.")
		return
	}

	h.startSession(w, r, user.ID)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "register.html", nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	renderError := func(status int, msg string) {
		w.WriteHeader(status)
		h.templates.ExecuteTemplate(w, "register.html", map[string]any{
			"Name":  name,
			"Email": email,
			"Error": msg,
		})
	}

	if name == "" || email == "" || password == "" {
		renderError(http.StatusBadRequest, "Name, email, and password are required.")
		return
	}
	if len(password) < minPasswordLen {
		renderError(http.StatusBadRequest, "Password must be at least 8 characters.")
		return
	}

	existing, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		renderError(http.StatusInternalServerError, "Internal error. Please try again.")
		return
	}
	if existing != nil {
		renderError(http.StatusConflict, "An account with that email already exists.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		renderError(http.StatusInternalServerError, "Internal error. Please try again.")
		return
	}

	// The first account on a fresh instance becomes the admin.
	count, err := h.userStore.Count()
	if err != nil {
		h.logger.Error("count users", "error", err)
		renderError(http.StatusInternalServerError, "Internal error. Please try again.")
		return
	}

	user, err := h.userStore.Create(email, name, string(hash), count == 0)
	if err != nil {
		h.logger.Error("create user", "error", err)
		renderError(http.StatusInternalServerError, "Internal error. Please try again.")
		return
	}

	h.startSession(w, r, user.ID)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int64) {
	sess, err := h.sessionStore.Create(userID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessionStore.Delete(ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
