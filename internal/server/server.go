package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tskinner/inkwell/internal/blog"
	"github.com/tskinner/inkwell/internal/handler"
	"github.com/tskinner/inkwell/internal/middleware"
	"github.com/tskinner/inkwell/internal/notify"
	"github.com/tskinner/inkwell/internal/push"
	"github.com/tskinner/inkwell/internal/store"
	"github.com/tskinner/inkwell/internal/websocket"
	"github.com/tskinner/inkwell/web"
)

type Server struct {
	db           *sql.DB
	hub          *websocket.Hub
	authH        *handler.AuthHandler
	postH        *handler.PostHandler
	pushH        *handler.PushHandler
	pageH        *handler.PageHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := websocket.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)

	pushSvc := push.NewService(pushCfg)
	dispatcher := notify.NewDispatcher(pushStore, pushSvc, logger.With("component", "push"))
	blogSvc := blog.NewService(postStore, userStore, dispatcher, hub, logger.With("component", "blog"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		postH:        handler.NewPostHandler(blogSvc, userStore, logger.With("component", "post")),
		pushH:        handler.NewPushHandler(pushStore, userStore, pushSvc, dispatcher, logger.With("component", "push_handler")),
		pageH:        handler.NewPageHandler(userStore, postStore, logger.With("component", "page")),
		sessionStore: sessionStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /login", s.authH.LoginPage)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /register", s.authH.RegisterPage)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.Handle("GET /static/", http.FileServer(http.FS(web.Static)))
	outerMux.HandleFunc("GET /icon.png", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, web.Static, "static/icon.png")
	})
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Pages
	mux.HandleFunc("GET /", s.pageH.Home)
	mux.HandleFunc("GET /dashboard", s.pageH.Dashboard)

	// Blog posts
	mux.HandleFunc("GET /posts", s.postH.Index)
	mux.HandleFunc("GET /posts/new", s.postH.NewForm)
	mux.HandleFunc("POST /posts", s.postH.Create)
	mux.HandleFunc("GET /posts/{id}", s.postH.Show)
	mux.HandleFunc("GET /posts/{id}/edit", s.postH.EditForm)
	mux.HandleFunc("PUT /posts/{id}", s.postH.Update)
	mux.HandleFunc("DELETE /posts/{id}", s.postH.Delete)
	// Plain HTML form fallbacks
	mux.HandleFunc("POST /posts/{id}", s.postH.FormMethodOverride)
	mux.HandleFunc("POST /posts/{id}/delete", s.postH.Delete)

	// Push notifications
	mux.HandleFunc("POST /push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /push/subscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /push/test", s.pushH.TestNotification)

	// WebSocket
	mux.HandleFunc("GET /ws", websocket.Handle(s.hub))
}
