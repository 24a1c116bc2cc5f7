package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/coursereg/coursereg-go/internal/handler"
	"github.com/coursereg/coursereg-go/internal/middleware"
	"github.com/coursereg/coursereg-go/internal/web"
)

// Options configures the router's cross-cutting middleware.
type Options struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Handlers groups the endpoint handlers the router dispatches to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Courses  *handler.CourseHandler
	Sessions middleware.Authorizer
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	stop       chan struct{}
}

// New constructs a Server listening on addr.
func New(addr string, h Handlers, opts Options, logger zerolog.Logger) *Server {
	stop := make(chan struct{})
	router := NewRouter(h, opts, logger, stop)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		stop:   stop,
	}
}

// NewRouter wires every route. Background work started by middleware ends
// when stop is closed.
func NewRouter(h Handlers, opts Options, logger zerolog.Logger, stop <-chan struct{}) chi.Router {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Logger(logger),
		chimw.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.Get("/health", handler.HandleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	r.Get("/register", web.Page("register.html"))
	r.Get("/login", web.Page("login.html"))
	r.Get("/logout", h.Auth.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, stop))
		r.Post("/register", h.Auth.HandleRegister)
		r.Post("/login", h.Auth.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageSession(h.Sessions, "/login"))
		r.Get("/home", web.Page("home.html"))
	})

	r.Route("/api/courses", func(r chi.Router) {
		r.Use(middleware.RequireSession(h.Sessions))
		r.Get("/", h.Courses.HandleList)
		r.Post("/register", h.Courses.HandleEnroll)
	})

	return r
}

// Router exposes the chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops background middleware work.
func (s *Server) Shutdown(ctx context.Context) error {
	defer close(s.stop)
	return s.httpServer.Shutdown(ctx)
}
