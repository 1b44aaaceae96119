// Package web is the form-driven HTML host. Every action is a POST that
// redirects back to the page, which is re-rendered from the store; the few
// JSON routes under /api serve scripts and widgets.
package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
)

//go:embed templates/*.html
var templates embed.FS

// Options configures a Server.
type Options struct {
	// Window is the default reminder look-ahead.
	Window time.Duration
	// Sort is the default list order.
	Sort agenda.Strategy
	// AllowedOrigins is the CORS allow-list for /api.
	AllowedOrigins []string
	Log            *log.Logger
}

// Server renders the agenda page and handles its forms.
type Server struct {
	svc    *agenda.Service
	opts   Options
	tmpl   *template.Template
	log    *log.Logger
	router chi.Router
}

func NewServer(svc *agenda.Service, opts Options) *Server {
	if opts.Window <= 0 {
		opts.Window = agenda.DefaultWindow
	}
	if opts.Log == nil {
		opts.Log = log.Default()
	}
	s := &Server{
		svc:  svc,
		opts: opts,
		tmpl: template.Must(template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")),
		log:  opts.Log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler)
	r.Get("/", s.handleIndex)

	r.Post("/tasks", s.handleCreateTask)
	r.Post("/tasks/{id}", s.handleEditTask)
	r.Post("/tasks/{id}/toggle", s.handleToggleTask)
	r.Post("/tasks/{id}/up", s.handleMove(s.svc.MoveUp))
	r.Post("/tasks/{id}/down", s.handleMove(s.svc.MoveDown))
	r.Post("/tasks/{id}/delete", s.handleDeleteTask)

	r.Post("/links", s.handleCreateLink)
	r.Post("/links/{id}", s.handleEditLink)
	r.Post("/links/{id}/delete", s.handleDeleteLink)

	r.Post("/reminders/check", s.handleCheckReminders)

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
		api.Get("/tasks", s.handleAPITasks)
		api.Post("/reminders/check", s.handleAPICheckReminders)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the web server.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return "?"
		}
		return t.Format("2006-01-02 15:04")
	},
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"clock": func(t time.Time) string { return t.Format("15:04") },
	"marker": func(m agenda.Marker) string {
		if s := m.String(); s != "" {
			return s
		}
		return "-"
	},
	"validURL": agenda.ValidURL,
}
