// Package web serves the password-gated analysis form.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdulachik/litlens/internal/analysis"
	"github.com/abdulachik/litlens/internal/profile"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Analyzer runs one analysis for a visitor's credential against profile p.
type Analyzer interface {
	AnalyzeWith(ctx context.Context, p *profile.Profile, apiKey string, req analysis.Request) (*analysis.Result, error)
}

// Config holds configuration for the web server.
type Config struct {
	Analyzer Analyzer
	Profiles analysis.ProfileSource
	Gate     *Gate
	Sessions *SessionStore

	// CSRFKey enables CSRF protection when set.
	CSRFKey       []byte
	SecureCookies bool
}

// Server is the HTTP surface of the analyzer.
type Server struct {
	analyzer Analyzer
	profiles analysis.ProfileSource
	gate     *Gate
	sessions *SessionStore
	health   *Health
	pages    map[string]*template.Template

	csrfKey       []byte
	secureCookies bool
}

// NewServer creates a new Server and parses its page templates.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil || cfg.Profiles == nil || cfg.Gate == nil || cfg.Sessions == nil {
		return nil, errors.New("web: analyzer, profiles, gate and sessions are required")
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"gate", "analyze"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Server{
		analyzer:      cfg.Analyzer,
		profiles:      cfg.Profiles,
		gate:          cfg.Gate,
		sessions:      cfg.Sessions,
		health:        NewHealth(),
		pages:         pages,
		csrfKey:       cfg.CSRFKey,
		secureCookies: cfg.SecureCookies,
	}, nil
}

// Health returns the component health tracker.
func (s *Server) Health() *Health {
	return s.health
}

// Handler returns the routed handler with sessions and CSRF applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealthz)
	r.Get("/healthz/components", s.handleHealthComponents)

	r.Group(func(r chi.Router) {
		if !s.secureCookies {
			r.Use(markPlaintext)
		}
		if len(s.csrfKey) > 0 {
			r.Use(csrf.Protect(s.csrfKey,
				csrf.Secure(s.secureCookies),
				csrf.Path("/"),
				csrf.SameSite(csrf.SameSiteLaxMode),
			))
		}
		r.Use(s.sessions.Middleware)

		r.Get("/", s.handleIndex)
		r.Post("/gate", s.handleGate)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/export", s.handleExport)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown web server: %w", err)
	}
	return nil
}

// markPlaintext tells the CSRF layer the request arrived over plain HTTP so
// it skips the TLS-only referer check.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// requireAuth sends visitors who have not passed the gate back to it.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())
		if sess == nil || !sess.Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data *pageData) {
	buf := &bytes.Buffer{}
	if err := s.pages[page].ExecuteTemplate(buf, "layout", data); err != nil {
		slog.Error("template execution failed", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
