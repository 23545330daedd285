package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzhttp"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Status is the payload served on the status endpoint.
type Status struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	UptimeSec int64  `json:"uptime_seconds"`
}

// Server is the companion web server: a landing page, a command reference
// page, and a small status endpoint for uptime monitors.
type Server struct {
	srv       *http.Server
	logger    *zap.Logger
	templates *template.Template
	startedAt time.Time
}

// NewServer creates a web server listening on the given address.
func NewServer(addr string, logger *zap.Logger) (*Server, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	server := &Server{
		logger:    logger.Named("web"),
		templates: templates,
		startedAt: time.Now(),
	}

	router := bunrouter.New()
	router.GET("/", server.handleIndex)
	router.GET("/commands", server.handleCommands)
	router.GET("/api/status", server.handleStatus)

	server.srv = &http.Server{
		Addr:              addr,
		Handler:           gzhttp.GzipHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, nil
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleIndex(w http.ResponseWriter, req bunrouter.Request) error {
	return s.renderTemplate(w, "index.html")
}

func (s *Server) handleCommands(w http.ResponseWriter, req bunrouter.Request) error {
	return s.renderTemplate(w, "commands.html")
}

func (s *Server) handleStatus(w http.ResponseWriter, req bunrouter.Request) error {
	body, err := sonic.Marshal(Status{
		Name:      "pagebot",
		Status:    "ok",
		UptimeSec: int64(time.Since(s.startedAt).Seconds()),
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(body)

	return err
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := s.templates.ExecuteTemplate(w, name, nil); err != nil {
		s.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
		return err
	}

	return nil
}
