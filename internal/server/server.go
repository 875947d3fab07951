package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/review"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultMaxUploadBytes bounds uploaded drafts when Options leaves it zero.
const DefaultMaxUploadBytes = 10 << 20

const shutdownTimeout = 5 * time.Second

// Reviewer runs reviews. *app.App implements it.
type Reviewer interface {
	ReviewSection(ctx context.Context, text string) (*review.Result, error)
	ReviewDocument(ctx context.Context, paragraphs []string, progress func(review.Progress)) (*review.Result, error)
}

// Options configures a Server.
type Options struct {
	Logger         *zap.Logger
	MaxUploadBytes int64
}

// Server is the web surface: a form for one section, a draft upload and a
// websocket that streams session progress. Reviews run one at a time.
type Server struct {
	reviewer  Reviewer
	log       *zap.Logger
	maxUpload int64
	pages     *template.Template

	// mu serialises reviews.
	mu sync.Mutex
}

// New creates a server around reviewer.
func New(reviewer Reviewer, opts Options) (*Server, error) {
	if reviewer == nil {
		return nil, errors.New("a reviewer is required")
	}
	pages, err := template.New("pages").Funcs(template.FuncMap{
		"scoreClass": scoreClass,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{
		reviewer:  reviewer,
		log:       logger.Named("server"),
		maxUpload: maxUpload,
		pages:     pages,
	}, nil
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /review", s.handleReview)
	mux.HandleFunc("POST /document", s.handleDocument)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.recoverer(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-errCh
		return nil
	}
}

// recoverer turns a handler panic into a logged 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.log.Error("handler panic", zap.Any("panic", v), zap.String("path", r.URL.Path))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func scoreClass(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}
