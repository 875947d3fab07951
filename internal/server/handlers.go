package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/playbook"
	"github.com/dshills/msareview/internal/review"
)

// page is the data behind index.html.
type page struct {
	Section  string
	FileName string
	Result   *review.Result
	Error    string
	Kind     review.ErrorKind
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, page{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, page{}, &review.InputError{Field: "form", Reason: err.Error()})
		return
	}
	section := r.PostFormValue("section")
	p := page{Section: section}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.reviewer.ReviewSection(r.Context(), section)
	if err != nil {
		s.renderError(w, p, err)
		return
	}
	s.log.Info("section reviewed",
		zap.String("run_id", res.RunID),
		zap.Int("findings", len(res.Findings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	p.Result = res
	s.render(w, http.StatusOK, p)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.renderError(w, page{}, &review.InputError{Field: "upload", Reason: err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderError(w, page{}, &review.InputError{Field: "upload", Reason: "no file was uploaded"})
		return
	}
	defer file.Close()
	p := page{FileName: header.Filename}

	data, err := io.ReadAll(file)
	if err != nil {
		s.renderError(w, p, &review.InputError{Field: "upload", Reason: err.Error()})
		return
	}
	paragraphs, err := parseDraft(header.Filename, data)
	if err != nil {
		s.renderError(w, p, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.reviewer.ReviewDocument(r.Context(), paragraphs, func(pr review.Progress) {
		s.log.Debug("session progress", zap.String("file", header.Filename), zap.Stringer("progress", pr))
	})
	if err != nil {
		s.renderError(w, p, err)
		return
	}
	s.log.Info("document reviewed",
		zap.String("run_id", res.RunID),
		zap.String("file", header.Filename),
		zap.Int("findings", len(res.Findings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	p.Result = res
	s.render(w, http.StatusOK, p)
}

// parseDraft accepts .docx and plain-text drafts.
func parseDraft(name string, data []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".txt", "":
	default:
		return nil, &review.InputError{Field: "upload", Reason: fmt.Sprintf("unsupported file type %q (want .docx or .txt)", filepath.Ext(name))}
	}
	paragraphs, err := playbook.Parse(name, data)
	if err != nil {
		return nil, &review.InputError{Field: "upload", Reason: err.Error()}
	}
	return paragraphs, nil
}

// renderError shows err inline on the form page, tagged with its kind.
func (s *Server) renderError(w http.ResponseWriter, p page, err error) {
	p.Kind = review.Kind(err)
	p.Error = err.Error()
	s.log.Warn("review failed", zap.String("kind", string(p.Kind)), zap.Error(err))
	s.render(w, statusFor(err), p)
}

func (s *Server) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, "index.html", p); err != nil {
		s.log.Error("rendering page", zap.Error(err))
	}
}

func statusFor(err error) int {
	switch review.Kind(err) {
	case review.KindInput:
		return http.StatusBadRequest
	case review.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
