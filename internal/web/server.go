// Package web serves the topten pages over HTTP.
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
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/roach88/topten/internal/catalog"
	"github.com/roach88/topten/internal/movie"
)

//go:embed templates/*.html
var templateFS embed.FS

// Workflows is the subset of *catalog.Service the handlers call.
type Workflows interface {
	Rank(ctx context.Context) ([]movie.Record, error)
	Search(ctx context.Context, in catalog.AddInput) ([]movie.Candidate, error)
	Select(ctx context.Context, externalID int64) (catalog.Outcome, error)
	Edit(ctx context.Context, title string, in catalog.EditInput) error
	Delete(ctx context.Context, title string) error
}

// Server routes requests to the catalog workflows and renders the results.
type Server struct {
	svc    Workflows
	tmpl   *template.Template
	logger *slog.Logger
	ids    IDGenerator
	router *httprouter.Router
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger used for access and error logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithIDGenerator replaces the UUIDv7 request ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Server) { s.ids = g }
}

// NewServer parses the embedded templates and registers the routes.
func NewServer(svc Workflows, opts ...Option) (*Server, error) {
	tmpl, err := template.New("").
		Funcs(template.FuncMap{"pathEscape": url.PathEscape}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		svc:    svc,
		tmpl:   tmpl,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := httprouter.New()
	r.GET("/", s.handleList)
	r.GET("/add", s.handleAddForm)
	r.POST("/add", s.handleAddSubmit)
	r.GET("/select/:id", s.handleSelect)
	r.POST("/select/:id", s.handleSelect)
	r.GET("/edit/*title", s.handleEditForm)
	r.POST("/edit/*title", s.handleEditSubmit)
	r.GET("/delete/*title", s.handleDelete)
	r.POST("/delete/*title", s.handleDelete)
	r.PanicHandler = s.handlePanic
	s.router = r

	return s, nil
}

// Handler returns the router wrapped in the request ID and access log
// middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.router))
}

type listPage struct {
	PageTitle string
	Movies    []movie.Record
}

type formPage struct {
	PageTitle string
	Title     string
	Errors    map[string]string
}

type selectPage struct {
	PageTitle  string
	Query      string
	Candidates []movie.Candidate
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	records, err := s.svc.Rank(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", listPage{PageTitle: "Home", Movies: records})
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.render(w, r, http.StatusOK, "add.html", formPage{PageTitle: "Add Movie"})
}

func (s *Server) handleAddSubmit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in := catalog.AddInput{Title: r.PostFormValue("title")}

	candidates, err := s.svc.Search(r.Context(), in)
	if err != nil {
		if fields, ok := validationFields(err); ok {
			s.render(w, r, http.StatusUnprocessableEntity, "add.html", formPage{PageTitle: "Add Movie", Errors: fields})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "select.html", selectPage{
		PageTitle:  "Select Movie",
		Query:      strings.TrimSpace(in.Title),
		Candidates: candidates,
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	out, err := s.svc.Select(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if out.Next == catalog.NextEdit {
		http.Redirect(w, r, editPath(out.Title), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleEditForm always renders a blank form; current values are not
// pre-filled.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.render(w, r, http.StatusOK, "edit.html", formPage{PageTitle: "Edit Movie", Title: titleParam(ps)})
}

func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	title := titleParam(ps)
	in := catalog.EditInput{
		Rating: r.PostFormValue("rating"),
		Review: r.PostFormValue("review"),
	}

	if err := s.svc.Edit(r.Context(), title, in); err != nil {
		if fields, ok := validationFields(err); ok {
			s.render(w, r, http.StatusUnprocessableEntity, "edit.html", formPage{PageTitle: "Edit Movie", Title: title, Errors: fields})
			return
		}
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.svc.Delete(r.Context(), titleParam(ps)); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render executes into a buffer first so a template failure still produces
// a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// serverError logs err and answers with a generic 500. Not-found titles and
// upstream failures take this path too.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", RequestID(r.Context()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func validationFields(err error) (map[string]string, bool) {
	var ve *movie.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

// titleParam returns the catch-all title without its leading slash. Titles
// may themselves contain slashes.
func titleParam(ps httprouter.Params) string {
	return strings.TrimPrefix(ps.ByName("title"), "/")
}

func editPath(title string) string {
	return "/edit/" + url.PathEscape(title)
}
