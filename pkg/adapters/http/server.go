// Package http exposes a story library as a JSON API with server-sent change events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
	"github.com/aretw0/quire/pkg/links"
	"github.com/aretw0/quire/pkg/stories"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxImportSize bounds the body of POST /import.
const maxImportSize = 32 << 20

// Library is the part of quire.Library the server drives.
type Library interface {
	Stories() []*domain.Story
	Story(id string) (*domain.Story, error)
	Formats() []*domain.StoryFormat
	AppInfo() domain.AppInfo
	Dispatch(action stories.Action)
	Subscribe(fn quire.Listener) func()
	NewStory(name string) (*domain.Story, error)
	CreateUntitledPassage(storyID string, left, top float64) (*domain.Passage, error)
	RenamePassage(storyID, passageID, name string) error
	Stats(storyID string) (links.Stats, error)
	Links(storyID string) (*links.Graph, error)
	Publish(ctx context.Context, storyID string) (string, error)
	Test(ctx context.Context, storyID, startPassageID string) (string, error)
	Proof(ctx context.Context, storyID string) (string, error)
	Archive() string
	ImportHTML(r io.Reader, opts quire.ImportOptions) ([]*domain.Story, error)
}

var _ Library = (*quire.Library)(nil)

// Server serves the story API.
type Server struct {
	Library  Library
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	api      routers.Router
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the gatherer at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRequestValidation checks requests against the OpenAPI document before they
// reach a handler. See NewSpecRouter.
func WithRequestValidation(router routers.Router) Option {
	return func(s *Server) {
		s.api = router
	}
}

// NewHandler creates a new HTTP handler for the library. Every dispatched action is
// broadcast to /events subscribers until the returned stop function is called.
func NewHandler(lib Library, opts ...Option) (http.Handler, func()) {
	s := &Server{
		Library: lib,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	stop := lib.Subscribe(s.broadcast)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	if s.api != nil {
		r.Use(validateRequests(s.api, s.logger))
	}

	r.Get("/openapi.yaml", serveSpec)
	r.Get("/swagger", serveSwagger)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/formats", s.ListFormats)
	r.Get("/archive", s.GetArchive)
	r.Post("/import", s.Import)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/stories", func(r chi.Router) {
		r.Get("/", s.ListStories)
		r.Post("/", s.CreateStory)
		r.Route("/{storyID}", func(r chi.Router) {
			r.Get("/", s.GetStory)
			r.Patch("/", s.UpdateStory)
			r.Delete("/", s.DeleteStory)
			r.Get("/stats", s.GetStats)
			r.Get("/links", s.GetLinks)
			r.Get("/publish", s.PublishStory)
			r.Get("/test", s.TestStory)
			r.Get("/proof", s.ProofStory)
			r.Post("/passages", s.CreatePassage)
			r.Patch("/passages/{passageID}", s.UpdatePassage)
			r.Delete("/passages/{passageID}", s.DeletePassage)
		})
	})

	return r, stop
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StorySummary is the list view of a story.
type StorySummary struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Format     domain.FormatRef `json:"format"`
	Passages   int              `json:"passages"`
	LastUpdate time.Time        `json:"lastUpdate"`
}

// LinkView is one edge of GET /stories/{id}/links.
type LinkView struct {
	From   string     `json:"from"`
	To     string     `json:"to,omitempty"`
	Target string     `json:"target"`
	Kind   links.Kind `json:"kind"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	app := s.Library.AppInfo()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     app.Name,
		"version": app.Version,
	})
}

// ListStories handles GET /stories.
func (s *Server) ListStories(w http.ResponseWriter, r *http.Request) {
	list := s.Library.Stories()
	out := make([]StorySummary, 0, len(list))
	for _, st := range list {
		out = append(out, StorySummary{
			ID:         st.ID,
			Name:       st.Name,
			Format:     st.Format(),
			Passages:   len(st.Passages),
			LastUpdate: st.LastUpdate,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// CreateStory handles POST /stories with a {"name": "..."} body.
func (s *Server) CreateStory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Name == "" {
		body.Name = domain.DefaultStoryName
	}
	story, err := s.Library.NewStory(body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, story)
}

// GetStory handles GET /stories/{storyID}.
func (s *Server) GetStory(w http.ResponseWriter, r *http.Request) {
	story, err := s.Library.Story(chi.URLParam(r, "storyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, story)
}

// UpdateStory handles PATCH /stories/{storyID} with a partial story body.
func (s *Server) UpdateStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storyID")
	var props stories.StoryProps
	if !s.decode(w, r, &props) {
		return
	}
	before, err := s.Library.Story(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.Library.Dispatch(stories.UpdateStory{StoryID: id, Props: props})
	after, err := s.Library.Story(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if props.Name != nil && after.Name != *props.Name && before == after {
		s.writeError(w, fmt.Errorf("story %q: %w", *props.Name, domain.ErrNameTaken))
		return
	}
	s.writeJSON(w, http.StatusOK, after)
}

// DeleteStory handles DELETE /stories/{storyID}.
func (s *Server) DeleteStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storyID")
	if _, err := s.Library.Story(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.Library.Dispatch(stories.DeleteStory{StoryID: id})
	w.WriteHeader(http.StatusNoContent)
}

// CreatePassage handles POST /stories/{storyID}/passages. The passage gets an unused
// default name and is placed near the requested position.
func (s *Server) CreatePassage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Left float64 `json:"left"`
		Top  float64 `json:"top"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	p, err := s.Library.CreateUntitledPassage(chi.URLParam(r, "storyID"), body.Left, body.Top)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

// UpdatePassage handles PATCH /stories/{storyID}/passages/{passageID}. A name change
// is a rename: links to the passage are rewritten.
func (s *Server) UpdatePassage(w http.ResponseWriter, r *http.Request) {
	storyID, passageID := chi.URLParam(r, "storyID"), chi.URLParam(r, "passageID")
	var props stories.PassageProps
	if !s.decode(w, r, &props) {
		return
	}
	story, err := s.Library.Story(storyID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if story.PassageByID(passageID) == nil {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrPassageNotFound, passageID))
		return
	}

	if props.Name != nil {
		if err := s.Library.RenamePassage(storyID, passageID, *props.Name); err != nil {
			s.writeError(w, err)
			return
		}
		props.Name = nil
	}
	if len(props.Fields()) > 0 {
		s.Library.Dispatch(stories.UpdatePassage{StoryID: storyID, PassageID: passageID, Props: props})
	}

	story, err = s.Library.Story(storyID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, story.PassageByID(passageID))
}

// DeletePassage handles DELETE /stories/{storyID}/passages/{passageID}.
func (s *Server) DeletePassage(w http.ResponseWriter, r *http.Request) {
	storyID, passageID := chi.URLParam(r, "storyID"), chi.URLParam(r, "passageID")
	story, err := s.Library.Story(storyID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if story.PassageByID(passageID) == nil {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrPassageNotFound, passageID))
		return
	}
	s.Library.Dispatch(stories.DeletePassage{StoryID: storyID, PassageID: passageID})
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /stories/{storyID}/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Library.Stats(chi.URLParam(r, "storyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// GetLinks handles GET /stories/{storyID}/links.
func (s *Server) GetLinks(w http.ResponseWriter, r *http.Request) {
	g, err := s.Library.Links(chi.URLParam(r, "storyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]LinkView, 0, len(g.Links))
	for _, l := range g.Links {
		v := LinkView{From: l.From.ID, Target: l.Target, Kind: l.Kind}
		if l.To != nil {
			v.To = l.To.ID
		}
		out = append(out, v)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// PublishStory handles GET /stories/{storyID}/publish.
func (s *Server) PublishStory(w http.ResponseWriter, r *http.Request) {
	page, err := s.Library.Publish(r.Context(), chi.URLParam(r, "storyID"))
	s.writeHTML(w, page, err)
}

// TestStory handles GET /stories/{storyID}/test?start=passageID.
func (s *Server) TestStory(w http.ResponseWriter, r *http.Request) {
	page, err := s.Library.Test(r.Context(), chi.URLParam(r, "storyID"), r.URL.Query().Get("start"))
	s.writeHTML(w, page, err)
}

// ProofStory handles GET /stories/{storyID}/proof.
func (s *Server) ProofStory(w http.ResponseWriter, r *http.Request) {
	page, err := s.Library.Proof(r.Context(), chi.URLParam(r, "storyID"))
	s.writeHTML(w, page, err)
}

// GetArchive handles GET /archive.
func (s *Server) GetArchive(w http.ResponseWriter, r *http.Request) {
	s.writeHTML(w, s.Library.Archive(), nil)
}

// Import handles POST /import?replace=true with published or archived HTML as body.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	replace, _ := strconv.ParseBool(r.URL.Query().Get("replace"))
	imported, err := s.Library.ImportHTML(io.LimitReader(r.Body, maxImportSize), quire.ImportOptions{Replace: replace})
	if err != nil {
		http.Error(w, fmt.Sprintf("Import error: %v", err), http.StatusBadRequest)
		s.logger.Warn("Import: Invalid document", "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, imported)
}

// ListFormats handles GET /formats.
func (s *Server) ListFormats(w http.ResponseWriter, r *http.Request) {
	pool := s.Library.Formats()
	if r.URL.Query().Get("newest") == "true" {
		pool = formats.Newest(pool)
	}
	s.writeJSON(w, http.StatusOK, pool)
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeHTML(w http.ResponseWriter, page string, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrStoryNotFound), errors.Is(err, domain.ErrPassageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNameTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNoStartPassage),
		errors.Is(err, domain.ErrStartPassageNotFound),
		errors.Is(err, domain.ErrFormatHasNoSource),
		errors.Is(err, domain.ErrFormatNotFound):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}
