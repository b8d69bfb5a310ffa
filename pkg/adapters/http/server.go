package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Layout is the part of the layout manager exposed over HTTP.
type Layout interface {
	Output() (string, error)
	Snapshot() (*domain.Snapshot, error)
	SetLayout(name string) error
	SetData(v any) error
	SetRegion(region, tmpl string) error
	ClearRegion(region string) error
	Regions() (map[string]string, error)
	Save(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Apply(snap *domain.Snapshot) error
	Snapshots(ctx context.Context) ([]string, error)
	DeleteSnapshot(ctx context.Context, id string) error
	Templates(ctx context.Context) ([]string, error)
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server serves a Layout and streams its changes.
type Server struct {
	Layout  Layout
	Streams *StreamManager
	Reloads *StreamManager

	mu      sync.Mutex
	logger  *slog.Logger
	metrics http.Handler

	ctx       context.Context
	watchOnce sync.Once
	watchErr  error
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithContext bounds the shared template watch; it stops when ctx ends.
func WithContext(ctx context.Context) Option {
	return func(s *Server) {
		s.ctx = ctx
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the layout.
func NewHandler(l Layout, opts ...Option) http.Handler {
	s := &Server{Layout: l, logger: slog.New(slog.DiscardHandler), ctx: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	s.Reloads = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/render", s.Render)
	r.Get("/state", s.GetState)
	r.Get("/templates", s.GetTemplates)
	r.Put("/template", s.PutTemplate)
	r.Put("/data", s.PutData)
	r.Route("/regions", func(r chi.Router) {
		r.Get("/", s.GetRegions)
		r.Put("/{region}", s.PutRegion)
		r.Delete("/{region}", s.DeleteRegion)
	})
	r.Get("/snapshots", s.ListSnapshots)
	r.Route("/snapshots/{id}", func(r chi.Router) {
		r.Post("/", s.SaveSnapshot)
		r.Delete("/", s.DeleteSnapshot)
		r.Post("/restore", s.RestoreSnapshot)
	})
	r.Get("/events", s.SubscribeEvents)
	r.Get("/events/reload", s.SubscribeReload)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type templateRequest struct {
	Template string `json:"template"`
}

// Render handles GET /render.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	out, err := s.Layout.Output()
	if err != nil {
		s.writeError(w, "Render", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, out)
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Layout.Snapshot()
	if err != nil {
		s.writeError(w, "GetState", err)
		return
	}
	s.writeJSON(w, snap)
}

// GetTemplates handles GET /templates.
func (s *Server) GetTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.Layout.Templates(r.Context())
	if err != nil {
		s.writeError(w, "GetTemplates", err)
		return
	}
	s.writeJSON(w, names)
}

// PutTemplate handles PUT /template.
func (s *Server) PutTemplate(w http.ResponseWriter, r *http.Request) {
	var body templateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutTemplate: Invalid request body", "err", err)
		return
	}
	s.mutate(w, "PutTemplate", func() error {
		return s.Layout.SetLayout(body.Template)
	})
}

// PutData handles PUT /data. The body is any JSON value.
func (s *Server) PutData(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutData: Invalid request body", "err", err)
		return
	}
	s.mutate(w, "PutData", func() error {
		return s.Layout.SetData(body)
	})
}

// GetRegions handles GET /regions.
func (s *Server) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.Layout.Regions()
	if err != nil {
		s.writeError(w, "GetRegions", err)
		return
	}
	s.writeJSON(w, regions)
}

// PutRegion handles PUT /regions/{region}.
func (s *Server) PutRegion(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	var body templateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutRegion: Invalid request body", "err", err, "region", region)
		return
	}
	s.mutate(w, "PutRegion", func() error {
		return s.Layout.SetRegion(region, body.Template)
	})
}

// DeleteRegion handles DELETE /regions/{region}.
func (s *Server) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	s.mutate(w, "DeleteRegion", func() error {
		return s.Layout.ClearRegion(region)
	})
}

// SaveSnapshot handles POST /snapshots/{id}.
func (s *Server) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Layout.Save(r.Context(), id); err != nil {
		s.writeError(w, "SaveSnapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSnapshots handles GET /snapshots.
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Layout.Snapshots(r.Context())
	if err != nil {
		s.writeError(w, "ListSnapshots", err)
		return
	}
	s.writeJSON(w, ids)
}

// DeleteSnapshot handles DELETE /snapshots/{id}.
func (s *Server) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.Layout.DeleteSnapshot(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteSnapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreSnapshot handles POST /snapshots/{id}/restore.
func (s *Server) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, "RestoreSnapshot", func() error {
		return s.Layout.Restore(r.Context(), id)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	})
}

// mutate applies fn, broadcasts the resulting snapshot diff and replies
// with the new state. A change that fails to apply or render is rolled
// back, so the layout keeps its last good state.
func (s *Server) mutate(w http.ResponseWriter, op string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.Layout.Snapshot()
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	if err := fn(); err != nil {
		s.rollback(op, before)
		s.writeError(w, op, err)
		return
	}
	// Render so a failing template is reported to the caller that set it.
	if _, err := s.Layout.Output(); err != nil {
		s.rollback(op, before)
		s.writeError(w, op, err)
		return
	}
	after, err := s.Layout.Snapshot()
	if err != nil {
		s.writeError(w, op, err)
		return
	}

	if diff := domain.Diff(before, after); diff != nil {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(string(bytes))
		}
	} else {
		s.logger.Debug("No diff calculated", "op", op)
	}
	s.writeJSON(w, after)
}

func (s *Server) rollback(op string, before *domain.Snapshot) {
	if err := s.Layout.Apply(before); err != nil {
		s.logger.Error(op+" rollback failed", "err", err)
		return
	}
	s.logger.Debug("Rolled back", "op", op)
}

// SubscribeEvents handles GET /events (SSE). Each message is a snapshot
// diff; ?watch=template,data,regions filters them.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	streamHeaders(w)

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// SubscribeReload handles GET /events/reload (SSE), emitting one message
// per template reload.
func (s *Server) SubscribeReload(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	if err := s.startWatch(); err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		return
	}
	ch, cancel := s.Reloads.Subscribe()
	defer cancel()

	streamHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// startWatch starts the one template watch shared by every reload stream.
func (s *Server) startWatch() error {
	s.watchOnce.Do(func() {
		events, err := s.Layout.Watch(s.ctx)
		if err != nil {
			s.watchErr = err
			return
		}
		go func() {
			for range events {
				s.Reloads.Broadcast("reload")
			}
		}()
	})
	return s.watchErr
}

func streamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func watched(msg string, fields []string) bool {
	var diff domain.SnapshotDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "template":
			if diff.Template != nil {
				return true
			}
		case "data":
			if diff.DataSet {
				return true
			}
		case "regions":
			if len(diff.Regions) > 0 {
				return true
			}
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	var unrendered *domain.UnrenderedStateError
	var argument *domain.ArgumentError
	var invalid *schema.AggregateError
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unrendered):
		return http.StatusConflict
	case errors.As(err, &argument):
		return http.StatusBadRequest
	case domain.IsTemplateNotFound(err),
		errors.Is(err, domain.ErrSnapshotNotFound),
		errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
