// Package http exposes an Editor over a JSON API and pushes selection and
// history changes to websocket clients.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/page"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

var (
	errNodeNotFound = errors.New("node not found")
	errRefused      = errors.New("edit refused")
)

// Server serves the editing API of one Editor.
type Server struct {
	editor   *pagecraft.Editor
	hub      *Hub
	router   chi.Router
	gatherer prometheus.Gatherer
	version  string
	log      *slog.Logger

	attached event.Group
	histHook map[*page.Page]event.Dispose
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithVersion sets the version reported on /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer builds the router and subscribes the event hub to the editor.
func NewServer(ctx context.Context, ed *pagecraft.Editor, opts ...Option) (*Server, error) {
	s := &Server{
		editor:   ed,
		gatherer: prometheus.DefaultGatherer,
		version:  "dev",
		histHook: make(map[*page.Page]event.Dispose),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	s.hub = NewHub(s.log)

	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	v, err := newValidator(doc)
	if err != nil {
		return nil, err
	}

	if err := ed.Do(func(ed *pagecraft.Editor) error {
		s.subscribe(ed)
		return nil
	}); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/events", s.hub.HandleWS)

	r.Group(func(r chi.Router) {
		r.Use(v.middleware)
		r.Get("/health", s.Health)
		r.Get("/info", s.Info)
		r.Get("/pages", s.ListPages)
		r.Route("/pages/{pageId}", func(r chi.Router) {
			r.Get("/", s.GetPage)
			r.Put("/", s.PutPage)
			r.Delete("/", s.DeletePage)
			r.Post("/save", s.SavePage)
			r.Post("/validate", s.ValidatePage)
			r.Get("/history", s.GetHistory)
			r.Post("/history/back", s.Undo)
			r.Post("/history/forward", s.Redo)
			r.Put("/params/{name}", s.SetParam)
			r.Post("/nodes", s.InsertNode)
			r.Get("/nodes/{nodeId}", s.GetNode)
			r.Delete("/nodes/{nodeId}", s.RemoveNode)
			r.Patch("/nodes/{nodeId}/props", s.SetProps)
			r.Post("/nodes/{nodeId}/move", s.MoveNode)
			r.Post("/nodes/{nodeId}/select", s.SelectNode)
		})
	})
	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Close detaches the server from the editor.
func (s *Server) Close() {
	_ = s.editor.Do(func(*pagecraft.Editor) error {
		s.attached.Dispose()
		for p, dispose := range s.histHook {
			dispose()
			delete(s.histHook, p)
		}
		return nil
	})
}

// subscribe runs under the editor lock, and so do the callbacks it installs.
func (s *Server) subscribe(ed *pagecraft.Editor) {
	x := ed.Exchange()
	s.attached.Add(
		x.OnSelectedChange(func(n *node.Node) { s.publishNode(TopicSelected, n) }),
		x.OnHoveringChange(func(n *node.Node) { s.publishNode(TopicHovering, n) }),
		ed.Pages().OnPagesChange(s.trackPages),
	)
	s.trackPages(ed.Pages().Pages())
}

func (s *Server) trackPages(pages []*page.Page) {
	live := make(map[*page.Page]bool, len(pages))
	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		live[p] = true
		ids = append(ids, p.ID())
		if _, ok := s.histHook[p]; ok {
			continue
		}
		p := p
		s.histHook[p] = p.History().OnStateChange(func(int) {
			s.hub.Publish(TopicHistory, p.ID(), historyPayload(p.History()))
		})
	}
	for p, dispose := range s.histHook {
		if !live[p] {
			dispose()
			delete(s.histHook, p)
		}
	}
	s.hub.Publish(TopicPages, "", map[string]any{"open": ids})
}

func (s *Server) publishNode(topic string, n *node.Node) {
	if n == nil {
		s.hub.Publish(topic, "", map[string]any{"nodeId": nil})
		return
	}
	pageID := ""
	if p, ok := n.Owner().(*page.Page); ok {
		pageID = p.ID()
	}
	s.hub.Publish(topic, pageID, map[string]any{
		"nodeId":        n.ID(),
		"componentName": n.ComponentName(),
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    s.version,
		"apiVersion": "1.0.0",
		"clients":    s.hub.Len(),
	})
}

// ListPages handles GET /pages.
func (s *Server) ListPages(w http.ResponseWriter, r *http.Request) {
	ids, err := s.editor.List(r.Context())
	if err != nil {
		s.fail(w, "ListPages", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetPage handles GET /pages/{pageId}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	var data *schema.PageData
	s.withPage(w, r, "GetPage", func(p *page.Page) error {
		data = p.ToData()
		return nil
	}, func() { writeJSON(w, http.StatusOK, data) })
}

// PutPage handles PUT /pages/{pageId}: the open page, if any, is dropped
// and replaced by the body, which is saved right away.
func (s *Server) PutPage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	var body schema.PageData
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.log.Warn("PutPage: invalid request body", "error", err)
		return
	}
	body.ID = id

	_ = s.editor.ClosePage(id)
	if _, err := s.editor.Create(&body); err != nil {
		s.fail(w, "PutPage", err)
		return
	}
	if err := s.editor.Save(r.Context(), id); err != nil {
		s.fail(w, "PutPage", err)
		return
	}
	s.hub.Publish(TopicSaved, id, nil)
	s.GetPage(w, r)
}

// DeletePage handles DELETE /pages/{pageId}.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	if err := s.editor.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeletePage", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SavePage handles POST /pages/{pageId}/save.
func (s *Server) SavePage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	if _, err := s.editor.Open(r.Context(), id); err != nil {
		s.fail(w, "SavePage", err)
		return
	}
	if err := s.editor.Save(r.Context(), id); err != nil {
		s.fail(w, "SavePage", err)
		return
	}
	s.hub.Publish(TopicSaved, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// ValidatePage handles POST /pages/{pageId}/validate. Problems are part of
// a successful response.
func (s *Server) ValidatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	if _, err := s.editor.Open(r.Context(), id); err != nil {
		s.fail(w, "ValidatePage", err)
		return
	}
	problems := []map[string]any{}
	err := s.editor.Validate(id)
	var agg *schema.AggregateError
	switch {
	case err == nil:
	case errors.As(err, &agg):
		for _, e := range agg.Errors {
			problems = append(problems, map[string]any{
				"path":   e.Path,
				"prop":   e.Prop,
				"reason": e.Reason,
			})
		}
	default:
		s.fail(w, "ValidatePage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

// GetHistory handles GET /pages/{pageId}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, "GetHistory", nil)
}

// Undo handles POST /pages/{pageId}/history/back.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, "Undo", (*history.History).Back)
}

// Redo handles POST /pages/{pageId}/history/forward.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, "Redo", (*history.History).Forward)
}

func (s *Server) moveHistory(w http.ResponseWriter, r *http.Request, op string, move func(*history.History)) {
	var out map[string]any
	s.withPage(w, r, op, func(p *page.Page) error {
		if move != nil {
			move(p.History())
		}
		out = historyPayload(p.History())
		return nil
	}, func() { writeJSON(w, http.StatusOK, out) })
}

func historyPayload(h *history.History) map[string]any {
	records := h.Records()
	steps := make([]map[string]any, len(records))
	for i, rec := range records {
		steps[i] = map[string]any{"cursor": rec.Cursor, "title": rec.Title}
	}
	state := h.State()
	return map[string]any{
		"cursor":   h.Cursor(),
		"steps":    steps,
		"undoable": state&history.Undoable != 0,
		"redoable": state&history.Redoable != 0,
		"modified": state&history.Modified != 0,
	}
}

// SetParam handles PUT /pages/{pageId}/params/{name}.
func (s *Server) SetParam(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := bindPath(r, "name", &name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.withPage(w, r, "SetParam", func(p *page.Page) error {
		p.SetParam(name, body.Value)
		return nil
	}, func() { w.WriteHeader(http.StatusNoContent) })
}

type insertRequest struct {
	ParentID string                  `json:"parentId"`
	Index    *int                    `json:"index,omitempty"`
	Node     *schema.ComponentSchema `json:"node"`
}

// InsertNode handles POST /pages/{pageId}/nodes.
func (s *Server) InsertNode(w http.ResponseWriter, r *http.Request) {
	var body insertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	var out *schema.ComponentSchema
	s.withPage(w, r, "InsertNode", func(p *page.Page) error {
		parent := p.Node(body.ParentID)
		if parent == nil {
			return fmt.Errorf("%w: %s", errNodeNotFound, body.ParentID)
		}
		index := parent.ChildCount()
		if body.Index != nil {
			index = *body.Index
		}
		n := parent.InsertAt(body.Node, index)
		if n == nil {
			return fmt.Errorf("%w: %s cannot hold %s", errRefused, body.ParentID, body.Node.ComponentName)
		}
		out = n.ToData()
		return nil
	}, func() { writeJSON(w, http.StatusCreated, out) })
}

// GetNode handles GET /pages/{pageId}/nodes/{nodeId}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	var out *schema.ComponentSchema
	s.withNode(w, r, "GetNode", func(_ *page.Page, n *node.Node) error {
		out = n.ToData()
		return nil
	}, func() { writeJSON(w, http.StatusOK, out) })
}

// RemoveNode handles DELETE /pages/{pageId}/nodes/{nodeId}.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	s.withNode(w, r, "RemoveNode", func(_ *page.Page, n *node.Node) error {
		if err := n.Remove(); err != nil {
			return fmt.Errorf("%w: %v", errRefused, err)
		}
		return nil
	}, func() { w.WriteHeader(http.StatusNoContent) })
}

// SetProps handles PATCH /pages/{pageId}/nodes/{nodeId}/props. Keys are
// prop paths; they are applied in sorted order.
func (s *Server) SetProps(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out *schema.ComponentSchema
	s.withNode(w, r, "SetProps", func(_ *page.Page, n *node.Node) error {
		for _, k := range keys {
			if !n.SetPropValue(k, body[k]) {
				return fmt.Errorf("%w: prop %s", errRefused, k)
			}
		}
		out = n.ToData()
		return nil
	}, func() { writeJSON(w, http.StatusOK, out) })
}

type moveRequest struct {
	ParentID string `json:"parentId"`
	Index    *int   `json:"index,omitempty"`
}

// MoveNode handles POST /pages/{pageId}/nodes/{nodeId}/move.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var body moveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	var out *schema.ComponentSchema
	s.withNode(w, r, "MoveNode", func(p *page.Page, n *node.Node) error {
		target := p.Node(body.ParentID)
		if target == nil {
			return fmt.Errorf("%w: %s", errNodeNotFound, body.ParentID)
		}
		index := target.ChildCount()
		if body.Index != nil {
			index = *body.Index
		}
		if target.InsertAt(n, index) == nil {
			return fmt.Errorf("%w: cannot move %s into %s", errRefused, n.ID(), target.ID())
		}
		out = n.ToData()
		return nil
	}, func() { writeJSON(w, http.StatusOK, out) })
}

// SelectNode handles POST /pages/{pageId}/nodes/{nodeId}/select.
func (s *Server) SelectNode(w http.ResponseWriter, r *http.Request) {
	s.withNode(w, r, "SelectNode", func(_ *page.Page, n *node.Node) error {
		if !n.CanSelecting() {
			return fmt.Errorf("%w: %s is not selectable", errRefused, n.ID())
		}
		s.editor.Exchange().Select(n)
		return nil
	}, func() { w.WriteHeader(http.StatusNoContent) })
}

// withPage opens the page and runs fn under the editor lock. done writes
// the response when fn succeeds.
func (s *Server) withPage(w http.ResponseWriter, r *http.Request, op string, fn func(*page.Page) error, done func()) {
	id, ok := s.pageID(w, r)
	if !ok {
		return
	}
	if _, err := s.editor.Open(r.Context(), id); err != nil {
		s.fail(w, op, err)
		return
	}
	err := s.editor.Do(func(ed *pagecraft.Editor) error {
		p, err := ed.Pages().PageByID(id)
		if err != nil {
			return err
		}
		return fn(p)
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	done()
}

func (s *Server) withNode(w http.ResponseWriter, r *http.Request, op string, fn func(*page.Page, *node.Node) error, done func()) {
	var nodeID string
	if err := bindPath(r, "nodeId", &nodeID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.withPage(w, r, op, func(p *page.Page) error {
		n := p.Node(nodeID)
		if n == nil {
			return fmt.Errorf("%w: %s", errNodeNotFound, nodeID)
		}
		return fn(p, n)
	}, done)
}

func (s *Server) pageID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	if err := bindPath(r, "pageId", &id); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return id, true
}

func bindPath(r *http.Request, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(op+" failed", "error", err)
	} else {
		s.log.Debug(op+" rejected", "error", err)
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrPageNotFound), errors.Is(err, errNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errRefused):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pagecraft.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
