// Package httpapi exposes the integrations over HTTP: connect and disconnect
// routes per provider, the merged usage view, and the fetch history.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prismhq/prism/internal/aggregate"
	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/history"
	"github.com/prismhq/prism/internal/store"
	"github.com/prismhq/prism/internal/version"
)

type Config struct {
	Addr    string
	Verbose bool
}

type Server struct {
	cfg      Config
	adapters map[core.ProviderID]core.Adapter
	store    *store.Store
	history  *history.Store
	opts     aggregate.Options
}

// New wires the server. The history store may be nil, in which case fetch
// attempts are not logged and /v1/history returns an empty list.
func New(cfg Config, adapters map[core.ProviderID]core.Adapter, st *store.Store, hist *history.Store, opts aggregate.Options) *Server {
	return &Server{
		cfg:      cfg,
		adapters: adapters,
		store:    st,
		history:  hist,
		opts:     opts,
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if !s.cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.infof("listening", "addr=%s", listener.Addr())

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       20 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.infof("shutdown", "reason=context_done")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		_ = listener.Close()
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/integrations/", s.handleIntegration)
	mux.HandleFunc("/v1/usage", s.handleUsage)
	mux.HandleFunc("/v1/history", s.handleHistory)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": strings.TrimSpace(version.Version),
	})
}

type connectRequest struct {
	Identity string `json:"identity"`

	// Credential fields; which ones are required depends on the provider.
	AdminKey           string `json:"adminKey,omitempty"`
	APIKey             string `json:"apiKey,omitempty"`
	ServiceAccountJSON string `json:"serviceAccountJson,omitempty"`
	ProjectID          string `json:"projectId,omitempty"`
}

func (r connectRequest) credential() core.Credential {
	apiKey := r.APIKey
	if apiKey == "" {
		apiKey = r.AdminKey
	}
	return core.Credential{
		APIKey:             apiKey,
		ServiceAccountJSON: r.ServiceAccountJSON,
		ProjectID:          r.ProjectID,
	}
}

func (s *Server) handleIntegration(w http.ResponseWriter, r *http.Request) {
	slug, action, _ := strings.Cut(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/integrations/"), "/"), "/")
	provider, ok := core.ParseProviderID(slug)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown provider %q", slug))
		return
	}

	switch {
	case action == "refresh" && r.Method == http.MethodPost:
		s.refresh(w, r, provider)
	case action != "":
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown action %q", action))
	case r.Method == http.MethodPost:
		s.connect(w, r, provider)
	case r.Method == http.MethodDelete:
		s.disconnect(w, r, provider)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request, provider core.ProviderID) {
	started := time.Now()

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode connect request: %v", err))
		return
	}
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "identity is required")
		return
	}

	adapter, ok := s.adapters[provider]
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("provider %q not registered", provider.Slug()))
		return
	}

	cred := req.credential()
	record, fetchErr := adapter.Fetch(r.Context(), cred)
	s.recordHistory(r.Context(), identity, provider, fetchErr)
	if fetchErr != nil {
		fe := core.AsFetchError(fetchErr)
		s.warnf("connect_failed", "provider=%s kind=%s status=%d duration_ms=%d",
			provider.Slug(), fe.Kind, fe.StatusCode, time.Since(started).Milliseconds())
		writeJSONError(w, fe.StatusCode, fe.Message)
		return
	}

	if err := s.store.Write(identity, record); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("persist record: %v", err))
		return
	}
	if err := s.store.WriteCredential(identity, provider, cred); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("persist credential: %v", err))
		return
	}

	s.infof("connect_ok", "provider=%s duration_ms=%d", provider.Slug(), time.Since(started).Milliseconds())
	writeJSON(w, http.StatusOK, record)
}

// refresh re-fetches a connected provider with its stored credential, so a
// stale record can be updated without re-entering the key.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request, provider core.ProviderID) {
	started := time.Now()

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode refresh request: %v", err))
		return
	}
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "identity is required")
		return
	}

	adapter, ok := s.adapters[provider]
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("provider %q not registered", provider.Slug()))
		return
	}

	cred, err := s.store.ReadCredential(identity, provider)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("no stored credential for %s; connect it first", provider.Slug()))
		return
	}

	record, fetchErr := adapter.Fetch(r.Context(), cred)
	s.recordHistory(r.Context(), identity, provider, fetchErr)
	if fetchErr != nil {
		fe := core.AsFetchError(fetchErr)
		s.warnf("refresh_failed", "provider=%s kind=%s status=%d duration_ms=%d",
			provider.Slug(), fe.Kind, fe.StatusCode, time.Since(started).Milliseconds())
		writeJSONError(w, fe.StatusCode, fe.Message)
		return
	}

	if err := s.store.Write(identity, record); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("persist record: %v", err))
		return
	}

	s.infof("refresh_ok", "provider=%s duration_ms=%d", provider.Slug(), time.Since(started).Milliseconds())
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request, provider core.ProviderID) {
	identity := strings.TrimSpace(r.URL.Query().Get("identity"))
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "identity is required")
		return
	}

	if err := s.store.Remove(identity, provider); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("remove integration: %v", err))
		return
	}

	s.infof("disconnect_ok", "provider=%s", provider.Slug())
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected", "provider": provider.Slug()})
}

type usageResponse struct {
	Integrations store.Snapshot `json:"integrations"`
	View         aggregate.View `json:"view"`
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	identity := strings.TrimSpace(r.URL.Query().Get("identity"))
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "identity is required")
		return
	}

	snap := s.store.ReadAll(identity)
	writeJSON(w, http.StatusOK, usageResponse{
		Integrations: snap,
		View:         aggregate.Derive(snap, s.opts),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	identity := strings.TrimSpace(r.URL.Query().Get("identity"))
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "identity is required")
		return
	}

	entries := []history.Entry{}
	lastSuccess := map[string]string{}
	if s.history != nil {
		var err error
		entries, err = s.history.Recent(r.Context(), identity, 50)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load history: %v", err))
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		for _, p := range core.AllProviderIDs {
			t, err := s.history.LastSuccess(r.Context(), identity, p)
			if err != nil || t.IsZero() {
				continue
			}
			lastSuccess[p.Slug()] = t.UTC().Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "lastSuccess": lastSuccess})
}

func (s *Server) recordHistory(ctx context.Context, identity string, p core.ProviderID, fetchErr error) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, identity, p, fetchErr); err != nil {
		s.warnf("history_record_error", "provider=%s error=%v", p.Slug(), err)
	}
}

func (s *Server) infof(event, format string, args ...any) {
	if !s.cfg.Verbose {
		return
	}
	log.Printf("httpapi level=info event=%s "+format, append([]any{event}, args...)...)
}

func (s *Server) warnf(event, format string, args ...any) {
	if !s.cfg.Verbose {
		return
	}
	log.Printf("httpapi level=warn event=%s "+format, append([]any{event}, args...)...)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
