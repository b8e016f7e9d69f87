package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

type SessionHandler struct {
	Registry *usecase.SessionRegistry
}

func NewSessionHandler(registry *usecase.SessionRegistry) *SessionHandler {
	return &SessionHandler{Registry: registry}
}

// Routes mounts the session API. connectLimit wraps the connect endpoint.
func (h *SessionHandler) Routes(connectLimit func(http.Handler) http.Handler) chi.Router {
	if connectLimit == nil {
		connectLimit = func(next http.Handler) http.Handler { return next }
	}
	r := chi.NewRouter()

	r.Post("/", h.Open)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.State)
		r.Delete("/", h.Close)
		r.Post("/check", h.Check)
		r.With(connectLimit).Post("/connect", h.Connect)
		r.Post("/oauth/begin", h.BeginOAuth)
		r.Get("/oauth/callback", h.OAuthCallback)
		r.Post("/fetch", h.Fetch)
		r.Get("/view", h.View)
		r.Post("/selection/toggle", h.Toggle)
		r.Post("/selection/all", h.SelectAll)
		r.Post("/actions", h.RequestAction)
		r.Post("/actions/confirm", h.Confirm)
		r.Post("/actions/cancel", h.Cancel)
	})

	return r
}

type OpenSessionRequest struct {
	AccountID string `json:"account_id"`
	Provider  string `json:"provider"`
}

type ConnectRequest struct {
	Credentials map[string]string `json:"credentials"`
}

type ToggleRequest struct {
	Index int `json:"index"`
}

type ActionRequest struct {
	Kind string `json:"kind"`
}

func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		writeFail(w, http.StatusBadRequest, "account_id is required")
		return
	}
	provider, err := entity.ParseProvider(req.Provider)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	_, state, err := h.Registry.Open(r.Context(), req.AccountID, provider)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.SetOpenSessions(h.Registry.Len())

	writeJSON(w, http.StatusCreated, Response{Success: true, Data: state})
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeOK(w, s.State())
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Close(chi.URLParam(r, "id")) {
		writeFail(w, http.StatusNotFound, "session not found")
		return
	}
	middleware.SetOpenSessions(h.Registry.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	status := s.CheckConnection(r.Context())
	writeOK(w, map[string]any{"status": status})
}

func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.Connect(r.Context(), req.Credentials); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, s.State())
}

func (h *SessionHandler) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	url, err := s.BeginOAuth(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"authorization_url": url})
}

// OAuthCallback is where the dashboard lands after the provider's consent
// screen. The success query parameter is the marker the backend appends.
func (h *SessionHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	success, _ := strconv.ParseBool(r.URL.Query().Get("success"))
	if _, err := s.CompleteOAuth(r.Context(), success); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, s.State())
}

func (h *SessionHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	n, err := s.Fetch(r.Context(), usecase.FetchOptions{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"fetched": n, "view": s.View()})
}

// View applies whichever of query, page, date_from and date_to are present
// in the query string. An empty date clears that bound.
func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	u, err := parseFilterUpdate(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeOK(w, s.SetFilter(u))
}

func (h *SessionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	selected, err := s.Toggle(req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"selected": selected})
}

func (h *SessionHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeOK(w, map[string]any{"selected": s.SelectAll()})
}

func (h *SessionHandler) RequestAction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	kind, err := usecase.ParseActionKind(req.Kind)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	pending, err := s.RequestAction(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	if pending == nil {
		writeJSON(w, http.StatusOK, Response{Success: true, Message: "nothing selected"})
		return
	}
	writeOK(w, pending)
}

func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := s.Confirm(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"result": res, "view": s.View()})
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeOK(w, map[string]any{"cancelled": s.Cancel()})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*usecase.SyncSession, bool) {
	s, ok := h.Registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeFail(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

func parseFilterUpdate(r *http.Request) (usecase.FilterUpdate, error) {
	q := r.URL.Query()
	var u usecase.FilterUpdate

	if _, ok := q["query"]; ok {
		query := q.Get("query")
		u.Query = &query
	}
	if _, ok := q["page"]; ok {
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil {
			return u, fmt.Errorf("page must be a number")
		}
		u.Page = &page
	}
	if _, ok := q["date_from"]; ok {
		t, err := parseDate(q.Get("date_from"))
		if err != nil {
			return u, fmt.Errorf("date_from: %w", err)
		}
		u.SetDateFrom, u.DateFrom = true, t
	}
	if _, ok := q["date_to"]; ok {
		t, err := parseDate(q.Get("date_to"))
		if err != nil {
			return u, fmt.Errorf("date_to: %w", err)
		}
		u.SetDateTo, u.DateTo = true, t
	}
	return u, nil
}

func parseDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("must be YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}
