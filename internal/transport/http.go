package transport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/domain/signup"
	"github.com/go-chi/chi/v5"
)

// Server wires the gateway-facing HTTP handlers.
type Server struct {
	signup *signup.Service
	feed   *Feed
	logger *slog.Logger
}

// NewServer creates the HTTP router. feed may be nil to disable the
// WebSocket payload feed.
func NewServer(svc *signup.Service, feed *Feed, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{signup: svc, feed: feed, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Route("/scopes/{scope}/session", func(r chi.Router) {
			r.Post("/", srv.handleStart)
			r.Get("/", srv.handleStatus)
			r.Post("/close", srv.handleClose)
			r.Post("/reset", srv.handleReset)
			r.Post("/touch", srv.handleTouch)
			r.Post("/claims", srv.handleClaim)
			r.Post("/join", srv.handleJoin)
			r.Delete("/claims/{member}", srv.handleRelease)
			r.Get("/activity", srv.handleActivity)
			r.With(RequireAdmin).Post("/force-reset", srv.handleForceReset)
			if feed != nil {
				r.Get("/feed", srv.handleFeed)
			}
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type actorRequest struct {
	ActorID string `json:"actor_id"`
}

type startRequest struct {
	OwnerID string `json:"owner_id"`
}

type claimRequest struct {
	MemberID     string `json:"member_id"`
	DisplayName  string `json:"display_name"`
	Availability string `json:"availability"`
	Role         string `json:"role"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil || req.OwnerID == "" {
		writeBadRequest(w, "owner_id is required")
		return
	}

	payload, err := s.signup.Start(r.Context(), chi.URLParam(r, "scope"), req.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sum, err := s.signup.Status(chi.URLParam(r, "scope"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decode(r, &req); err != nil || req.MemberID == "" {
		writeBadRequest(w, "member_id is required")
		return
	}
	role, ok := roster.ParseRole(req.Role)
	if !ok {
		writeBadRequest(w, "unknown role: "+req.Role)
		return
	}

	res, err := s.signup.Claim(r.Context(), signup.ClaimRequest{
		ScopeID:      chi.URLParam(r, "scope"),
		MemberID:     req.MemberID,
		DisplayName:  req.DisplayName,
		Availability: req.Availability,
		Role:         role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	payload, err := s.signup.Release(r.Context(), chi.URLParam(r, "scope"), chi.URLParam(r, "member"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decode(r, &req); err != nil || req.ActorID == "" {
		writeBadRequest(w, "actor_id is required")
		return
	}

	payload, err := s.signup.Reset(r.Context(), chi.URLParam(r, "scope"), req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decode(r, &req); err != nil || req.ActorID == "" {
		writeBadRequest(w, "actor_id is required")
		return
	}

	payload, err := s.signup.Close(r.Context(), chi.URLParam(r, "scope"), req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleForceReset(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decode(r, &req); err != nil || req.ActorID == "" {
		writeBadRequest(w, "actor_id is required")
		return
	}

	payload, err := s.signup.ForceReset(r.Context(), chi.URLParam(r, "scope"), req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleTouch(w http.ResponseWriter, r *http.Request) {
	if err := s.signup.Touch(r.Context(), chi.URLParam(r, "scope")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.signup.Activity(r.Context(), chi.URLParam(r, "scope"), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.feed.Subscribe(w, r, chi.URLParam(r, "scope"))
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
