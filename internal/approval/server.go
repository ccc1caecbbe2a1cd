package approval

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prismhq/prism/internal/action"
	"github.com/prismhq/prism/internal/eventbus"
	"github.com/prismhq/prism/pkg/cerr"
)

// Server exposes the pending-approval resolution path: the later,
// separate decision channel for red-tier actions parked without a
// decider.
type Server struct {
	store *Store
	bus   *eventbus.Bus
}

func NewServer(store *Store, bus *eventbus.Bus) *Server {
	return &Server{store: store, bus: bus}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/approvals", s.handleList)
	r.Post("/approvals/{id}", s.handleResolve)
}

type listResponse struct {
	Approvals []*Pending `json:"approvals"`
}

func (s *Server) handleList(_ http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), listResponse{Approvals: s.store.List()})
}

type resolveRequest struct {
	Approved bool `json:"approved"`
}

type resolveResponse struct {
	ID      string         `json:"id"`
	Outcome action.Outcome `json:"outcome"`
}

func (s *Server) handleResolve(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	p, ok := s.store.Resolve(id)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.NotFound, "pending approval not found", nil)
		return
	}

	outcome := action.OutcomeBlocked
	if req.Approved {
		outcome = action.OutcomeApproved
	}
	s.bus.PublishNew(eventbus.EventTypeApprovalResolved, p.ID, string(outcome), map[string]string{
		"action_type": p.Action.Type,
		"agent_name":  p.Action.AgentName,
	})

	cerr.SetJSONResponse(ctx, resolveResponse{ID: p.ID, Outcome: outcome})
}
