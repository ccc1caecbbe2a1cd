package gate

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prismhq/prism/internal/action"
	"github.com/prismhq/prism/internal/eventbus"
	"github.com/prismhq/prism/internal/ledger"
	"github.com/prismhq/prism/internal/safety"
	"github.com/prismhq/prism/pkg/cerr"
)

// Server exposes the gate over the local JSON API. Requests arriving
// here carry no decider, so red-tier actions always park as pending and
// are resolved through the approvals endpoint.
type Server struct {
	gate *Gate
	bus  *eventbus.Bus
}

func NewServer(g *Gate, bus *eventbus.Bus) *Server {
	return &Server{gate: g, bus: bus}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/actions", s.handleRequestAction)
	r.Get("/budget", s.handleBudgetStatus)
	r.Post("/budget/check", s.handleCheckBudget)
	r.Get("/rules", s.handleRules)
}

type actionResponse struct {
	Outcome    action.Outcome `json:"outcome"`
	Tier       string         `json:"tier"`
	ApprovalID string         `json:"approval_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

func (s *Server) handleRequestAction(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req action.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Type == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "action_type is required", nil)
		return
	}

	// Keyword blocks fire before classification.
	if cmd, ok := req.Command(); ok {
		if keyword, blocked := s.gate.CheckCommand(cmd); blocked {
			s.bus.PublishNew(eventbus.EventTypeActionBlocked, req.Type, fmt.Sprintf("blocked keyword %q", keyword), map[string]string{
				"agent_name": req.AgentName,
			})
			cerr.SetJSONResponse(ctx, actionResponse{
				Outcome: action.OutcomeBlocked,
				Tier:    s.gate.controller.Classify(req.Type).String(),
				Reason:  fmt.Sprintf("command contains blocked keyword %q", keyword),
			})
			return
		}
	}

	tier := s.gate.controller.Classify(req.Type)
	outcome, pending := s.gate.RequestAction(ctx, req, nil)

	resp := actionResponse{Outcome: outcome, Tier: tier.String()}
	if pending != nil {
		resp.ApprovalID = pending.ID
	}
	cerr.SetJSONResponse(ctx, resp)
}

func (s *Server) handleBudgetStatus(_ http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), s.gate.BudgetStatus(r.Context()))
}

type checkBudgetRequest struct {
	Model           string `json:"model"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

type checkBudgetResponse struct {
	Allowed bool                `json:"allowed"`
	Status  ledger.BudgetStatus `json:"status"`
}

func (s *Server) handleCheckBudget(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Model == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "model is required", nil)
		return
	}
	if req.EstimatedTokens < 0 {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "estimated_tokens must be non-negative", nil)
		return
	}

	allowed := s.gate.CheckBudget(ctx, req.Model, req.EstimatedTokens)
	cerr.SetJSONResponse(ctx, checkBudgetResponse{
		Allowed: allowed,
		Status:  s.gate.BudgetStatus(ctx),
	})
}

type rulesResponse struct {
	GreenActions    []string          `json:"green_actions"`
	YellowActions   []string          `json:"yellow_actions"`
	RedActions      []string          `json:"red_actions"`
	BlockedKeywords []string          `json:"blocked_keywords"`
	Source          safety.RuleSource `json:"source"`
}

func (s *Server) handleRules(_ http.ResponseWriter, r *http.Request) {
	rules := s.gate.Rules()
	cerr.SetJSONResponse(r.Context(), rulesResponse{
		GreenActions:    rules.GreenActions,
		YellowActions:   rules.YellowActions,
		RedActions:      rules.RedActions,
		BlockedKeywords: rules.BlockedKeywords,
		Source:          rules.Source,
	})
}
