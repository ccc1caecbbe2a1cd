package orchestrator

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prismhq/prism/pkg/cerr"
)

type Server struct {
	orchestrator *Orchestrator
}

func NewServer(o *Orchestrator) *Server {
	return &Server{orchestrator: o}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/chat", s.handleChat)
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Agent        string `json:"agent"`
	Service      string `json:"service,omitempty"`
	Model        string `json:"model,omitempty"`
	Refused      string `json:"refused,omitempty"`
	Text         string `json:"text,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
}

func (s *Server) handleChat(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Query == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "query is required", nil)
		return
	}

	result, err := s.orchestrator.Route(ctx, req.Query)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "failed to route query", err)
		return
	}

	resp := chatResponse{
		Agent:   string(result.Agent),
		Service: result.Service,
		Model:   result.Model,
		Refused: result.Refused,
	}
	if result.Reply != nil {
		resp.Text = result.Reply.Text
		resp.InputTokens = result.Reply.InputTokens
		resp.OutputTokens = result.Reply.OutputTokens
	}
	cerr.SetJSONResponse(ctx, resp)
}
