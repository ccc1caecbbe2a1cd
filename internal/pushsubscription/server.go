package pushsubscription

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/prismhq/prism/internal/config"
	"github.com/prismhq/prism/pkg/cerr"
)

// Server manages browser push subscriptions.
type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     Repository
}

func NewServer(vapidEnv *config.VAPIDEnv, repo Repository) *Server {
	return &Server{vapidEnv: vapidEnv, repo: repo}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/push/vapid-key", s.handleVAPIDKey)
	r.Post("/push/subscriptions", s.handleSubscribe)
	r.Delete("/push/subscriptions/{id}", s.handleUnsubscribe)
}

type vapidKeyResponse struct {
	PublicKey string `json:"public_key"`
}

func (s *Server) handleVAPIDKey(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.vapidEnv.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "push notifications are not configured", nil)
		return
	}
	cerr.SetJSONResponse(ctx, vapidKeyResponse{PublicKey: s.vapidEnv.VAPIDPublicKey})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) handleSubscribe(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}

	// Re-subscribing the same endpoint is a no-op.
	if existing, err := s.repo.FindByEndpoint(ctx, req.Endpoint); err == nil {
		cerr.SetJSONResponse(ctx, existing)
		return
	}

	sub := &Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, sub)
}

func (s *Server) handleUnsubscribe(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]bool{"deleted": true})
}
