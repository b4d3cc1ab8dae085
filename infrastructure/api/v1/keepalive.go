package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pricedex/pricedex"
	"github.com/pricedex/pricedex/infrastructure/api/jsonapi"
	"github.com/pricedex/pricedex/infrastructure/api/middleware"
)

// KeepAliveRouter exposes the database keep-alive ping. External schedulers
// hit this endpoint to stop serverless databases from pausing.
type KeepAliveRouter struct {
	client *pricedex.Client
	logger *slog.Logger
}

// NewKeepAliveRouter creates a new KeepAliveRouter.
func NewKeepAliveRouter(client *pricedex.Client) *KeepAliveRouter {
	return &KeepAliveRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for keep-alive endpoints.
func (r *KeepAliveRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Ping)

	return router
}

// Ping handles GET /api/v1/keepalive.
//
//	@Summary		Keep-alive ping
//	@Description	Issue a minimal read against the database to keep it warm
//	@Tags			keepalive
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Router			/keepalive [get]
func (r *KeepAliveRouter) Ping(w http.ResponseWriter, req *http.Request) {
	if err := r.client.Maintenance.Ping(req.Context()); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, &jsonapi.Document{
		Data: []any{},
		Meta: &jsonapi.Meta{
			"status":     "alive",
			"checked_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
