package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pricedex/pricedex"
	"github.com/pricedex/pricedex/application/service"
	"github.com/pricedex/pricedex/infrastructure/api/jsonapi"
	"github.com/pricedex/pricedex/infrastructure/api/middleware"
	"github.com/pricedex/pricedex/infrastructure/api/v1/dto"
)

// SearchRouter handles similarity search API endpoints.
type SearchRouter struct {
	client     *pricedex.Client
	logger     *slog.Logger
	serializer *jsonapi.Serializer
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *pricedex.Client) *SearchRouter {
	return &SearchRouter{
		client:     client,
		logger:     client.Logger(),
		serializer: jsonapi.NewSerializer(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Search)

	return router
}

// Search handles POST /api/v1/search.
//
//	@Summary		Search products
//	@Description	Cosine-similarity search over priced product records
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.SearchRequest	true	"Search request"
//	@Success		200		{object}	dto.SearchResponse
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		500		{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/search [post]
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}

	attrs := body.Data.Attributes
	if attrs.Query == nil || *attrs.Query == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "query is required", nil), r.logger)
		return
	}

	matches, err := r.client.Search.Query(ctx, *attrs.Query, searchOptions(attrs.Limit, attrs.Filters)...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.SearchResponse{
		Data: r.serializer.MatchResources(matches),
		Meta: &jsonapi.Meta{"count": len(matches)},
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// searchOptions translates request attributes into retriever options.
func searchOptions(limit *int, filters *dto.SearchFilters) []service.SearchOption {
	var opts []service.SearchOption
	if limit != nil && *limit > 0 {
		opts = append(opts, service.WithTopK(*limit))
	}
	if filters != nil {
		if filters.HSNCode != nil && *filters.HSNCode != "" {
			opts = append(opts, service.WithHSNFilter(*filters.HSNCode))
		}
		if filters.Country != nil && *filters.Country != "" {
			opts = append(opts, service.WithCountryFilter(*filters.Country))
		}
	}
	return opts
}
