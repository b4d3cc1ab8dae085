package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pricedex/pricedex"
	"github.com/pricedex/pricedex/infrastructure/api/jsonapi"
	"github.com/pricedex/pricedex/infrastructure/api/middleware"
	"github.com/pricedex/pricedex/infrastructure/api/v1/dto"
)

// AnalyzeRouter handles price analysis API endpoints.
type AnalyzeRouter struct {
	client     *pricedex.Client
	logger     *slog.Logger
	serializer *jsonapi.Serializer
}

// NewAnalyzeRouter creates a new AnalyzeRouter.
func NewAnalyzeRouter(client *pricedex.Client) *AnalyzeRouter {
	return &AnalyzeRouter{
		client:     client,
		logger:     client.Logger(),
		serializer: jsonapi.NewSerializer(),
	}
}

// Routes returns the chi router for analysis endpoints.
func (r *AnalyzeRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Analyze)

	return router
}

// Analyze handles POST /api/v1/analyze.
//
//	@Summary		Analyze prices
//	@Description	Generate a price trend analysis for the closest matching product
//	@Tags			analyze
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.AnalyzeRequest	true	"Analysis request"
//	@Success		200		{object}	dto.AnalyzeResponse
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		404		{object}	middleware.JSONAPIErrorResponse
//	@Failure		502		{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/analyze [post]
func (r *AnalyzeRouter) Analyze(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.AnalyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}

	attrs := body.Data.Attributes
	if attrs.Query == nil || *attrs.Query == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "query is required", nil), r.logger)
		return
	}

	report, err := r.client.Analysis.Analyze(ctx, *attrs.Query, searchOptions(nil, attrs.Filters)...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	match := report.Match()
	response := dto.AnalyzeResponse{
		Data: r.serializer.AnalysisResource(
			match.Record().ID(),
			report.Analysis(),
			string(report.Confidence()),
			report.Fallback(),
			report.History(),
		),
		Included: []any{r.serializer.MatchResource(match)},
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}
