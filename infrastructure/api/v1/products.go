// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pricedex/pricedex"
	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/infrastructure/api/jsonapi"
	"github.com/pricedex/pricedex/infrastructure/api/middleware"
	"github.com/pricedex/pricedex/infrastructure/api/v1/dto"
)

// ProductsRouter handles product record API endpoints.
type ProductsRouter struct {
	client     *pricedex.Client
	logger     *slog.Logger
	serializer *jsonapi.Serializer
}

// NewProductsRouter creates a new ProductsRouter.
func NewProductsRouter(client *pricedex.Client) *ProductsRouter {
	return &ProductsRouter{
		client:     client,
		logger:     client.Logger(),
		serializer: jsonapi.NewSerializer(),
	}
}

// Routes returns the chi router for product endpoints.
func (r *ProductsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Upsert)
	router.Post("/batch", r.UpsertBatch)
	router.Delete("/unpriced", r.PurgeUnpriced)

	return router
}

// Upsert handles POST /api/v1/products.
//
//	@Summary		Upsert product
//	@Description	Insert or update a product record keyed on (hsn_code, country)
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.ProductRequest	true	"Product submission"
//	@Success		200		{object}	jsonapi.Document
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		500		{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/products [post]
func (r *ProductsRouter) Upsert(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.ProductRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}

	result, err := r.client.Products.Upsert(ctx, candidateFromAttributes(body.Data.Attributes))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	status := http.StatusOK
	if result.Action() == product.ActionInserted {
		status = http.StatusCreated
	}

	middleware.WriteJSON(w, status, jsonapi.NewSingleResponse(r.serializer.UpsertResource(result)))
}

// UpsertBatch handles POST /api/v1/products/batch.
//
//	@Summary		Upsert products in batch
//	@Description	Insert or update multiple product records in submission order
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.ProductBatchRequest	true	"Product submissions"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		500		{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/products/batch [post]
func (r *ProductsRouter) UpsertBatch(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.ProductBatchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}

	candidates := make([]product.Candidate, len(body.Data))
	for i, data := range body.Data {
		candidates[i] = candidateFromAttributes(data.Attributes)
	}

	results, err := r.client.Products.UpsertBatch(ctx, candidates)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.UpsertResources(results)))
}

// List handles GET /api/v1/products.
//
//	@Summary		List products
//	@Description	List priced product records, most recently updated first
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			hsn_code	query	string	false	"Filter by HSN code"
//	@Param			country		query	string	false	"Filter by country (case-insensitive)"
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	dto.ProductListResponse
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/products [get]
func (r *ProductsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)
	hsn := req.URL.Query().Get("hsn_code")
	country := req.URL.Query().Get("country")

	records, err := r.client.Maintenance.ListPriced(ctx, hsn, country, pagination.Limit(), pagination.Offset())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Maintenance.CountPriced(ctx, hsn, country)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ProductListResponse{
		Data: r.serializer.ProductResources(records),
		Meta: PaginationMeta(pagination, total),
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// PurgeUnpriced handles DELETE /api/v1/products/unpriced.
//
//	@Summary		Purge unpriced records
//	@Description	Delete every record whose price history is null or empty
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/products/unpriced [delete]
func (r *ProductsRouter) PurgeUnpriced(w http.ResponseWriter, req *http.Request) {
	removed, err := r.client.Maintenance.PurgeUnpriced(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, &jsonapi.Document{
		Data: []any{},
		Meta: &jsonapi.Meta{"removed": removed},
	})
}

func candidateFromAttributes(attrs dto.ProductAttributes) product.Candidate {
	return product.Candidate{
		Name:        attrs.Name,
		HSNCode:     attrs.HSNCode,
		Country:     attrs.Country,
		Description: attrs.Description,
		RecordType:  attrs.RecordType,
		Prices:      attrs.Prices,
		Currencies:  attrs.Currencies,
	}
}
