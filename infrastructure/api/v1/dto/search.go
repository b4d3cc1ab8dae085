package dto

import (
	"github.com/pricedex/pricedex/infrastructure/api/jsonapi"
)

// SearchFilters narrows a similarity search to a code or country.
type SearchFilters struct {
	HSNCode *string `json:"hsn_code,omitempty"`
	Country *string `json:"country,omitempty"`
}

// SearchAttributes represents search request attributes in JSON:API format.
type SearchAttributes struct {
	Query   *string        `json:"query,omitempty"`
	Limit   *int           `json:"limit,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
}

// SearchData represents search request data in JSON:API format.
type SearchData struct {
	Type       string           `json:"type"`
	Attributes SearchAttributes `json:"attributes"`
}

// SearchRequest represents a JSON:API search request.
type SearchRequest struct {
	Data SearchData `json:"data"`
}

// SearchResponse represents a search API response in JSON:API format.
type SearchResponse struct {
	Data []*jsonapi.Resource `json:"data"`
	Meta *jsonapi.Meta       `json:"meta,omitempty"`
}

// ProductListResponse represents a list of stored products in JSON:API format.
type ProductListResponse struct {
	Data []*jsonapi.Resource `json:"data"`
	Meta *jsonapi.Meta       `json:"meta,omitempty"`
}
