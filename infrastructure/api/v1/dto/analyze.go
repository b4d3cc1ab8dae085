package dto

import (
	"github.com/pricedex/pricedex/infrastructure/api/jsonapi"
)

// AnalyzeAttributes represents analysis request attributes in JSON:API format.
type AnalyzeAttributes struct {
	Query   *string        `json:"query,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
}

// AnalyzeData represents analysis request data in JSON:API format.
type AnalyzeData struct {
	Type       string            `json:"type"`
	Attributes AnalyzeAttributes `json:"attributes"`
}

// AnalyzeRequest represents a JSON:API price analysis request.
type AnalyzeRequest struct {
	Data AnalyzeData `json:"data"`
}

// AnalyzeResponse represents a price analysis response in JSON:API format.
// The analysis resource is accompanied by the matched product resource.
type AnalyzeResponse struct {
	Data     *jsonapi.Resource `json:"data"`
	Included []any             `json:"included,omitempty"`
}
