// Package dto defines request and response body types for the v1 API.
package dto

// ProductAttributes represents an incoming product submission in JSON:API
// format. Prices map four-digit years to unit prices; currencies map the
// same years to ISO currency codes.
type ProductAttributes struct {
	Name        string             `json:"name"`
	HSNCode     string             `json:"hsn_code"`
	Country     string             `json:"country"`
	Description string             `json:"description,omitempty"`
	RecordType  string             `json:"record_type,omitempty"`
	Prices      map[string]float64 `json:"prices,omitempty"`
	Currencies  map[string]string  `json:"currencies,omitempty"`
}

// ProductData represents product request data in JSON:API format.
type ProductData struct {
	Type       string            `json:"type"`
	Attributes ProductAttributes `json:"attributes"`
}

// ProductRequest represents a JSON:API single-product upsert request.
type ProductRequest struct {
	Data ProductData `json:"data"`
}

// ProductBatchRequest represents a JSON:API batch upsert request.
type ProductBatchRequest struct {
	Data []ProductData `json:"data"`
}
