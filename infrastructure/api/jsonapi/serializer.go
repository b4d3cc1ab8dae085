package jsonapi

import (
	"fmt"
	"time"

	"github.com/pricedex/pricedex/domain/product"
)

// ProductAttributes represents product record attributes in JSON:API format.
type ProductAttributes struct {
	Name         string             `json:"name"`
	HSNCode      string             `json:"hsn_code"`
	Country      string             `json:"country"`
	Description  string             `json:"description,omitempty"`
	RecordType   string             `json:"record_type"`
	PriceHistory map[string]float64 `json:"price_history"`
	Currencies   map[string]string  `json:"currencies,omitempty"`
	CreatedAt    *time.Time         `json:"created_at,omitempty"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
}

// MatchAttributes represents a scored search hit in JSON:API format.
type MatchAttributes struct {
	ProductAttributes
	Similarity float64 `json:"similarity"`
}

// UpsertAttributes represents the outcome of a product upsert.
type UpsertAttributes struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// YearPriceSchema represents a single priced year in an analysis report.
type YearPriceSchema struct {
	Year     string  `json:"year"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// AnalysisAttributes represents a price analysis report in JSON:API format.
type AnalysisAttributes struct {
	Analysis   string            `json:"analysis"`
	Confidence string            `json:"confidence"`
	Fallback   bool              `json:"fallback"`
	History    []YearPriceSchema `json:"history"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

func productAttributes(r product.Record) ProductAttributes {
	createdAt := r.CreatedAt()
	updatedAt := r.UpdatedAt()

	return ProductAttributes{
		Name:         r.Name(),
		HSNCode:      r.HSNCode(),
		Country:      r.Country(),
		Description:  r.Description(),
		RecordType:   r.RecordType(),
		PriceHistory: r.Prices(),
		Currencies:   r.Currencies(),
		CreatedAt:    &createdAt,
		UpdatedAt:    &updatedAt,
	}
}

// ProductResource converts a product record to a JSON:API resource.
func (s *Serializer) ProductResource(r product.Record) *Resource {
	attrs := productAttributes(r)
	return NewResource("product", fmt.Sprintf("%d", r.ID()), &attrs)
}

// ProductResources converts multiple records to JSON:API resources.
func (s *Serializer) ProductResources(records []product.Record) []*Resource {
	resources := make([]*Resource, len(records))
	for i, r := range records {
		resources[i] = s.ProductResource(r)
	}
	return resources
}

// MatchResource converts a search match to a JSON:API resource.
func (s *Serializer) MatchResource(m product.Match) *Resource {
	attrs := &MatchAttributes{
		ProductAttributes: productAttributes(m.Record()),
		Similarity:        m.Similarity(),
	}
	return NewResource("match", fmt.Sprintf("%d", m.Record().ID()), attrs)
}

// MatchResources converts multiple matches to JSON:API resources.
func (s *Serializer) MatchResources(matches []product.Match) []*Resource {
	resources := make([]*Resource, len(matches))
	for i, m := range matches {
		resources[i] = s.MatchResource(m)
	}
	return resources
}

// UpsertResource converts an upsert result to a JSON:API resource.
func (s *Serializer) UpsertResource(result product.UpsertResult) *Resource {
	attrs := &UpsertAttributes{
		Action: string(result.Action()),
		Reason: result.Reason(),
	}
	return NewResource("upsert_result", fmt.Sprintf("%d", result.ID()), attrs)
}

// UpsertResources converts multiple upsert results to JSON:API resources.
func (s *Serializer) UpsertResources(results []product.UpsertResult) []*Resource {
	resources := make([]*Resource, len(results))
	for i, r := range results {
		resources[i] = s.UpsertResource(r)
	}
	return resources
}

// YearPriceSchemas converts priced years to their wire representation.
func (s *Serializer) YearPriceSchemas(history []product.YearPrice) []YearPriceSchema {
	schemas := make([]YearPriceSchema, len(history))
	for i, yp := range history {
		schemas[i] = YearPriceSchema{
			Year:     yp.Year,
			Price:    yp.Price,
			Currency: yp.Currency,
		}
	}
	return schemas
}

// AnalysisResource builds a JSON:API resource for a price analysis report,
// identified by the matched record's ID.
func (s *Serializer) AnalysisResource(recordID int64, analysis, confidence string, fallback bool, history []product.YearPrice) *Resource {
	attrs := &AnalysisAttributes{
		Analysis:   analysis,
		Confidence: confidence,
		Fallback:   fallback,
		History:    s.YearPriceSchemas(history),
	}
	return NewResource("analysis", fmt.Sprintf("%d", recordID), attrs)
}
