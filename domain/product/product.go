// Package product defines the core product record model: commodity price
// records identified by an HSN code and country pair, carrying a year-keyed
// price history and an embedding of their canonical text.
package product

import (
	"fmt"
	"sort"
	"time"
)

// DefaultRecordType is the classification tag applied to records that carry
// a price history when the submitter does not provide one.
const DefaultRecordType = "product_with_history"

// DefaultCurrency is assumed for any year without an explicit currency code.
const DefaultCurrency = "USD"

// Record is a stored product with price history and embedding.
// At most one live Record exists per (HSN code, uppercased country) pair.
type Record struct {
	id          int64
	name        string
	hsnCode     string
	country     string
	description string
	recordType  string
	prices      map[string]float64
	currencies  map[string]string
	createdAt   time.Time
	updatedAt   time.Time
	embedding   []float64
}

// NewRecord creates a Record from a candidate plus storage metadata.
// The country is normalized to uppercase and the record type defaulted,
// matching the normalization applied on the write path.
func NewRecord(id int64, c Candidate, embedding []float64, createdAt, updatedAt time.Time) Record {
	c = c.Normalize()
	emb := make([]float64, len(embedding))
	copy(emb, embedding)
	return Record{
		id:          id,
		name:        c.Name,
		hsnCode:     c.HSNCode,
		country:     c.Country,
		description: c.Description,
		recordType:  c.RecordType,
		prices:      copyPrices(c.Prices),
		currencies:  copyCurrencies(c.Currencies),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		embedding:   emb,
	}
}

// ID returns the store-assigned identifier.
func (r Record) ID() int64 { return r.id }

// Name returns the product name.
func (r Record) Name() string { return r.name }

// HSNCode returns the Harmonized System Nomenclature code.
func (r Record) HSNCode() string { return r.hsnCode }

// Country returns the uppercased country code.
func (r Record) Country() string { return r.country }

// Description returns the free-text description.
func (r Record) Description() string { return r.description }

// RecordType returns the classification tag.
func (r Record) RecordType() string { return r.recordType }

// Prices returns a copy of the year-to-price map.
func (r Record) Prices() map[string]float64 {
	return copyPrices(r.prices)
}

// HasPrices reports whether the record carries at least one priced year.
func (r Record) HasPrices() bool { return len(r.prices) > 0 }

// Currencies returns a copy of the year-to-currency map.
func (r Record) Currencies() map[string]string {
	return copyCurrencies(r.currencies)
}

// CurrencyFor returns the currency code for a year, defaulting to USD.
func (r Record) CurrencyFor(year string) string {
	if c, ok := r.currencies[year]; ok && c != "" {
		return c
	}
	return DefaultCurrency
}

// CreatedAt returns the creation timestamp. Immutable once set.
func (r Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-modification timestamp.
func (r Record) UpdatedAt() time.Time { return r.updatedAt }

// Embedding returns a copy of the stored embedding vector.
func (r Record) Embedding() []float64 {
	result := make([]float64, len(r.embedding))
	copy(result, r.embedding)
	return result
}

// Content returns the canonical text the embedding is derived from.
func (r Record) Content() string {
	return CanonicalText(r.name, r.hsnCode, r.country, r.description)
}

// YearPrice is a single priced year with its currency.
type YearPrice struct {
	Year     string
	Price    float64
	Currency string
}

// RecentPrices returns up to n priced years, most recent first.
func (r Record) RecentPrices(n int) []YearPrice {
	years := make([]string, 0, len(r.prices))
	for year := range r.prices {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	if n > 0 && n < len(years) {
		years = years[:n]
	}

	result := make([]YearPrice, len(years))
	for i, year := range years {
		result[i] = YearPrice{
			Year:     year,
			Price:    r.prices[year],
			Currency: r.CurrencyFor(year),
		}
	}
	return result
}

// CanonicalText renders the text a product embedding is computed from.
// Any change to the inputs changes the text, which forces an embedding
// recompute on the next upsert.
func CanonicalText(name, hsnCode, country, description string) string {
	return fmt.Sprintf("Product: %s\nHSN: %s\nCountry: %s\nDescription: %s",
		name, hsnCode, country, description)
}

func copyPrices(m map[string]float64) map[string]float64 {
	result := make(map[string]float64, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func copyCurrencies(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
