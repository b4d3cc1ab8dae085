package product

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation indicates a candidate failed the structural shape check.
var ErrValidation = errors.New("validation failed")

// Candidate is an incoming product submission, before normalization.
type Candidate struct {
	Name        string
	HSNCode     string
	Country     string
	Description string
	RecordType  string
	Prices      map[string]float64
	Currencies  map[string]string
}

// Normalize returns a copy with the country uppercased and the record type
// defaulted. The uppercased country is both the lookup and storage key.
func (c Candidate) Normalize() Candidate {
	c.Country = strings.ToUpper(c.Country)
	if c.RecordType == "" {
		c.RecordType = DefaultRecordType
	}
	return c
}

// HasPrices reports whether the candidate carries at least one priced year.
func (c Candidate) HasPrices() bool { return len(c.Prices) > 0 }

// CanonicalText renders the embedding input text for the candidate.
func (c Candidate) CanonicalText() string {
	n := c.Normalize()
	return CanonicalText(n.Name, n.HSNCode, n.Country, n.Description)
}

// NaturalKey returns the (hsnCode, COUNTRY) pair identifying the candidate.
func (c Candidate) NaturalKey() (string, string) {
	return c.HSNCode, strings.ToUpper(c.Country)
}

// Validate checks the structural shape required before a candidate may be
// accepted: non-empty name, HSN code, country, record type, and at least
// one priced year. It does not mutate state.
func (c Candidate) Validate() error {
	n := c.Normalize()
	required := map[string]string{
		"name":        n.Name,
		"hsn_code":    n.HSNCode,
		"country":     n.Country,
		"record_type": n.RecordType,
	}
	for _, field := range []string{"name", "hsn_code", "country", "record_type"} {
		if required[field] == "" {
			return fmt.Errorf("%w: missing %s", ErrValidation, field)
		}
	}
	if !n.HasPrices() {
		return fmt.Errorf("%w: price history is empty", ErrValidation)
	}
	return nil
}

// ValidShape reports whether the candidate passes Validate.
func (c Candidate) ValidShape() bool {
	return c.Validate() == nil
}
