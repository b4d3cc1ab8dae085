// Package persistence provides database storage implementations.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pricedex/pricedex/domain/product"
)

// Vector stores an embedding as a JSON array column. It implements
// sql.Scanner and driver.Valuer so the same model works on SQLite and
// PostgreSQL.
//
// Scan accepts two encodings: a plain JSON array and a JSON string that
// itself contains a JSON array (produced by clients that stringify the
// vector before insert). Anything else wraps product.ErrEmbeddingParse.
type Vector []float64

// Scan implements sql.Scanner.
func (v *Vector) Scan(value any) error {
	if value == nil {
		*v = nil
		return nil
	}

	var data []byte
	switch val := value.(type) {
	case []byte:
		data = val
	case string:
		data = []byte(val)
	default:
		return fmt.Errorf("%w: unsupported column type %T", product.ErrEmbeddingParse, value)
	}

	var floats []float64
	if err := json.Unmarshal(data, &floats); err == nil {
		*v = floats
		return nil
	}

	// Double-encoded form: a JSON string holding the array.
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return fmt.Errorf("%w: %s", product.ErrEmbeddingParse, truncateForError(data))
	}
	if err := json.Unmarshal([]byte(inner), &floats); err != nil {
		return fmt.Errorf("%w: %s", product.ErrEmbeddingParse, truncateForError(data))
	}
	*v = floats
	return nil
}

// Value implements driver.Valuer, always writing the canonical array form.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal([]float64(v))
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}
	return string(data), nil
}

// PriceMap stores a year-to-price map as a JSON object column.
type PriceMap map[string]float64

// Scan implements sql.Scanner.
func (p *PriceMap) Scan(value any) error {
	return scanJSONMap(value, p, "price history")
}

// Value implements driver.Valuer.
func (p PriceMap) Value() (driver.Value, error) {
	return jsonMapValue(map[string]float64(p))
}

// CurrencyMap stores a year-to-currency map as a JSON object column.
type CurrencyMap map[string]string

// Scan implements sql.Scanner.
func (c *CurrencyMap) Scan(value any) error {
	return scanJSONMap(value, c, "currencies")
}

// Value implements driver.Valuer.
func (c CurrencyMap) Value() (driver.Value, error) {
	return jsonMapValue(map[string]string(c))
}

func scanJSONMap(value any, dest any, label string) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch val := value.(type) {
	case []byte:
		data = val
	case string:
		data = []byte(val)
	default:
		return fmt.Errorf("scan %s: unsupported column type %T", label, value)
	}

	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("scan %s: %w", label, err)
	}
	return nil
}

func jsonMapValue[M ~map[string]V, V any](m M) (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func truncateForError(data []byte) string {
	const max = 64
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}

// ProductModel is the GORM model for product price records. At most one row
// exists per (hsn_code, country) pair; the index backs the upsert lookup.
type ProductModel struct {
	ID           int64       `gorm:"primaryKey;autoIncrement"`
	Name         string      `gorm:"type:varchar(512);not null"`
	HSNCode      string      `gorm:"column:hsn_code;type:varchar(32);not null;index:idx_products_hsn_country"`
	Country      string      `gorm:"type:varchar(64);not null;index:idx_products_hsn_country"`
	Description  string      `gorm:"type:text"`
	RecordType   string      `gorm:"column:record_type;type:varchar(64);not null;index"`
	PriceHistory PriceMap    `gorm:"column:price_history;type:json"`
	Currencies   CurrencyMap `gorm:"type:json"`
	Embedding    Vector      `gorm:"type:json;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for ProductModel.
func (ProductModel) TableName() string { return "products" }
