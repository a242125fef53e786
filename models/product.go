package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. Price is kept as an exact decimal
// and always serialized as a string with two fractional digits.
type Product struct {
	ID          int             `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Inventory   int             `db:"inventory"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// MarshalJSON renders price as "NN.NN" so clients never see float artifacts.
func (p Product) MarshalJSON() ([]byte, error) {
	type productJSON struct {
		ID          int       `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Price       string    `json:"price"`
		Inventory   int       `json:"inventory"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}
	return json.Marshal(productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Inventory:   p.Inventory,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
}

// ProductInput holds data for creating/updating a product.
// Pointer fields distinguish "omitted" from "present" so the item endpoint
// can apply partial updates; omitted fields retain their prior value.
type ProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Inventory   *int             `json:"inventory"`
}
