package handlers

import (
	"testing"

	"bookstore/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func productInput(name string, price string, inventory int) models.ProductInput {
	d := decimal.RequireFromString(price)
	return models.ProductInput{Name: &name, Price: &d, Inventory: &inventory}
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		input   models.ProductInput
		partial bool
		want    map[string]string // field -> expected message ("" for no error)
	}{
		{
			name:  "valid",
			input: productInput("Widget", "9.99", 5),
			want:  map[string]string{},
		},
		{
			name:  "zero inventory is allowed",
			input: productInput("Widget", "0.01", 0),
			want:  map[string]string{},
		},
		{
			name:  "zero price",
			input: productInput("Widget", "0", 5),
			want:  map[string]string{"price": "Price must be greater than 0."},
		},
		{
			name:  "negative inventory",
			input: productInput("Widget", "9.99", -1),
			want:  map[string]string{"inventory": "Inventory must be greater than or equal to 0."},
		},
		{
			name:  "three decimal places",
			input: productInput("Widget", "1.999", 5),
			want:  map[string]string{"price": "Ensure that there are no more than 2 decimal places."},
		},
		{
			name:  "eight integer digits fit",
			input: productInput("Widget", "99999999.99", 5),
			want:  map[string]string{},
		},
		{
			name:  "nine integer digits overflow",
			input: productInput("Widget", "100000000.00", 5),
			want:  map[string]string{"price": "Ensure that there are no more than 10 digits in total."},
		},
		{
			name:  "everything missing on create",
			input: models.ProductInput{},
			want: map[string]string{
				"name":      "This field is required.",
				"price":     "This field is required.",
				"inventory": "This field is required.",
			},
		},
		{
			name:    "everything missing on partial update",
			input:   models.ProductInput{},
			partial: true,
			want:    map[string]string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := validateProduct(tc.input, tc.partial)
			assert.Len(t, got, len(tc.want))
			for field, message := range tc.want {
				assert.Contains(t, got[field], message)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, validatePassword("testuser", "correct horse battery"))

	assert.Contains(t, validatePassword("testuser", "short1"),
		"This password is too short. It must contain at least 8 characters.")
	assert.Contains(t, validatePassword("testuser", "2468013579"),
		"This password is entirely numeric.")
	assert.Contains(t, validatePassword("testuser", "SUNSHINE"),
		"This password is too common.")
	assert.Contains(t, validatePassword("testuser", "TestUser"),
		"The password is too similar to the username.")

	// a failing password can trip several checks at once
	assert.Len(t, validatePassword("1234567", "1234567"), 3)
}
