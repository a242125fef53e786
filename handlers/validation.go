package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bookstore/models"

	"github.com/shopspring/decimal"
)

// FieldErrors maps a field name to its validation messages, and is the
// 400-response body for rejected API writes.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

var (
	priceDigitLimit = decimal.New(1, 8) // two decimal places leaves 8 integer digits
	centExponent    = int32(-2)
)

var typeErrorMessages = map[string]string{
	"name":        "Not a valid string.",
	"description": "Not a valid string.",
	"price":       "A valid number is required.",
	"inventory":   "A valid integer is required.",
}

// decodeProductInput decodes a product write body. A value of the wrong
// JSON type is reported as a FieldErrors entry against the offending
// field, exactly like a validation failure; the error return is reserved
// for bodies that are not JSON at all.
func decodeProductInput(r *http.Request) (models.ProductInput, FieldErrors, error) {
	var in models.ProductInput
	err := json.NewDecoder(r.Body).Decode(&in)
	if err == nil {
		return in, nil, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fieldErrs := FieldErrors{}
		message, ok := typeErrorMessages[typeErr.Field]
		if !ok {
			message = "Invalid value."
		}
		fieldErrs.add(typeErr.Field, message)
		return in, fieldErrs, nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return in, nil, err
	}

	// price is the only field with a custom decoder, so any remaining
	// decode error is a malformed price value
	fieldErrs := FieldErrors{}
	fieldErrs.add("price", typeErrorMessages["price"])
	return in, fieldErrs, nil
}

// validateProduct enforces the product field constraints for both the
// collection (create) and item (update) endpoints. With partial set,
// omitted fields are skipped; otherwise name, price and inventory are
// required. Returns an empty map when the input is valid.
func validateProduct(in models.ProductInput, partial bool) FieldErrors {
	errs := FieldErrors{}

	if in.Name == nil {
		if !partial {
			errs.add("name", "This field is required.")
		}
	} else if strings.TrimSpace(*in.Name) == "" {
		errs.add("name", "This field may not be blank.")
	}

	if in.Price == nil {
		if !partial {
			errs.add("price", "This field is required.")
		}
	} else {
		price := *in.Price
		switch {
		case price.Exponent() < centExponent:
			errs.add("price", "Ensure that there are no more than 2 decimal places.")
		case price.Abs().GreaterThanOrEqual(priceDigitLimit):
			errs.add("price", "Ensure that there are no more than 10 digits in total.")
		case price.LessThanOrEqual(decimal.Zero):
			errs.add("price", "Price must be greater than 0.")
		}
	}

	if in.Inventory == nil {
		if !partial {
			errs.add("inventory", "This field is required.")
		}
	} else if *in.Inventory < 0 {
		errs.add("inventory", "Inventory must be greater than or equal to 0.")
	}

	return errs
}
