package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes a pre-flight input failure detected before any
// network call. It is deliberately a distinct type so callers can tell
// "fix your input" apart from remote failures.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProductInput carries the client-supplied fields of a create call.
// Everything except title and price is optional.
type ProductInput struct {
	Title       string  `json:"product_title" validate:"required,min=2,max=200"`
	Price       float64 `json:"product_price"`
	Description string  `json:"product_description,omitempty" validate:"max=1000"`
	Category    string  `json:"product_category,omitempty" validate:"max=100"`
	Image       string  `json:"product_image,omitempty" validate:"omitempty,url,max=500"`
}

// Clean trims string fields and rounds the price to two decimal places.
// Cleaning an already-cleaned input yields an identical input.
func (in ProductInput) Clean() ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Image = strings.TrimSpace(in.Image)
	in.Price = RoundPrice(in.Price)
	return in
}

// Validate checks a cleaned input against the product field limits.
func (in ProductInput) Validate() error {
	if !ValidPrice(in.Price) {
		return &ValidationError{Field: "product_price", Reason: fmt.Sprintf("must be between 0 and %.2f", float64(MaxPrice))}
	}
	if err := validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ProductPatch carries the optional fields of an update call. Nil fields are
// omitted from the outgoing body and left untouched by the backend merge.
type ProductPatch struct {
	Title       *string  `json:"product_title,omitempty" validate:"omitempty,min=2,max=200"`
	Price       *float64 `json:"product_price,omitempty"`
	Description *string  `json:"product_description,omitempty" validate:"omitempty,max=1000"`
	Category    *string  `json:"product_category,omitempty" validate:"omitempty,max=100"`
	Image       *string  `json:"product_image,omitempty" validate:"omitempty,url,max=500"`
}

// Clean trims and rounds the fields that are present.
func (p ProductPatch) Clean() ProductPatch {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		p.Title = &trimmed
	}
	if p.Description != nil {
		trimmed := strings.TrimSpace(*p.Description)
		p.Description = &trimmed
	}
	if p.Category != nil {
		trimmed := strings.TrimSpace(*p.Category)
		p.Category = &trimmed
	}
	if p.Image != nil {
		trimmed := strings.TrimSpace(*p.Image)
		p.Image = &trimmed
	}
	if p.Price != nil {
		rounded := RoundPrice(*p.Price)
		p.Price = &rounded
	}
	return p
}

// Validate checks the fields that are present against the product field limits.
func (p ProductPatch) Validate() error {
	if p.Price != nil && !ValidPrice(*p.Price) {
		return &ValidationError{Field: "product_price", Reason: fmt.Sprintf("must be between 0 and %.2f", float64(MaxPrice))}
	}
	if err := validate.Struct(p); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:  jsonFieldName(fe.Field()),
			Reason: fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}
	return err
}

func jsonFieldName(structField string) string {
	switch structField {
	case "Title":
		return "product_title"
	case "Price":
		return "product_price"
	case "Description":
		return "product_description"
	case "Category":
		return "product_category"
	case "Image":
		return "product_image"
	default:
		return structField
	}
}
