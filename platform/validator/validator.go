// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Closed value sets accepted by the custom tags. They mirror the domain
// enumerations without importing them, so the platform layer stays leaf-level.
var (
	platformValues    = []string{"linkedin", "twitter", "instagram", "facebook", "tiktok", "youtube", "reddit"}
	temperatureValues = []string{"cold", "warm", "hot"}
	buyingStageValues = []string{"awareness", "consideration", "evaluation", "decision", "purchase"}
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the domain tags registered:
// platform, temperature and buyingstage. Empty strings pass so the tags
// combine with omitempty/required as usual.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("platform", oneOfFold(platformValues))
	_ = v.RegisterValidation("temperature", oneOfFold(temperatureValues))
	_ = v.RegisterValidation("buyingstage", oneOfFold(buyingStageValues))
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func oneOfFold(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if value == "" {
			return true
		}
		for _, allowed := range values {
			if strings.EqualFold(value, allowed) {
				return true
			}
		}
		return false
	}
}
