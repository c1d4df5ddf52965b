package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the configuration's custom rules:
//   - url_path: value starts with "/" and contains no whitespace
//   - postgres needs either a URL or a host
//   - the exchange poll interval cannot exceed the offer timeout
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("url_path", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return strings.HasPrefix(p, "/") && !strings.ContainsAny(p, " \t\n")
	})
	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})
	v.RegisterStructValidation(validateExchange, ExchangeConfig{})

	return &Validator{
		validate: v,
	}
}

func validateDatabase(sl validator.StructLevel) {
	db := sl.Current().Interface().(DatabaseConfig)
	if db.Type == "postgres" && db.URL == "" && db.Host == "" {
		sl.ReportError(db.Host, "Host", "host", "required_without_url", "")
	}
}

func validateExchange(sl validator.StructLevel) {
	ex := sl.Current().Interface().(ExchangeConfig)
	if ex.OfferTimeout > 0 && ex.PollInterval > ex.OfferTimeout {
		sl.ReportError(ex.PollInterval, "PollInterval", "poll_interval", "ltefield_offer_timeout", "")
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
