// Package validation provides custom validators for the application
package validation

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with all custom rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		if err := validate.RegisterValidation("origin", validateOrigin); err != nil {
			panic(err)
		}
		if err := validate.RegisterValidation("cronspec", validateCronSpec); err != nil {
			panic(err)
		}
	})
	return validate
}

// Struct validates a struct using the shared validator
func Struct(s interface{}) error {
	return Validator().Struct(s)
}

// validateOrigin checks that a string is a bare http(s) origin such as http://localhost:3001
func validateOrigin(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return false
	}
	return u.Path == "" || u.Path == "/"
}

// validateCronSpec checks that a string parses as a standard cron schedule or descriptor
func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}
