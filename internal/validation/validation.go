// Package validation builds the shared payload validator with the domain tags
// `bloodgroup`, `urgency`, `requeststatus` and `donationstatus`.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

// New returns a validator that reports JSON field names and knows the domain enums.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return models.BloodGroup(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return models.UrgencyLevel(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("requeststatus", func(fl validator.FieldLevel) bool {
		return models.RequestStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("donationstatus", func(fl validator.FieldLevel) bool {
		return models.DonationStatus(fl.Field().String()).Valid()
	})
	return v
}
