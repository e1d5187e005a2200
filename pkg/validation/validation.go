package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var v *validator.Validate

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	if v == nil {
		v = validator.New()
		// Custom: outlier treatment policy
		_ = v.RegisterValidation("outlier_policy", func(fl validator.FieldLevel) bool {
			switch strings.TrimSpace(fl.Field().String()) {
			case "", "clip", "drop", "keep":
				return true
			}
			return false
		})
		// Custom: period bucket for time groupings
		_ = v.RegisterValidation("bucket", func(fl validator.FieldLevel) bool {
			switch strings.TrimSpace(fl.Field().String()) {
			case "", "day", "week", "month", "quarter":
				return true
			}
			return false
		})
		// Custom: fractional share in (0, 1]
		_ = v.RegisterValidation("share", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return f == 0 || (f > 0 && f <= 1)
		})
		// Custom: date layout must round-trip its own reference rendering
		_ = v.RegisterValidation("date_layout", func(fl validator.FieldLevel) bool {
			layout := strings.TrimSpace(fl.Field().String())
			if layout == "" {
				return true
			}
			ref := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
			_, err := time.Parse(layout, ref.Format(layout))
			return err == nil
		})
	}
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string.
// Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("invalid options: %s is required", field)
			case "outlier_policy":
				return fmt.Sprintf("invalid options: %s must be clip, drop, or keep", field)
			case "bucket":
				return fmt.Sprintf("invalid options: %s must be day, week, month, or quarter", field)
			case "share":
				return fmt.Sprintf("invalid options: %s must be a fraction in (0, 1]", field)
			case "date_layout":
				return fmt.Sprintf("invalid options: %s is not a valid Go date layout", field)
			case "min", "max", "gte", "lte", "gt":
				return fmt.Sprintf("invalid options: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("invalid options: %s", field)
		}
		return "invalid options"
	}
	return ""
}
