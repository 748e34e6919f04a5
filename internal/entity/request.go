package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CabinClass string

const (
	CabinEconomy        CabinClass = "ECONOMY"
	CabinPremiumEconomy CabinClass = "PREMIUM_ECONOMY"
	CabinBusiness       CabinClass = "BUSINESS"
	CabinFirst          CabinClass = "FIRST"
)

// JobRequest is the immutable input of a search-and-hold job.
type JobRequest struct {
	FromLocation  string     `json:"from_location" validate:"len=3,alpha,uppercase"`
	ToLocation    string     `json:"to_location" validate:"len=3,alpha,uppercase"`
	DepartureDate string     `json:"departure_date" validate:"datetime=2006-01-02"`
	NumPassengers int        `json:"num_passengers" validate:"gt=0"`
	SeatClass     CabinClass `json:"seat_class" validate:"oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError names the first field of a JobRequest that violates its
// constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Normalize trims whitespace and upper-cases codes and the cabin class.
func (r JobRequest) Normalize() JobRequest {
	r.FromLocation = strings.ToUpper(strings.TrimSpace(r.FromLocation))
	r.ToLocation = strings.ToUpper(strings.TrimSpace(r.ToLocation))
	r.DepartureDate = strings.TrimSpace(r.DepartureDate)
	r.SeatClass = CabinClass(strings.ToUpper(strings.TrimSpace(string(r.SeatClass))))
	return r
}

// Validate checks fields in wire order and reports the first violation.
func (r JobRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "len", "alpha", "uppercase":
		return "must be exactly 3 uppercase letters"
	case "datetime":
		return "must be a calendar date in YYYY-MM-DD format"
	case "gt":
		return "must be a positive integer"
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	}
	return "failed " + fe.Tag() + " check"
}
