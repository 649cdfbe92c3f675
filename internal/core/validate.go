package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the required fields of a create or upsert request. The
// first failing field is reported.
func (d BillData) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return NewValidationError(fe.Field(), fe.Field()+" is required")
	case "oneof":
		return NewValidationError(fe.Field(), fe.Field()+" must be one of "+strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return NewValidationError(fe.Field(), fe.Field()+" must be at most "+fe.Param()+" characters")
	default:
		return NewValidationError(fe.Field(), fe.Field()+" is invalid")
	}
}
