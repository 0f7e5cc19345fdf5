package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// apiFieldNames maps struct fields to the names clients send.
var apiFieldNames = map[string]string{
	"Unit": "flatNo",
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if m, ok := field.Interface().(Money); ok {
				return m.Cents
			}
			return nil
		}, Money{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(Date); ok {
				return d.Time
			}
			return nil
		}, Date{})
		_ = v.RegisterValidation("block", func(fl validator.FieldLevel) bool {
			return Block(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).Valid()
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name, ok := apiFieldNames[f.Name]; ok {
				return name
			}
			return strings.ToLower(f.Name[:1]) + f.Name[1:]
		})
		validate = v
	})
	return validate
}

func validateStruct(s any) error {
	return translate(validatorInstance().Struct(s))
}

func validateVar(field string, value any, tags string) error {
	err := validatorInstance().Var(value, tags)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: field, Reason: reason(verrs[0])}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// translate reports the first failing field as a FieldError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Reason: reason(verrs[0])}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "is required"
	case "gt":
		return "must be greater than zero"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "block":
		names := make([]string, len(Blocks))
		for i, b := range Blocks {
			names[i] = string(b)
		}
		return "must be one of " + strings.Join(names, ", ")
	case "status":
		return "must be Paid or Unpaid"
	}
	return "is invalid"
}
