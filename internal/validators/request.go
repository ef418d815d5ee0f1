// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator validates inbound request bodies declared with
// `validate` struct tags. Besides the built-in rules it understands the
// `password` tag, which applies [CheckPassword].
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator constructs a RequestValidator and returns it as the
// Validator interface.
func NewRequestValidator() Validator {
	v := validator.New()
	// report JSON names instead of Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("password", passwordRule)

	return &RequestValidator{validate: v}
}

// Validate checks obj, which must be a struct or a pointer to one. When
// fields are given (Go field names), only those fields are checked.
//
// Every failure wraps ErrValidation. A failed `password` rule additionally
// wraps the specific policy error from CheckPassword so callers can surface it.
func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	t := reflect.TypeOf(obj)
	if t == nil || (t.Kind() != reflect.Struct && !(t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct)) {
		return ErrUnsupportedType
	}

	var err error
	if len(fields) > 0 {
		err = v.validate.StructPartialCtx(ctx, obj, fields...)
	} else {
		err = v.validate.StructCtx(ctx, obj)
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	first := fieldErrs[0]
	switch first.Tag() {
	case "password":
		return fmt.Errorf("%w: %w", ErrValidation, CheckPassword(fmt.Sprint(first.Value())))
	case "email":
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmailMalformed)
	}
	if first.Field() == "username" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrUsernameMalformed)
	}

	return fmt.Errorf("%w: %s is %s", ErrValidation, first.Field(), describeTag(first))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min", "max":
		return "out of range (" + fe.Tag() + "=" + fe.Param() + ")"
	default:
		return "invalid"
	}
}
