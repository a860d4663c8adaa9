// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package validation wraps go-playground/validator to turn struct-tag
// constraint violations into field->message maps, the shape bind*
// operations surface as a ValidationError.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func shared() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// FieldErrors validates value and, if constraints fail, returns a
// field->human-readable-message map. A nil map with ok=true means
// validation passed.
func FieldErrors(value any) (fields map[string]string, ok bool) {
	err := shared().Struct(value)
	if err == nil {
		return nil, true
	}
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation {
		return map[string]string{"_": err.Error()}, false
	}
	fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonFieldName(fe)] = describe(fe)
	}
	return fields, false
}

// jsonFieldName prefers the struct field's declared name lowered; callers
// who want exact JSON tag names should tag validator fields consistently
// with their bind source.
func jsonFieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", jsonFieldName(fe))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", jsonFieldName(fe))
	case "min":
		return fmt.Sprintf("%s must be at least %s", jsonFieldName(fe), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", jsonFieldName(fe), fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", jsonFieldName(fe), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", jsonFieldName(fe), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation %q", jsonFieldName(fe), fe.Tag())
	}
}

// RegisterValidation adds a custom validation function under tag, usable
// from struct tags across the process. Must be called before Struct/Var
// are invoked concurrently from handlers (typically at provider boot).
func RegisterValidation(tag string, fn validator.Func) error {
	return shared().RegisterValidation(tag, fn)
}

// Var validates a single value against a validator tag expression (e.g.
// "required,gte=0,lte=130"), returning a message describing the first
// failure.
func Var(value any, tagExpr string) (string, bool) {
	if err := shared().Var(value, tagExpr); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return describe(verrs[0]), false
		}
		return err.Error(), false
	}
	return "", true
}
