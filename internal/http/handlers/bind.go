package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the body into out and answers the 400 itself on failure,
// flattening validator errors into one readable message. An empty body is an
// empty payload, not malformed JSON: required tags still apply, and an
// all-optional payload binds as a no-op.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		if errors.Is(err, io.EOF) {
			if verr := binding.Validator.ValidateStruct(out); verr != nil {
				RespondBadRequest(ctx, bindErrorMessage(verr, out))

				return false
			}

			return true
		}

		RespondBadRequest(ctx, bindErrorMessage(err, out))

		return false
	}

	return true
}

func bindErrorMessage(err error, out interface{}) string {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		parts := make([]string, 0, len(validatorError))

		for _, fieldError := range validatorError {
			field := jsonFieldName(rootType, fieldError.StructField())
			parts = append(parts, field+" "+validationMessage(fieldError.Tag(), fieldError.Param()))
		}

		return strings.Join(parts, "; ")
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return "invalid JSON body"
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := unmatchedTypeError.Field

		if field == "" {
			field = "body"
		}

		return fmt.Sprintf("%s must be of type %s", field, unmatchedTypeError.Type.String())
	}

	// final fallback if the error could not be deciphered
	return "invalid request body"
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func jsonFieldName(rootType reflect.Type, structField string) string {
	if rootType == nil {
		return structField
	}

	sf, ok := rootType.FieldByName(structField)

	if !ok {
		return structField
	}

	tag := sf.Tag.Get("json")
	if tag == "" {
		return structField
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gte":
		return "must be at least " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
