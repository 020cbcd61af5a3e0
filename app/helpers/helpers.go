package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const NotFoundMessage = "Not found"

// BcryptMaxBytes is the longest input bcrypt will hash.
const BcryptMaxBytes = 72

// APIError is an error the handlers render as {"error": Message} with
// Status, plus a per-field map when validation failed.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewNotFoundError() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: NotFoundMessage}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// bcryptlen limits a string by bytes, not runes.
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= BcryptMaxBytes
	})
	return v
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", field)
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%s must be one of: %s.", field, err.Param())
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s.", field, err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s.", field, err.Param())
		case "bcryptlen":
			errorMessages[field] = fmt.Sprintf("%s must be at most %d bytes.", field, BcryptMaxBytes)
		default:
			errorMessages[field] = fmt.Sprintf("%s failed validation on %s.", field, err.Tag())
		}
	}
	return errorMessages
}

// DecodeAndValidate reads a JSON body into dst and validates it.
func DecodeAndValidate(r *http.Request, v *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewBadRequestError("request body is empty")
		}
		return NewBadRequestError("invalid JSON body")
	}

	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return &APIError{
				Status:  http.StatusBadRequest,
				Message: "validation failed",
				Fields:  FormatValidationErrors(validationErrors),
			}
		}
		return err
	}
	return nil
}

// PathID parses the {id} route variable. Routes only match digits, so a
// parse failure means the id overflowed.
func PathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, NewNotFoundError()
	}
	return uint(id), nil
}
