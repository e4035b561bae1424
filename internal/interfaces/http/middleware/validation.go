package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/homeops/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the shared gin validator: JSON/form tag names
// in error output and decimal awareness for min/max style comparisons.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// Expose decimal.Decimal to the validator as its float value so tags
	// like gt=0 work on money fields
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// HandleBindingError writes the response for a failed ShouldBind call.
// Malformed payloads are 400; payloads that parse but break validation
// rules are 422 with the full violation list.
func HandleBindingError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		details := make([]dto.ViolationDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, dto.ViolationDetail{
				Field:   e.Field(),
				Path:    fieldPath(e),
				Message: validationMessage(e),
			})
		}
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
			"Request validation failed",
			requestID,
			details,
		))
		return
	}

	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest,
		err.Error(),
		requestID,
	))
}

// fieldPath strips the root struct name from the validator namespace so a
// nested failure keeps its slice indices, e.g. "locations[0].devices[1].quantity"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
