package util

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
)

var Validate *validator.Validate

var uppercase = regexp.MustCompile(`[A-Z]`)

func init() {
	Validate = validator.New()
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	Validate.RegisterValidation("hasuppercase", validateHasUppercase)
	Validate.RegisterValidation("objectid", validateObjectID)
	Validate.RegisterValidation("yyyymmdd", validateDate)
}

func validateHasUppercase(fl validator.FieldLevel) bool {
	return uppercase.MatchString(fl.Field().String())
}

func validateObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// ValidateStruct returns one FieldError per failed rule, or nil when s is valid.
func ValidateStruct(s interface{}) []models.FieldError {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []models.FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]models.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		element := models.FieldError{Field: fe.Field(), Tag: fe.Tag()}

		switch fe.Tag() {
		case "required":
			element.Message = fmt.Sprintf("Field '%s' is required.", fe.Field())
		case "min":
			element.Message = fmt.Sprintf("Field '%s' must be at least %s.", fe.Field(), fe.Param())
		case "max":
			element.Message = fmt.Sprintf("Field '%s' must be at most %s.", fe.Field(), fe.Param())
		case "len":
			element.Message = fmt.Sprintf("Field '%s' must be exactly %s characters.", fe.Field(), fe.Param())
		case "email":
			element.Message = "Invalid email format."
		case "hasuppercase":
			element.Message = "Password must contain at least one uppercase letter."
		case "objectid":
			element.Message = fmt.Sprintf("Field '%s' must be a valid id.", fe.Field())
		case "yyyymmdd":
			element.Message = fmt.Sprintf("Field '%s' must be a date in YYYY-MM-DD format.", fe.Field())
		case "datetime":
			element.Message = fmt.Sprintf("Field '%s' must match the format %s.", fe.Field(), fe.Param())
		case "numeric":
			element.Message = fmt.Sprintf("Field '%s' must be numeric.", fe.Field())
		case "oneof":
			element.Message = fmt.Sprintf("Field '%s' must be one of: %s.", fe.Field(), fe.Param())
		default:
			element.Message = fmt.Sprintf("Field '%s' failed validation for tag '%s'.", fe.Field(), fe.Tag())
		}
		out = append(out, element)
	}
	return out
}
