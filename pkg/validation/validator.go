package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

var initOnce sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the domain tags city, housing, amenity, usertype and objectid.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=6,max=12")
		_ = v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
			return entity.City(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("housing", func(fl validator.FieldLevel) bool {
			return entity.HousingType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("amenity", func(fl validator.FieldLevel) bool {
			return entity.Amenity(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
			return entity.UserType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
}

// Validate checks v against its binding tags and returns one entry per failing field.
// A nil result means v is valid.
func Validate(v any) []ValidationsError {
	Init()
	return ToErrors(binding.Validator.ValidateStruct(v))
}

// ToErrors converts validation/binding errors into field errors.
func ToErrors(err error) []ValidationsError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationsError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationsError{
				Field:   fieldPath(fe),
				Tag:     fe.Tag(),
				Value:   fmt.Sprintf("%v", fe.Value()),
				Message: formatFieldError(fe),
			})
		}
		return out
	}
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	switch {
	case errors.As(err, &ute):
		return []ValidationsError{{Field: ute.Field, Tag: "type", Message: "must be of type " + ute.Type.String()}}
	case errors.As(err, &se), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []ValidationsError{{Field: "payload", Tag: "json", Message: "invalid json"}}
	}
	return []ValidationsError{{Field: "payload", Tag: "payload", Message: "invalid payload"}}
}

// fieldPath drops the root struct name: "CreateOfferDto.coordinates.latitude" -> "coordinates.latitude".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "len":
		return fmt.Sprintf("must contain exactly %s items", param)
	case "min":
		if isNumberKind(kind) {
			return "must be at least " + param
		}
		if kind == reflect.Slice {
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(kind) {
			return "must be at most " + param
		}
		if kind == reflect.Slice {
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "unique":
		return "must contain unique items"
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"

	case "pwd":
		return "must be between 6 and 12 characters long"
	case "city":
		return "must be one of: " + joinValues(entity.Cities)
	case "housing":
		return "must be one of: " + joinValues(entity.HousingTypes)
	case "amenity":
		return "must be one of: " + joinValues(entity.Amenities)
	case "usertype":
		return "must be one of: usual, pro"
	case "objectid":
		return "must be a valid object id"

	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ", ")
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// ValidationsError represents a structured validation error
type ValidationsError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}
