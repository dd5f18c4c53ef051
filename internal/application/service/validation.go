package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/salespos-api/pkg/apperror"
)

// validationError converts validator output into a 422 AppError. Field paths
// are lower-cased struct paths, optionally under prefix.
func validationError(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError(err.Error())
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		} else {
			path = fe.Field()
		}
		if prefix != "" {
			path = prefix + "." + path
		}
		fields = append(fields, apperror.FieldError{
			Field:   strings.ToLower(path),
			Message: describeTag(fe),
		})
	}
	return apperror.NewValidationError(fields)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "gt":
		return "must be greater than " + fe.Param()
	case "eq":
		return "must equal " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
