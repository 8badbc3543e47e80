// Package validation validates request payloads with go-playground/validator
// and registers the custom tags for the check-in vocabularies.
//
//	type CreateRequest struct {
//	    Mood     string         `validate:"required,mood"`
//	    Emotions map[string]int `validate:"dive,keys,emotion,endkeys,min=0"`
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes the first rule a payload broke.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister("mood", func(fl validator.FieldLevel) bool {
			_, err := mood.ParseMood(fl.Field().String())
			return err == nil
		})
		mustRegister("emotion", func(fl validator.FieldLevel) bool {
			_, err := mood.ParseEmotion(fl.Field().String())
			return err == nil
		})
		mustRegister("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and returns a *FieldError for the first failure.
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &FieldError{Message: err.Error()}
	}

	fe := verrs[0]
	return &FieldError{
		Field:   fe.Field(),
		Tag:     fe.Tag(),
		Param:   fe.Param(),
		Message: message(fe),
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "mood":
		return fmt.Sprintf("%s must be one of %s", field, joinMoods())
	case "emotion":
		return fmt.Sprintf("unknown emotion %q", fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func joinMoods() string {
	names := make([]string, len(mood.Moods))
	for i, m := range mood.Moods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
