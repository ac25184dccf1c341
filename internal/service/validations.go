package service

import (
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
			_, err := parseClockMinutes(fl.Field().String())
			return err == nil
		})
		validate.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
			_, err := time.ParseInLocation(entity.DateLayout, fl.Field().String(), time.Local)
			return err == nil
		})
	})
}

// validateStruct maps field errors onto the validation sentinel so callers can
// distinguish rejected input from internal failures.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		joined := error(errorvalues.ErrValidation)
		for _, fieldErr := range fieldErrs {
			joined = errors.Join(joined, fieldErr)
		}
		return joined
	}
	return errors.New("validation unexpected error: " + err.Error())
}
