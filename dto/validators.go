package dto

import (
	"github.com/go-playground/validator/v10"

	"larre/model"
)

// RegisterValidators adds the binding tags used by the request DTOs.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("tagcolor", func(fl validator.FieldLevel) bool {
		return model.IsTagColor(fl.Field().String())
	})
}
