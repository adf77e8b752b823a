package controllers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"transroute/internal/location"
)

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("location", validLocation)
}

func validLocation(fl validator.FieldLevel) bool {
	return location.Parse(fl.Field().String()).Valid()
}
