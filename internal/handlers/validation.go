package handlers

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidations adds the custom binding tags used by request models
// to gin's validator. Safe to call more than once.
func RegisterValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("apn", validateAPN)
	})
}

// validateAPN rejects blank or whitespace-only parcel numbers.
func validateAPN(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
