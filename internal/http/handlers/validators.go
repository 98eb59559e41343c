package handlers

import (
	"sync"

	"flavorjunction/internal/mpesa"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules:
//
//	kephone: a number FormatPhoneNumber turns into a valid 254XXXXXXXXX MSISDN
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("kephone", func(fl validator.FieldLevel) bool {
			return mpesa.ValidPhoneNumber(fl.Field().String())
		})
	})
}
