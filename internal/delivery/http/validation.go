package http

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// genderOptions are the values accepted for profile genders and gender
// filters; "any" is only meaningful in filters but is harmless elsewhere.
var genderOptions = map[string]bool{
	"male":      true,
	"female":    true,
	"nonbinary": true,
	"other":     true,
	"any":       true,
}

// registerValidations installs custom binding rules on gin's validator
// engine. Called once during router setup.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("genderopt", func(fl validator.FieldLevel) bool {
		return genderOptions[fl.Field().String()]
	})
}
