// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expense_filter", validateExpenseFilter)
		_ = v.RegisterValidation("month_key", validateMonthKey)
	}
}

func validateExpenseFilter(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "today", "week", "month":
		return true
	}
	return false
}

func validateMonthKey(fl validator.FieldLevel) bool {
	return monthKeyRegex.MatchString(fl.Field().String())
}
