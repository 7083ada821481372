// Package validator provides custom validation functions for Gin's binding engine
// and translates validation failures into per-field messages.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bukukas/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("group_type", validateGroupType)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("employee_payment_type", validateEmployeePaymentType)
		_ = v.RegisterValidation("employee_payment_status", validateEmployeePaymentStatus)
		_ = v.RegisterValidation("hayabusa_status", validateHayabusaStatus)
		_ = v.RegisterValidation("report_type", validateReportType)
	}
}

// jsonName reports fields by their wire name, falling back to the form tag.
func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

func validateGroupType(fl validator.FieldLevel) bool {
	switch models.GroupType(fl.Field().String()) {
	case models.GroupTypeIncome, models.GroupTypeExpense, models.GroupTypeUniversal:
		return true
	}
	return false
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func validateEmployeePaymentType(fl validator.FieldLevel) bool {
	switch models.EmployeePaymentType(fl.Field().String()) {
	case models.EmployeePaymentSalary, models.EmployeePaymentBonus, models.EmployeePaymentOvertime,
		models.EmployeePaymentAllowance, models.EmployeePaymentCommission:
		return true
	}
	return false
}

func validateEmployeePaymentStatus(fl validator.FieldLevel) bool {
	switch models.EmployeePaymentStatus(fl.Field().String()) {
	case models.EmployeePaymentPending, models.EmployeePaymentApproved,
		models.EmployeePaymentPaid, models.EmployeePaymentCancelled:
		return true
	}
	return false
}

func validateHayabusaStatus(fl validator.FieldLevel) bool {
	return models.HayabusaPaymentStatus(fl.Field().String()).Valid()
}

func validateReportType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "yearly":
		return true
	}
	return false
}

// Fields converts a binding error into a field → messages map. It returns
// nil when err is not a validation error (for example malformed JSON).
func Fields(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "uuid":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "datetime":
		return fmt.Sprintf("The %s is not a valid date.", field)
	case "hex_color":
		return fmt.Sprintf("The %s format is invalid.", field)
	default:
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
}
