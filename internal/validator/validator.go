package validator

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"schoolpay_backend/internal/logger"
)

// RegisterCustomRules installs the domain validation tags on gin's binding
// engine so request DTOs can declare them directly:
//
//	Role     models.UserRole      `binding:"required,userrole"`
//	Category models.AlertCategory `binding:"required,alertcategory"`
func RegisterCustomRules() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Warn("binding engine is not go-playground/validator, custom rules skipped")
		return
	}

	// Report field names from json tags, matching the DTOs the client sees.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Fatal("failed to register validation tag", "tag", tag, "error", err)
		}
	}

	mustRegister("userrole", validateUserRole)
	mustRegister("alertcategory", validateAlertCategory)
	mustRegister("alertseverity", validateAlertSeverity)
	mustRegister("threadkind", validateThreadKind)
}
