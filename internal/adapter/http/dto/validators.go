package dto

import (
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"sync/atomic"

	"eagle-bank-api/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var accountNumberRe atomic.Pointer[regexp.Regexp]

func init() {
	SetAccountNumberFormat("01", 6)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_number", validateAccountNumber)
		_ = v.RegisterValidation("transaction_id", validateTransactionID)
	}
}

// SetAccountNumberFormat sets the shape the account_number validator accepts:
// prefix followed by exactly digits decimal digits.
func SetAccountNumberFormat(prefix string, digits int) {
	accountNumberRe.Store(regexp.MustCompile(fmt.Sprintf(`^%s\d{%d}$`, regexp.QuoteMeta(prefix), digits)))
}

// IsAccountNumber reports whether s has the configured account number shape.
func IsAccountNumber(s string) bool {
	return accountNumberRe.Load().MatchString(s)
}

func validateAccountNumber(fl validator.FieldLevel) bool {
	return IsAccountNumber(fl.Field().String())
}

func validateTransactionID(fl validator.FieldLevel) bool {
	return domain.IsTransactionID(fl.Field().String())
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
