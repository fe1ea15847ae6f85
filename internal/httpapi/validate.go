package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so error details match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("mintext", func(fl validator.FieldLevel) bool {
		return int64(utf8.RuneCountInString(fl.Field().String())) >= minTextChars.Load()
	}); err != nil {
		panic(err)
	}
	return v
}

// validationDetail validates req and renders every failing field into one
// message. It returns "" when req is valid.
func validationDetail(req any) string {
	err := validate.Struct(req)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "mintext":
		return fmt.Sprintf("text must be at least %d characters long", minTextChars.Load())
	case "gte":
		return "must be >= " + fe.Param()
	case "gtefield":
		return "must be >= " + jsonName(fe.Param())
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// jsonName converts a Go field name used in a cross-field rule to its JSON form.
func jsonName(goName string) string {
	var b strings.Builder
	for i, r := range goName {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
