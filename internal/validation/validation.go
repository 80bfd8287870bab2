package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/developia-II/catalog-api/utils"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func setup() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
	_ = validate.RegisterTranslation("mongodb", translator,
		func(t ut.Translator) error {
			return t.Add("mongodb", "{0} must be a valid id", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("mongodb", fe.Field())
			return msg
		},
	)
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(setup)
	return validate
}

// Struct validates v and reports every violated constraint in a single
// 400 error.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	return utils.BadRequest("Validation error: " + strings.Join(Messages(fieldErrs), ", "))
}

// Messages translates validator errors into human readable sentences,
// prefixed with the path of the offending field for nested values.
func Messages(fieldErrs validator.ValidationErrors) []string {
	Validator()
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fe.Translate(translator)
		if path := fieldPath(fe); path != fe.Field() {
			msg = path + ": " + msg
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// fieldPath strips the root struct name from the namespace, e.g.
// "CreateProductInput.variants[0].sku" becomes "variants[0].sku".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
