// Package validation checks input structs and reports every failing field.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// custom validation tags
const (
	notBlankTag = "notblank"
	lrnTag      = "lrn"
	emailTag    = "email_at"
	strandTag   = "strand"
)

var customMessages = map[string]string{
	notBlankTag: "{0} cannot be blank",
	lrnTag:      "{0} must be a 12-digit number",
	emailTag:    "{0} must be a valid email address",
	strandTag:   "{0} must be one of STEM, ABM, HUMSS, GAS, TVL",
}

func init() {
	validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Money and dates are validated by their plain values
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		f, _ := v.Interface().(decimal.Decimal).Float64()
		return f
	}, decimal.Decimal{})
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		return time.Time(v.Interface().(types.Date))
	}, types.Date{})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(lrnTag, lrn)
	_ = validate.RegisterValidation(emailTag, email)
	_ = validate.RegisterValidation(strandTag, strand)

	for tag, message := range customMessages {
		registerTranslation(tag, message)
	}
}

func registerTranslation(tag, message string) {
	_ = validate.RegisterTranslation(tag, translator, func(t ut.Translator) error {
		return t.Add(tag, message, true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	})
}

// Struct validates s and returns a *models.ValidationError listing
// all failing fields, or nil.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	verr := models.NewValidationError()
	for _, fe := range fieldErrors {
		verr.Add(fe.Field(), fe.Translate(translator))
	}

	return verr
}

// Merge combines the fields of validation errors so that checks that
// cannot be expressed as tags are reported together with the tag checks.
func Merge(err error, extra *models.ValidationError) error {
	var verr *models.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}

	if verr == nil {
		verr = models.NewValidationError()
	}

	if extra != nil {
		verr.Fields = append(verr.Fields, extra.Fields...)
	}

	return verr.OrNil()
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func lrn(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 12 {
		return false
	}

	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// email only requires an "@" between a local part and a domain.
func email(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}

func strand(fl validator.FieldLevel) bool {
	return models.Strand(fl.Field().String()).Valid()
}
