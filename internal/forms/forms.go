// Package forms validates decoded form input and turns failures into per-field messages
// the page templates render inline.
package forms

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag  = "notblank"
	notBlankText = "{0} must not be blank"

	csvListTag  = "csvlist"
	csvListText = "{0} must list at least one comma-separated entry"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report the form field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	registerTranslation(notBlankTag, notBlankText)
	_ = validate.RegisterValidation(csvListTag, csvList)
	registerTranslation(csvListTag, csvListText)
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

func csvList(fl validator.FieldLevel) bool {
	return len(SplitList(fl.Field().String())) > 0
}

// Errors maps a form field name to its message.
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Get(field string) string { return e[field] }

// Validate checks v's `validate` tags. It returns nil when v is valid.
func Validate(v interface{}) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"_": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fe.Translate(translator)
		}
	}
	return out
}

// SplitList splits a comma-separated list, trimming entries and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Reader reads typed values from a parsed request and remembers the ones that do not parse.
type Reader struct {
	r    *http.Request
	errs Errors
}

func NewReader(r *http.Request) *Reader { return &Reader{r: r} }

// Int reads an integer form value. A missing value yields def. A malformed one yields def
// and is reported by Errors; range checks belong to the struct tags.
func (fr *Reader) Int(name string, def int) int {
	v := strings.TrimSpace(fr.r.FormValue(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if fr.errs == nil {
			fr.errs = make(Errors)
		}
		fr.errs[name] = name + " must be a whole number"
		return def
	}
	return n
}

// Errors returns the values that failed to parse, or nil.
func (fr *Reader) Errors() Errors {
	if len(fr.errs) == 0 {
		return nil
	}
	return fr.errs
}

// Validate checks v like the package-level Validate and adds the parse failures, which
// take precedence for their field. It returns nil when both are clean.
func (fr *Reader) Validate(v interface{}) Errors {
	out := Validate(v)
	if len(fr.errs) == 0 {
		return out
	}
	if out == nil {
		out = make(Errors, len(fr.errs))
	}
	for k, msg := range fr.errs {
		out[k] = msg
	}
	return out
}
