package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// DefaultLocale used when the caller asks for a locale we have no translator for
const DefaultLocale = "en"

// PlaygroundV10 Validator implementation using go-playground
type PlaygroundV10 struct {
	core *validator.Validate
	uni  *ut.UniversalTranslator
}

var _ Validator = &PlaygroundV10{}

// NewValidator create a new Validator
func NewValidator() *PlaygroundV10 {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())

	validate := validator.New()
	enTrans, _ := uni.GetTranslator("en")
	zhTrans, _ := uni.GetTranslator("zh")
	en_translations.RegisterDefaultTranslations(validate, enTrans)
	zh_translations.RegisterDefaultTranslations(validate, zhTrans)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})
	return &PlaygroundV10{
		core: validate,
		uni:  uni,
	}
}

func (v PlaygroundV10) translator(lang string) ut.Translator {
	if trans, found := v.uni.GetTranslator(strings.ToLower(lang)); found {
		return trans
	}
	trans, _ := v.uni.GetTranslator(DefaultLocale)
	return trans
}

// Struct validate struct
func (v PlaygroundV10) Struct(lang string, s interface{}) []*FieldError {
	err := v.core.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		panic(err)
	}

	trans := v.translator(lang)
	var result []*FieldError
	for _, item := range errs {
		result = append(result, NewFieldError(item.Field(), item.Translate(trans)))
	}
	return result
}

// Empty check if value is empty
func (v PlaygroundV10) Empty(lang string, varName string, s interface{}) []*FieldError {
	err := v.core.Var(s, "required")
	if err == nil {
		return nil
	}

	trans := v.translator(lang)
	var result []*FieldError
	for _, item := range err.(validator.ValidationErrors) {
		reason := strings.TrimSpace(varName + item.Translate(trans))
		result = append(result, NewFieldError(varName, reason))
	}
	return result
}
