package question

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type recordValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var defaultValidator = mustNewRecordValidator()

func mustNewRecordValidator() *recordValidator {
	v, err := newRecordValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func newRecordValidator() (*recordValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(validateOptions, Record{})

	for tag, message := range map[string]string{
		"answer_range":   "{0} must be an index into options",
		"unique_options": "{0} must not contain duplicate answers",
	} {
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		}); err != nil {
			return nil, fmt.Errorf("failed to register %s translation: %w", tag, err)
		}
	}

	return &recordValidator{validate: validate, translator: trans}, nil
}

func validateOptions(sl validator.StructLevel) {
	record := sl.Current().Interface().(Record)

	if record.Answer >= len(record.Options) {
		sl.ReportError(record.Answer, "correct_answer", "Answer", "answer_range", "")
	}

	seen := make(map[string]struct{}, len(record.Options))
	for _, option := range record.Options {
		key := NormalizeText(option)
		if _, ok := seen[key]; ok {
			sl.ReportError(record.Options, "options", "Options", "unique_options", "")
			return
		}
		seen[key] = struct{}{}
	}
}

func validateRecord(record Record) error {
	if err := defaultValidator.validate.Struct(record); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, e.Translate(defaultValidator.translator))
		}
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(messages, ", "))
	}
	return nil
}
