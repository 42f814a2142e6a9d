package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"pdf-quiz/internal/domain"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, shaped for API responses.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors collects field errors from a single validation pass.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator checks payloads received from the practice backend.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(quizQuestionStructLevel, domain.QuizQuestion{})
	return &Validator{validate: v}
}

// correctAnswer must point into options; the tag rules cannot express that.
func quizQuestionStructLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(domain.QuizQuestion)
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		sl.ReportError(q.CorrectAnswer, "correctAnswer", "CorrectAnswer", "option_index", "")
	}
}

// ValidateQuestions checks a generated question set. Index-prefixed field names
// make the offending question easy to find in logs.
func (v *Validator) ValidateQuestions(questions []domain.QuizQuestion) error {
	var errs Errors
	for i := range questions {
		if err := v.validate.Struct(questions[i]); err != nil {
			errs = append(errs, toFieldErrors(fmt.Sprintf("questions[%d]", i), err)...)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidatePDFID rejects identifiers that cannot be placed in a URL path.
func (v *Validator) ValidatePDFID(pdfID string) error {
	if err := v.validate.Var(pdfID, "required,max=256,excludesall=/?#"); err != nil {
		return toFieldErrors("pdfId", err)
	}
	return nil
}

func toFieldErrors(prefix string, err error) Errors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: prefix, Rule: "invalid", Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		field := prefix
		if fe.Field() != "" {
			field = prefix + "." + fe.Field()
		}
		out = append(out, FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: fmt.Sprintf("%s failed on '%s'", field, fe.Tag()),
		})
	}
	return out
}
