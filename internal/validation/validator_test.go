package validation

import (
	"testing"

	"pdf-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestions(t *testing.T) {
	v := NewValidator()

	valid := domain.QuizQuestion{
		Question:      "What is a PDF?",
		Options:       []string{"A document format", "A database"},
		CorrectAnswer: 0,
		Explanation:   "Portable Document Format.",
	}

	tests := []struct {
		name      string
		questions []domain.QuizQuestion
		wantField string
	}{
		{"valid set", []domain.QuizQuestion{valid}, ""},
		{"empty set is structurally valid", nil, ""},
		{
			"missing question text",
			[]domain.QuizQuestion{{Options: valid.Options, CorrectAnswer: 0}},
			"questions[0].question",
		},
		{
			"single option",
			[]domain.QuizQuestion{{Question: "q", Options: []string{"only"}, CorrectAnswer: 0}},
			"questions[0].options",
		},
		{
			"blank option",
			[]domain.QuizQuestion{{Question: "q", Options: []string{"a", ""}, CorrectAnswer: 0}},
			"questions[0].options[1]",
		},
		{
			"correct answer out of range",
			[]domain.QuizQuestion{valid, {Question: "q", Options: []string{"a", "b"}, CorrectAnswer: 2}},
			"questions[1].correctAnswer",
		},
		{
			"negative correct answer",
			[]domain.QuizQuestion{{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: -1}},
			"questions[0].correctAnswer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestions(tt.questions)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var errs Errors
			require.ErrorAs(t, err, &errs)
			fields := make([]string, 0, len(errs))
			for _, fe := range errs {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidatePDFID(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidatePDFID("66f1c0a2e4b0"))
	assert.Error(t, v.ValidatePDFID(""))
	assert.Error(t, v.ValidatePDFID("../etc/passwd"))
	assert.Error(t, v.ValidatePDFID("abc?x=1"))
}
