package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionRequestValidate(t *testing.T) {
	valid := QuestionRequest{
		Text:        "Capital of France?",
		Answers:     []string{"Paris", "Lyon"},
		RightAnswer: "Paris",
	}
	assert.Empty(t, valid.Validate())

	t.Run("too few answers", func(t *testing.T) {
		q := valid
		q.Answers = []string{"Paris"}
		errs := q.Validate()
		assert.Contains(t, errs, "answers")
	})

	t.Run("too many answers", func(t *testing.T) {
		q := valid
		q.Answers = make([]string, 11)
		for i := range q.Answers {
			q.Answers[i] = string(rune('a' + i))
		}
		q.RightAnswer = "a"
		errs := q.Validate()
		assert.Contains(t, errs, "answers")
	})

	t.Run("duplicate answers", func(t *testing.T) {
		q := valid
		q.Answers = []string{"Paris", "Paris"}
		errs := q.Validate()
		assert.Contains(t, errs, "answers")
	})

	t.Run("right answer not among answers", func(t *testing.T) {
		q := valid
		q.RightAnswer = "Marseille"
		errs := q.Validate()
		assert.Contains(t, errs, "right_answer")
	})

	t.Run("missing text", func(t *testing.T) {
		q := valid
		q.Text = ""
		errs := q.Validate()
		assert.Contains(t, errs, "text")
	})
}

func TestCreateQuizRequestValidate(t *testing.T) {
	valid := CreateQuizRequest{
		Name:      "Onboarding",
		Frequency: 7,
		Questions: []QuestionRequest{
			{Text: "q1", Answers: []string{"a", "b"}, RightAnswer: "a"},
		},
	}
	assert.Empty(t, valid.Validate())

	t.Run("missing name", func(t *testing.T) {
		r := valid
		r.Name = ""
		assert.Contains(t, r.Validate(), "name")
	})

	t.Run("negative frequency", func(t *testing.T) {
		r := valid
		r.Frequency = -1
		assert.Contains(t, r.Validate(), "frequency")
	})

	t.Run("question errors keyed by index", func(t *testing.T) {
		r := valid
		r.Questions = []QuestionRequest{
			{Text: "q1", Answers: []string{"a", "b"}, RightAnswer: "a"},
			{Text: "", Answers: []string{"a"}, RightAnswer: "x"},
		}
		errs := r.Validate()
		assert.Contains(t, errs, "questions[1].text")
		assert.Contains(t, errs, "questions[1].answers")
	})
}

func TestUpdateQuizRequestValidate(t *testing.T) {
	empty := ""
	negative := -5

	assert.Empty(t, UpdateQuizRequest{}.Validate())
	assert.Contains(t, UpdateQuizRequest{Name: &empty}.Validate(), "name")
	assert.Contains(t, UpdateQuizRequest{Frequency: &negative}.Validate(), "frequency")
}
