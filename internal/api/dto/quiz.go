package dto

import "fmt"

const (
	minAnswers = 2
	maxAnswers = 10
)

type QuestionRequest struct {
	Text        string   `json:"text"`
	Answers     []string `json:"answers"`
	RightAnswer string   `json:"right_answer"`
}

// Validate enforces the answer-set rules: 2 to 10 answers, no
// duplicates, and the right answer present among them.
func (r QuestionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Text == "" {
		errors["text"] = "Question text is required"
	}
	if len(r.Answers) < minAnswers {
		errors["answers"] = "At least 2 answers are required"
	} else if len(r.Answers) > maxAnswers {
		errors["answers"] = "At most 10 answers are allowed"
	} else {
		seen := make(map[string]bool, len(r.Answers))
		for _, a := range r.Answers {
			if seen[a] {
				errors["answers"] = "Answers must be unique"
				break
			}
			seen[a] = true
		}
	}
	if r.RightAnswer == "" {
		errors["right_answer"] = "Right answer is required"
	} else if len(errors) == 0 {
		found := false
		for _, a := range r.Answers {
			if a == r.RightAnswer {
				found = true
				break
			}
		}
		if !found {
			errors["right_answer"] = "Right answer must be one of the answers"
		}
	}

	return errors
}

type CreateQuizRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Frequency   int               `json:"frequency"`
	Questions   []QuestionRequest `json:"questions,omitempty"`
}

func (r CreateQuizRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 50 {
		errors["name"] = "Name must be at most 50 characters"
	}
	if r.Frequency < 0 {
		errors["frequency"] = "Frequency cannot be negative"
	}
	for i, q := range r.Questions {
		for field, msg := range q.Validate() {
			errors[fmt.Sprintf("questions[%d].%s", i, field)] = msg
		}
	}

	return errors
}

type UpdateQuizRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Frequency   *int    `json:"frequency,omitempty"`
}

func (r UpdateQuizRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.Frequency != nil && *r.Frequency < 0 {
		errors["frequency"] = "Frequency cannot be negative"
	}

	return errors
}
