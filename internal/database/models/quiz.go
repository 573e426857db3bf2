package models

import "github.com/google/uuid"

type Quiz struct {
	Base
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	Frequency   int       `gorm:"default:0" json:"frequency"` // days between runs, 0 = unscheduled
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	Company   *Company   `gorm:"foreignKey:CompanyID" json:"-"`
	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	Base
	QuizID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text        string     `gorm:"not null" json:"text"`
	Answers     StringList `gorm:"type:text" json:"answers"`
	RightAnswer string     `gorm:"not null" json:"right_answer"`

	Quiz *Quiz `gorm:"foreignKey:QuizID" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}
