package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topic is a subject area that questions are grouped under.
type Topic struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `gorm:"foreignKey:TopicID" json:"questions,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (t *Topic) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Question is a single prompt presented to a student, with optional
// multiple-choice options used by the automatic scorer.
type Question struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	TopicID        string         `gorm:"size:36;index;not null" json:"topic_id"`
	Text           string         `gorm:"type:text" json:"text"`
	ImageURL       string         `gorm:"size:512" json:"image_url"`
	AudioURL       string         `gorm:"size:512" json:"audio_url"`
	AnswerOptions  datatypes.JSON `gorm:"type:json" json:"-"`
	CorrectAnswers datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Topic *Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (q *Question) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// Options decodes the stored answer options.
func (q Question) Options() []string {
	var options []string
	if len(q.AnswerOptions) == 0 {
		return options
	}
	_ = json.Unmarshal(q.AnswerOptions, &options)
	return options
}

// SetOptions encodes the answer options for storage.
func (q *Question) SetOptions(options []string) error {
	if options == nil {
		options = []string{}
	}
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.AnswerOptions = datatypes.JSON(data)
	return nil
}

// CorrectIndexes decodes the stored correct answer indexes.
func (q Question) CorrectIndexes() []int {
	var indexes []int
	if len(q.CorrectAnswers) == 0 {
		return indexes
	}
	_ = json.Unmarshal(q.CorrectAnswers, &indexes)
	return indexes
}

// SetCorrectIndexes encodes the correct answer indexes for storage.
func (q *Question) SetCorrectIndexes(indexes []int) error {
	if indexes == nil {
		indexes = []int{}
	}
	data, err := json.Marshal(indexes)
	if err != nil {
		return err
	}
	q.CorrectAnswers = datatypes.JSON(data)
	return nil
}
