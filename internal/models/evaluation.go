package models

import (
	"time"

	"gorm.io/gorm"
)

// Evaluation is the legacy teacher-administered assessment record, parallel
// to StudentSubmission. Responses may hang off an evaluation instead of a
// submission.
type Evaluation struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	TeacherID           string     `gorm:"size:36;not null;index" json:"teacher_id"`
	StudentID           string     `gorm:"size:36;not null;index" json:"student_id"`
	TopicID             string     `gorm:"size:36;not null;index" json:"topic_id"`
	AssessmentSessionID *string    `gorm:"size:36;index" json:"assessment_session_id"`
	WeekNumber          int        `gorm:"not null;default:1" json:"week_number"`
	AudioURL            string     `gorm:"size:512" json:"audio_url"`
	MetadataURL         string     `gorm:"size:512" json:"metadata_url"`
	Status              string     `gorm:"size:32;not null;default:DRAFT" json:"status"`
	GradingComplete     bool       `gorm:"not null;default:false" json:"grading_complete"`
	SubmittedAt         *time.Time `json:"submitted_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Teacher   *Teacher          `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Student   *Student          `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Topic     *Topic            `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Responses []StudentResponse `gorm:"foreignKey:EvaluationID" json:"responses,omitempty"`
}

const (
	// EvaluationStatusDraft is the initial state.
	EvaluationStatusDraft = "DRAFT"
	// EvaluationStatusSubmitted means the teacher finished recording.
	EvaluationStatusSubmitted = "SUBMITTED"
	// EvaluationStatusGraded means every response has been scored.
	EvaluationStatusGraded = "GRADED"
)

// BeforeCreate assigns a UUID primary key.
func (e *Evaluation) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
