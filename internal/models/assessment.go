package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentSession is a time-boxed evaluation campaign covering a set of
// topics, scoped to a set of anganwadis. Status only moves forward:
// DRAFT -> PUBLISHED -> COMPLETED.
type AssessmentSession struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Status      string         `gorm:"size:32;not null;default:DRAFT" json:"status"`
	TopicIDs    datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	AnganwadiAssessments []AnganwadiAssessment `gorm:"foreignKey:AssessmentSessionID" json:"anganwadi_assessments,omitempty"`
}

const (
	// AssessmentStatusDraft is the initial state of a session.
	AssessmentStatusDraft = "DRAFT"
	// AssessmentStatusPublished means the session accepts submissions.
	AssessmentStatusPublished = "PUBLISHED"
	// AssessmentStatusCompleted is the terminal state.
	AssessmentStatusCompleted = "COMPLETED"
)

// BeforeCreate assigns a UUID primary key.
func (s *AssessmentSession) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// TopicIDList decodes the stored topic references.
func (s AssessmentSession) TopicIDList() []string {
	var ids []string
	if len(s.TopicIDs) == 0 {
		return ids
	}
	_ = json.Unmarshal(s.TopicIDs, &ids)
	return ids
}

// SetTopicIDs encodes the topic references for storage.
func (s *AssessmentSession) SetTopicIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	s.TopicIDs = datatypes.JSON(data)
	return nil
}

// AnganwadiAssessment tracks one anganwadi's progress within an assessment
// session. TotalStudentCount is a snapshot of active students at creation
// time; CompletedStudentCount is recomputed from completed submissions.
type AnganwadiAssessment struct {
	ID                    string    `gorm:"primaryKey;size:36" json:"id"`
	AssessmentSessionID   string    `gorm:"size:36;not null;uniqueIndex:idx_session_anganwadi" json:"assessment_session_id"`
	AnganwadiID           string    `gorm:"size:36;not null;uniqueIndex:idx_session_anganwadi" json:"anganwadi_id"`
	TotalStudentCount     int       `gorm:"not null" json:"total_student_count"`
	CompletedStudentCount int       `gorm:"not null;default:0" json:"completed_student_count"`
	IsComplete            bool      `gorm:"not null;default:false" json:"is_complete"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	AssessmentSession *AssessmentSession `gorm:"foreignKey:AssessmentSessionID" json:"assessment_session,omitempty"`
	Anganwadi         *Anganwadi         `gorm:"foreignKey:AnganwadiID" json:"anganwadi,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (a *AnganwadiAssessment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// StudentSubmission records one student completing an assessment session.
// The (session, student) pair carries a unique index so concurrent duplicate
// submissions are rejected by the database, not just the pre-insert check.
type StudentSubmission struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	AssessmentSessionID string    `gorm:"size:36;not null;uniqueIndex:idx_session_student" json:"assessment_session_id"`
	StudentID           string    `gorm:"size:36;not null;uniqueIndex:idx_session_student" json:"student_id"`
	AnganwadiID         string    `gorm:"size:36;not null;index" json:"anganwadi_id"`
	TeacherID           string    `gorm:"size:36;not null;index" json:"teacher_id"`
	SubmissionStatus    string    `gorm:"size:32;not null;default:COMPLETED" json:"submission_status"`
	SubmittedAt         time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Student   *Student          `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Teacher   *Teacher          `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Responses []StudentResponse `gorm:"foreignKey:SubmissionID" json:"responses,omitempty"`
}

// SubmissionStatusCompleted is the only status recorded submissions carry.
const SubmissionStatusCompleted = "COMPLETED"

// BeforeCreate assigns a UUID primary key.
func (s *StudentSubmission) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// StudentResponse is one answer (audio plus timing) to one question within a
// submission, or within a legacy evaluation.
type StudentResponse struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SubmissionID *string   `gorm:"size:36;index" json:"submission_id"`
	EvaluationID *string   `gorm:"size:36;index" json:"evaluation_id"`
	QuestionID   string    `gorm:"size:36;not null;index" json:"question_id"`
	StudentID    string    `gorm:"size:36;not null;index" json:"student_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	AudioURL     string    `gorm:"size:512" json:"audio_url"`
	MetadataURL  string    `gorm:"size:512" json:"metadata_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Question   *Question              `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Student    *Student               `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Evaluation *Evaluation            `gorm:"foreignKey:EvaluationID" json:"evaluation,omitempty"`
	Scores     []StudentResponseScore `gorm:"foreignKey:ResponseID" json:"scores,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (r *StudentResponse) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// CurrentScore returns the most recently graded score, if any. Score records
// are append-only; recency decides which one is authoritative.
func (r StudentResponse) CurrentScore() *StudentResponseScore {
	var current *StudentResponseScore
	for i := range r.Scores {
		if current == nil || r.Scores[i].GradedAt.After(current.GradedAt) {
			current = &r.Scores[i]
		}
	}
	return current
}

// StudentResponseScore is an append-only score record for a response.
type StudentResponseScore struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ResponseID string    `gorm:"size:36;not null;index" json:"response_id"`
	Score      float64   `gorm:"not null" json:"score"`
	GradedAt   time.Time `gorm:"not null;index" json:"graded_at"`
	GradedBy   *string   `gorm:"size:36" json:"graded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key.
func (s *StudentResponseScore) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
