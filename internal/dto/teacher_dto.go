package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// TeacherCreateRequest creates a teacher; cohort and anganwadi are optional.
type TeacherCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Phone       string  `json:"phone" validate:"required,min=10"`
	CohortID    *string `json:"cohort_id"`
	AnganwadiID *string `json:"anganwadi_id"`
}

// TeacherAssignCohortRequest moves a teacher into a cohort.
type TeacherAssignCohortRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	CohortID  string `json:"cohort_id" validate:"required"`
}

// TeacherAssignAnganwadiRequest assigns a teacher to an anganwadi.
type TeacherAssignAnganwadiRequest struct {
	TeacherID   string `json:"teacher_id" validate:"required"`
	AnganwadiID string `json:"anganwadi_id" validate:"required"`
}

// TeacherResponse serializes a teacher with assignment context.
type TeacherResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	CohortID    *string        `json:"cohort_id"`
	AnganwadiID *string        `json:"anganwadi_id"`
	IsVerified  bool           `json:"is_verified"`
	Rank        int            `json:"rank"`
	Cohort      *CohortLite    `json:"cohort,omitempty"`
	Anganwadi   *AnganwadiLite `json:"anganwadi,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CohortLite summarizes a cohort in nested responses.
type CohortLite struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// NewTeacherResponse converts a teacher model into a DTO.
func NewTeacherResponse(model models.Teacher) TeacherResponse {
	response := TeacherResponse{
		ID:          model.ID,
		Name:        model.Name,
		Phone:       model.Phone,
		CohortID:    model.CohortID,
		AnganwadiID: model.AnganwadiID,
		IsVerified:  model.IsVerified,
		Rank:        model.Rank,
		CreatedAt:   model.CreatedAt,
	}

	if model.Cohort != nil {
		response.Cohort = &CohortLite{ID: model.Cohort.ID, Name: model.Cohort.Name, Region: model.Cohort.Region}
	}
	if model.Anganwadi != nil {
		response.Anganwadi = &AnganwadiLite{
			ID:       model.Anganwadi.ID,
			Name:     model.Anganwadi.Name,
			Location: model.Anganwadi.Location,
			District: model.Anganwadi.District,
			State:    model.Anganwadi.State,
		}
	}

	return response
}
