package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// StudentCreateRequest creates a student.
type StudentCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Gender      string  `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Status      string  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DROPPED_OUT"`
	AnganwadiID *string `json:"anganwadi_id"`
}

// StudentResponse serializes a student.
type StudentResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Gender      string         `json:"gender"`
	Status      string         `json:"status"`
	AnganwadiID *string        `json:"anganwadi_id"`
	Anganwadi   *AnganwadiLite `json:"anganwadi,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	response := StudentResponse{
		ID:          model.ID,
		Name:        model.Name,
		Gender:      model.Gender,
		Status:      model.Status,
		AnganwadiID: model.AnganwadiID,
		CreatedAt:   model.CreatedAt,
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

// NewStudentResponseSlice converts a slice of student models.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}
