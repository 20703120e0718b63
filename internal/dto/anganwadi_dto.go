package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// AnganwadiCreateRequest creates an anganwadi, optionally attaching existing
// teachers and students.
type AnganwadiCreateRequest struct {
	Name       string   `json:"name" validate:"required,min=1"`
	Location   string   `json:"location" validate:"required,min=1"`
	District   string   `json:"district" validate:"required,min=1"`
	State      string   `json:"state"`
	TeacherIDs []string `json:"teacher_ids"`
	StudentIDs []string `json:"student_ids"`
}

// AnganwadiUpdateRequest updates an anganwadi; member id lists replace the
// current assignments when provided.
type AnganwadiUpdateRequest struct {
	Name       *string  `json:"name" validate:"omitempty,min=1"`
	Location   *string  `json:"location" validate:"omitempty,min=1"`
	District   *string  `json:"district" validate:"omitempty,min=1"`
	State      *string  `json:"state"`
	TeacherIDs []string `json:"teacher_ids"`
	StudentIDs []string `json:"student_ids"`
}

// AnganwadiResponse serializes an anganwadi with its members.
type AnganwadiResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Location  string        `json:"location"`
	District  string        `json:"district"`
	State     string        `json:"state"`
	Teachers  []TeacherLite `json:"teachers"`
	Students  []StudentLite `json:"students"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewAnganwadiResponse converts an anganwadi model into a DTO.
func NewAnganwadiResponse(model models.Anganwadi) AnganwadiResponse {
	response := AnganwadiResponse{
		ID:        model.ID,
		Name:      model.Name,
		Location:  model.Location,
		District:  model.District,
		State:     model.State,
		Teachers:  []TeacherLite{},
		Students:  []StudentLite{},
		CreatedAt: model.CreatedAt,
	}

	for _, teacher := range model.Teachers {
		response.Teachers = append(response.Teachers, TeacherLite{ID: teacher.ID, Name: teacher.Name, Phone: teacher.Phone})
	}
	for _, student := range model.Students {
		response.Students = append(response.Students, StudentLite{ID: student.ID, Name: student.Name, Gender: student.Gender, Status: student.Status})
	}

	return response
}
