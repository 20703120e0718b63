package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// CohortCreateRequest creates a cohort, optionally attaching existing teachers.
type CohortCreateRequest struct {
	Name       string   `json:"name" validate:"required,min=1"`
	Region     string   `json:"region" validate:"required,min=1"`
	TeacherIDs []string `json:"teacher_ids"`
}

// CohortResponse serializes a cohort with its teachers.
type CohortResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Region    string            `json:"region"`
	Teachers  []TeacherResponse `json:"teachers"`
	CreatedAt time.Time         `json:"created_at"`
}

// TeacherRankingEntry is one row of the weighted cohort ranking for an
// assessment. The weighted score mixes a percentage, raw counts, and a 0-10
// average with fixed coefficients; the scales are intentionally reproduced
// as-is from the established business rule.
type TeacherRankingEntry struct {
	Teacher                TeacherLite `json:"teacher"`
	AnganwadiID            *string     `json:"anganwadi_id"`
	DirectResponseCount    int         `json:"direct_response_count"`
	AverageScore           float64     `json:"average_score"`
	AnganwadiResponses     int         `json:"anganwadi_responses"`
	AssessmentResponseRate float64     `json:"assessment_response_rate"`
	WeightedScore          float64     `json:"weighted_score"`
}

// PersistedRankingEntry is one row of the stored per-cohort teacher ranking.
type PersistedRankingEntry struct {
	Teacher             TeacherLite `json:"teacher"`
	Rank                int         `json:"rank"`
	GradedResponseCount int         `json:"graded_response_count"`
	ResponseCount       int         `json:"response_count"`
}

// NewCohortResponse converts a cohort model into a DTO.
func NewCohortResponse(model models.Cohort) CohortResponse {
	response := CohortResponse{
		ID:        model.ID,
		Name:      model.Name,
		Region:    model.Region,
		Teachers:  []TeacherResponse{},
		CreatedAt: model.CreatedAt,
	}

	for _, teacher := range model.Teachers {
		response.Teachers = append(response.Teachers, NewTeacherResponse(teacher))
	}

	return response
}
