package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

func gradedResponse(score float64) models.StudentResponse {
	return models.StudentResponse{
		ID: uuid.NewString(),
		Scores: []models.StudentResponseScore{
			{ID: uuid.NewString(), Score: score, GradedAt: time.Now()},
		},
	}
}

func TestCohortRankingWeightedScore(t *testing.T) {
	teachers := newMemoryTeacherRepo()
	responses := newMemoryResponseRepo()
	assessments := newMemoryAssessmentRepo()
	svc := NewRankingService(teachers, responses, assessments, testLogger())

	cohortID := uuid.NewString()
	anganwadiID := uuid.NewString()
	assessmentID := uuid.NewString()

	teacher := teachers.add(models.Teacher{Name: "Asha", Phone: "9000000001", CohortID: &cohortID, AnganwadiID: &anganwadiID})
	idle := teachers.add(models.Teacher{Name: "Bina", Phone: "9000000002", CohortID: &cohortID})

	responses.byAssessmentTeacher[assessmentID+"|"+teacher.ID] = []models.StudentResponse{
		gradedResponse(8),
		gradedResponse(6),
		{ID: uuid.NewString()}, // ungraded, excluded from the average
	}
	responses.countByAssessmentAnganwadi[assessmentID+"|"+anganwadiID] = 10
	assessments.trackers[trackerKey(assessmentID, anganwadiID)] = models.AnganwadiAssessment{
		AssessmentSessionID:   assessmentID,
		AnganwadiID:           anganwadiID,
		TotalStudentCount:     20,
		CompletedStudentCount: 15,
	}

	entries, err := svc.CohortRanking(context.Background(), cohortID, assessmentID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	top := entries[0]
	require.Equal(t, teacher.ID, top.Teacher.ID)
	require.Equal(t, 3, top.DirectResponseCount)
	require.Equal(t, 7.0, top.AverageScore)
	require.Equal(t, 10, top.AnganwadiResponses)
	require.InDelta(t, 75.0, top.AssessmentResponseRate, 1e-9)
	// 0.35*75 + 0.35*10 + 0.20*3 + 0.10*7
	require.InDelta(t, 31.05, top.WeightedScore, 1e-9)

	require.Equal(t, idle.ID, entries[1].Teacher.ID)
	require.Equal(t, 0.0, entries[1].WeightedScore)
}

func TestUpdateRanksOrdersAndPersists(t *testing.T) {
	teachers := newMemoryTeacherRepo()
	responses := newMemoryResponseRepo()
	assessments := newMemoryAssessmentRepo()
	svc := NewRankingService(teachers, responses, assessments, testLogger())

	cohortID := uuid.NewString()
	busy := teachers.add(models.Teacher{Name: "Busy", Phone: "9000000001", CohortID: &cohortID})
	steady := teachers.add(models.Teacher{Name: "Steady", Phone: "9000000002", CohortID: &cohortID})
	tied := teachers.add(models.Teacher{Name: "Tied", Phone: "9000000003", CohortID: &cohortID})
	idle := teachers.add(models.Teacher{Name: "Idle", Phone: "9000000004", CohortID: &cohortID})

	responses.countGradedByTeacher[busy.ID] = 12
	responses.countByTeacher[busy.ID] = 15
	responses.countGradedByTeacher[steady.ID] = 5
	responses.countByTeacher[steady.ID] = 20
	responses.countGradedByTeacher[tied.ID] = 5
	responses.countByTeacher[tied.ID] = 8

	entries, err := svc.UpdateRanks(context.Background(), cohortID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	require.Equal(t, busy.ID, entries[0].Teacher.ID)
	require.Equal(t, 1, entries[0].Rank)
	// Equal graded counts fall back to total response count.
	require.Equal(t, steady.ID, entries[1].Teacher.ID)
	require.Equal(t, 2, entries[1].Rank)
	require.Equal(t, tied.ID, entries[2].Teacher.ID)
	require.Equal(t, 3, entries[2].Rank)
	// No responses at all means unranked, sorted last.
	require.Equal(t, idle.ID, entries[3].Teacher.ID)
	require.Equal(t, 0, entries[3].Rank)

	stored, err := teachers.GetByID(context.Background(), busy.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Rank)

	storedIdle, err := teachers.GetByID(context.Background(), idle.ID)
	require.NoError(t, err)
	require.Equal(t, 0, storedIdle.Rank)
}

func TestPersistedRankingReadsStoredRanks(t *testing.T) {
	teachers := newMemoryTeacherRepo()
	responses := newMemoryResponseRepo()
	assessments := newMemoryAssessmentRepo()
	svc := NewRankingService(teachers, responses, assessments, testLogger())

	cohortID := uuid.NewString()
	second := teachers.add(models.Teacher{Name: "Second", Phone: "9000000001", CohortID: &cohortID, Rank: 2})
	first := teachers.add(models.Teacher{Name: "First", Phone: "9000000002", CohortID: &cohortID, Rank: 1})
	unranked := teachers.add(models.Teacher{Name: "Unranked", Phone: "9000000003", CohortID: &cohortID})

	entries, err := svc.PersistedRanking(context.Background(), cohortID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, first.ID, entries[0].Teacher.ID)
	require.Equal(t, second.ID, entries[1].Teacher.ID)
	require.Equal(t, unranked.ID, entries[2].Teacher.ID)
}
