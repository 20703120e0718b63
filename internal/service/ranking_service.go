package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// Weighted score coefficients. The inputs deliberately stay on their native
// scales (a 0-100 percentage, raw counts, a 0-10 average); the formula is an
// established business rule and is reproduced as-is.
const (
	weightResponseRate       = 0.35
	weightAnganwadiResponses = 0.35
	weightDirectResponses    = 0.20
	weightAverageScore       = 0.10
)

// RankingService aggregates per-teacher performance. CohortRanking computes
// the weighted score of every teacher in a cohort for one assessment.
// UpdateRanks recomputes and persists the simpler graded-count rank on each
// teacher record.
type RankingService interface {
	CohortRanking(ctx context.Context, cohortID, assessmentID string) ([]dto.TeacherRankingEntry, error)
	UpdateRanks(ctx context.Context, cohortID string) ([]dto.PersistedRankingEntry, error)
	PersistedRanking(ctx context.Context, cohortID string) ([]dto.PersistedRankingEntry, error)
}

type rankingService struct {
	teachers    repository.TeacherRepository
	responses   repository.ResponseRepository
	assessments repository.AssessmentRepository
	logger      zerolog.Logger
}

// NewRankingService constructs a RankingService instance.
func NewRankingService(
	teachers repository.TeacherRepository,
	responses repository.ResponseRepository,
	assessments repository.AssessmentRepository,
	logger zerolog.Logger,
) RankingService {
	return &rankingService{
		teachers:    teachers,
		responses:   responses,
		assessments: assessments,
		logger:      logger.With().Str("component", "ranking_service").Logger(),
	}
}

func (s *rankingService) CohortRanking(ctx context.Context, cohortID, assessmentID string) ([]dto.TeacherRankingEntry, error) {
	teachers, err := s.teachers.ListByCohort(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.TeacherRankingEntry, 0, len(teachers))
	for _, teacher := range teachers {
		entry, err := s.teacherEntry(ctx, teacher, assessmentID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeightedScore > entries[j].WeightedScore
	})

	return entries, nil
}

func (s *rankingService) teacherEntry(ctx context.Context, teacher models.Teacher, assessmentID string) (dto.TeacherRankingEntry, error) {
	entry := dto.TeacherRankingEntry{
		Teacher: dto.TeacherLite{
			ID:    teacher.ID,
			Name:  teacher.Name,
			Phone: teacher.Phone,
		},
		AnganwadiID: teacher.AnganwadiID,
	}

	direct, err := s.responses.ListByAssessmentTeacher(ctx, assessmentID, teacher.ID)
	if err != nil {
		return dto.TeacherRankingEntry{}, err
	}
	entry.DirectResponseCount = len(direct)

	var scoreSum float64
	var scored int
	for _, response := range direct {
		if current := response.CurrentScore(); current != nil {
			scoreSum += current.Score
			scored++
		}
	}
	if scored > 0 {
		entry.AverageScore = scoreSum / float64(scored)
	}

	if teacher.AnganwadiID != nil {
		count, err := s.responses.CountByAssessmentAnganwadi(ctx, assessmentID, *teacher.AnganwadiID)
		if err != nil {
			return dto.TeacherRankingEntry{}, err
		}
		entry.AnganwadiResponses = int(count)

		tracker, err := s.assessments.GetTracker(ctx, assessmentID, *teacher.AnganwadiID)
		if err == nil && tracker.TotalStudentCount > 0 {
			entry.AssessmentResponseRate = float64(tracker.CompletedStudentCount) / float64(tracker.TotalStudentCount) * 100
		}
	}

	entry.WeightedScore = weightResponseRate*entry.AssessmentResponseRate +
		weightAnganwadiResponses*float64(entry.AnganwadiResponses) +
		weightDirectResponses*float64(entry.DirectResponseCount) +
		weightAverageScore*entry.AverageScore

	return entry, nil
}

// UpdateRanks orders a cohort's teachers by graded-response count, ties
// broken by total response count, and stores the 1-based rank on each
// teacher. Teachers with no responses at all keep rank 0 and sort last.
func (s *rankingService) UpdateRanks(ctx context.Context, cohortID string) ([]dto.PersistedRankingEntry, error) {
	teachers, err := s.teachers.ListByCohort(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.PersistedRankingEntry, 0, len(teachers))
	for _, teacher := range teachers {
		graded, err := s.responses.CountGradedByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}
		total, err := s.responses.CountByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, dto.PersistedRankingEntry{
			Teacher: dto.TeacherLite{
				ID:    teacher.ID,
				Name:  teacher.Name,
				Phone: teacher.Phone,
			},
			GradedResponseCount: int(graded),
			ResponseCount:       int(total),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		if (left.ResponseCount == 0) != (right.ResponseCount == 0) {
			return right.ResponseCount == 0
		}
		if left.GradedResponseCount != right.GradedResponseCount {
			return left.GradedResponseCount > right.GradedResponseCount
		}
		return left.ResponseCount > right.ResponseCount
	})

	rank := 0
	for i := range entries {
		if entries[i].ResponseCount == 0 {
			entries[i].Rank = 0
		} else {
			rank++
			entries[i].Rank = rank
		}
	}

	for i := range entries {
		teacher, err := s.teachers.GetByID(ctx, entries[i].Teacher.ID)
		if err != nil {
			return nil, err
		}
		teacher.Rank = entries[i].Rank
		if err := s.teachers.Update(ctx, &teacher); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("cohort_id", cohortID).
		Int("teacher_count", len(entries)).
		Msg("teacher ranks updated")

	return entries, nil
}

// PersistedRanking reads back the stored ranks without recomputing them.
func (s *rankingService) PersistedRanking(ctx context.Context, cohortID string) ([]dto.PersistedRankingEntry, error) {
	teachers, err := s.teachers.ListByCohort(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.PersistedRankingEntry, 0, len(teachers))
	for _, teacher := range teachers {
		graded, err := s.responses.CountGradedByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}
		total, err := s.responses.CountByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, dto.PersistedRankingEntry{
			Teacher: dto.TeacherLite{
				ID:    teacher.ID,
				Name:  teacher.Name,
				Phone: teacher.Phone,
			},
			Rank:                teacher.Rank,
			GradedResponseCount: int(graded),
			ResponseCount:       int(total),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		if (left.Rank == 0) != (right.Rank == 0) {
			return right.Rank == 0
		}
		return left.Rank < right.Rank
	})

	return entries, nil
}
