package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

func newTeacherFixture() (TeacherService, *memoryTeacherRepo, *memoryAnganwadiRepo, *memoryCohortRepo) {
	teachers := newMemoryTeacherRepo()
	anganwadis := newMemoryAnganwadiRepo()
	cohorts := newMemoryCohortRepo(teachers)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewTeacherService(teachers, anganwadis, cohorts, validate, testLogger())
	return svc, teachers, anganwadis, cohorts
}

func TestTeacherListByAnganwadiAcceptsIDOrName(t *testing.T) {
	svc, teachers, anganwadis, _ := newTeacherFixture()
	anganwadi := anganwadis.add(models.Anganwadi{Name: "Hosakote Center", District: "Bengaluru Rural"})
	other := anganwadis.add(models.Anganwadi{Name: "Mysuru Center"})

	assigned := teachers.add(models.Teacher{Name: "Asha", Phone: "9000000401", AnganwadiID: &anganwadi.ID})
	teachers.add(models.Teacher{Name: "Banu", Phone: "9000000402", AnganwadiID: &other.ID})

	byID, err := svc.ListByAnganwadi(context.Background(), anganwadi.ID)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	require.Equal(t, assigned.ID, byID[0].ID)

	byName, err := svc.ListByAnganwadi(context.Background(), "hosakote center")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, assigned.ID, byName[0].ID)

	_, err = svc.ListByAnganwadi(context.Background(), "Unknown Center")
	require.ErrorIs(t, err, ErrAnganwadiNotFound)
}
