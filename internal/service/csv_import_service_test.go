package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

type memoryCsvImportRepo struct {
	records map[string]models.CsvImport
}

func newMemoryCsvImportRepo() *memoryCsvImportRepo {
	return &memoryCsvImportRepo{records: make(map[string]models.CsvImport)}
}

func (m *memoryCsvImportRepo) Create(ctx context.Context, record *models.CsvImport) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	m.records[record.ID] = *record
	return nil
}

func (m *memoryCsvImportRepo) Update(ctx context.Context, record *models.CsvImport) error {
	if _, ok := m.records[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.records[record.ID] = *record
	return nil
}

func (m *memoryCsvImportRepo) GetByID(ctx context.Context, id string) (models.CsvImport, error) {
	record, ok := m.records[id]
	if !ok {
		return models.CsvImport{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (m *memoryCsvImportRepo) List(ctx context.Context, page, limit int) ([]models.CsvImport, int64, error) {
	records := make([]models.CsvImport, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ImportedAt.After(records[j].ImportedAt)
	})

	total := int64(len(records))
	start := (page - 1) * limit
	if start >= len(records) {
		return []models.CsvImport{}, total, nil
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total, nil
}

func newCsvImportFixture() (CsvImportService, *memoryCsvImportRepo, *memoryStudentRepo, *memoryAnganwadiRepo) {
	imports := newMemoryCsvImportRepo()
	students := newMemoryStudentRepo()
	anganwadis := newMemoryAnganwadiRepo()
	svc := NewCsvImportService(imports, students, anganwadis, testLogger())
	return svc, imports, students, anganwadis
}

func TestImportStudentsAccountsPerRow(t *testing.T) {
	svc, _, students, anganwadis := newCsvImportFixture()
	anganwadis.add(models.Anganwadi{Name: "Hosur Center"})

	file := strings.Join([]string{
		"name,gender,status,anganwadi_name",
		"Meera,female,active,hosur center",
		"Ravi,male,,Mysuru Center",
		",female,active,Hosur Center",
		"Kavya,robot,active,Hosur Center",
	}, "\n")

	result, err := svc.ImportStudents(context.Background(), "students.csv", uuid.NewString(), strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, models.CsvImportStatusCompleted, result.Status)
	require.Equal(t, 4, result.TotalRows)
	require.Equal(t, 2, result.SuccessRows)
	require.Equal(t, 2, result.FailedRows)
	require.Contains(t, result.ErrorLog, "row 4: missing student name")
	require.Contains(t, result.ErrorLog, "row 5: invalid gender")

	stored, err := students.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// The unknown anganwadi name is created on the fly; the known one is
	// matched case-insensitively instead of duplicated.
	all, err := anganwadis.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestImportStudentsDefaults(t *testing.T) {
	svc, _, students, _ := newCsvImportFixture()

	file := "name,gender\nAnanya,other\n"
	result, err := svc.ImportStudents(context.Background(), "minimal.csv", uuid.NewString(), strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessRows)

	stored, err := students.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "OTHER", stored[0].Gender)
	require.Equal(t, models.StudentStatusActive, stored[0].Status)
	require.Nil(t, stored[0].AnganwadiID)
}

func TestImportStudentsRequiresGender(t *testing.T) {
	svc, _, students, _ := newCsvImportFixture()

	file := "name,gender\nRavi,\n"
	result, err := svc.ImportStudents(context.Background(), "no-gender.csv", uuid.NewString(), strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalRows)
	require.Equal(t, 0, result.SuccessRows)
	require.Equal(t, 1, result.FailedRows)
	require.Contains(t, result.ErrorLog, "row 2: missing student gender")

	stored, err := students.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestImportStudentsMissingNameColumn(t *testing.T) {
	svc, imports, _, _ := newCsvImportFixture()

	file := "gender,status\nfemale,active\n"
	result, err := svc.ImportStudents(context.Background(), "broken.csv", uuid.NewString(), strings.NewReader(file))
	require.ErrorIs(t, err, ErrCsvMissingNameColumn)
	require.Equal(t, models.CsvImportStatusFailed, result.Status)

	stored, err := imports.GetByID(context.Background(), result.ID)
	require.NoError(t, err)
	require.Equal(t, models.CsvImportStatusFailed, stored.Status)
}

func TestImportListPagination(t *testing.T) {
	svc, imports, _, _ := newCsvImportFixture()
	for i := 0; i < 3; i++ {
		require.NoError(t, imports.Create(context.Background(), &models.CsvImport{
			Filename:   "batch.csv",
			ImportedBy: uuid.NewString(),
			Status:     models.CsvImportStatusCompleted,
		}))
	}

	page, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, int64(3), page.Pagination.TotalCount)
	require.Equal(t, 2, page.Pagination.TotalPages)
}
