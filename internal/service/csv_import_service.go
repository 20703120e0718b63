package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ErrCsvImportNotFound indicates the import record does not exist.
var ErrCsvImportNotFound = errors.New("import record not found")

// ErrCsvMissingNameColumn indicates the header row lacks the required name
// column.
var ErrCsvMissingNameColumn = errors.New("csv header must include a name column")

// CsvImportService bulk-creates students from an uploaded CSV. Rows fail
// individually; the import completes as long as the file itself is readable,
// with per-row errors accumulated in the record's error log.
type CsvImportService interface {
	ImportStudents(ctx context.Context, filename, importedBy string, reader io.Reader) (dto.CsvImportResponse, error)
	GetByID(ctx context.Context, id string) (dto.CsvImportResponse, error)
	List(ctx context.Context, page, limit int) (dto.CsvImportListResponse, error)
}

type csvImportService struct {
	imports    repository.CsvImportRepository
	students   repository.StudentRepository
	anganwadis repository.AnganwadiRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCsvImportService constructs a CsvImportService instance.
func NewCsvImportService(
	imports repository.CsvImportRepository,
	students repository.StudentRepository,
	anganwadis repository.AnganwadiRepository,
	logger zerolog.Logger,
) CsvImportService {
	return &csvImportService{
		imports:    imports,
		students:   students,
		anganwadis: anganwadis,
		logger:     logger.With().Str("component", "csv_import_service").Logger(),
		now:        time.Now,
	}
}

// ImportStudents consumes the whole file within the request. Expected columns
// are name, gender, optional status, optional anganwadi name; the anganwadi
// is resolved case-insensitively and created when missing.
func (s *csvImportService) ImportStudents(ctx context.Context, filename, importedBy string, reader io.Reader) (dto.CsvImportResponse, error) {
	record := models.CsvImport{
		Filename:   filename,
		ImportedBy: importedBy,
		Status:     models.CsvImportStatusProcessing,
		ImportedAt: s.now(),
	}
	if err := s.imports.Create(ctx, &record); err != nil {
		return dto.CsvImportResponse{}, err
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return s.finishFailed(ctx, record, fmt.Sprintf("failed to read header: %v", err))
	}

	columns := headerIndex(header)
	nameCol, ok := columns["name"]
	if !ok {
		record.Status = models.CsvImportStatusFailed
		record.ErrorLog = ErrCsvMissingNameColumn.Error()
		if err := s.imports.Update(ctx, &record); err != nil {
			return dto.CsvImportResponse{}, err
		}
		return dto.NewCsvImportResponse(record), ErrCsvMissingNameColumn
	}

	var errorLog strings.Builder
	rowNumber := 1
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNumber++
		if err != nil {
			record.TotalRows++
			record.FailedRows++
			fmt.Fprintf(&errorLog, "row %d: %v\n", rowNumber, err)
			continue
		}

		record.TotalRows++
		if err := s.importRow(ctx, row, columns, nameCol); err != nil {
			record.FailedRows++
			fmt.Fprintf(&errorLog, "row %d: %v\n", rowNumber, err)
			continue
		}
		record.SuccessRows++
	}

	record.Status = models.CsvImportStatusCompleted
	record.ErrorLog = errorLog.String()
	if err := s.imports.Update(ctx, &record); err != nil {
		return dto.CsvImportResponse{}, err
	}

	s.logger.Info().
		Str("import_id", record.ID).
		Int("total", record.TotalRows).
		Int("success", record.SuccessRows).
		Int("failed", record.FailedRows).
		Msg("student import finished")

	return dto.NewCsvImportResponse(record), nil
}

func (s *csvImportService) importRow(ctx context.Context, row []string, columns map[string]int, nameCol int) error {
	name := cell(row, nameCol)
	if name == "" {
		return errors.New("missing student name")
	}

	gender := strings.ToUpper(cell(row, colOr(columns, "gender", -1)))
	switch gender {
	case "MALE", "FEMALE", "OTHER":
	case "":
		return errors.New("missing student gender")
	default:
		return fmt.Errorf("invalid gender %q", gender)
	}

	status := strings.ToUpper(cell(row, colOr(columns, "status", -1)))
	switch status {
	case models.StudentStatusActive, models.StudentStatusInactive, models.StudentStatusDroppedOut:
	case "":
		status = models.StudentStatusActive
	default:
		return fmt.Errorf("invalid status %q", status)
	}

	student := models.Student{
		Name:   name,
		Gender: gender,
		Status: status,
	}

	if anganwadiName := cell(row, colOr(columns, "anganwadi", -1)); anganwadiName != "" {
		anganwadiID, err := s.resolveAnganwadi(ctx, anganwadiName)
		if err != nil {
			return err
		}
		student.AnganwadiID = &anganwadiID
	}

	return s.students.Create(ctx, &student)
}

// resolveAnganwadi finds the named anganwadi case-insensitively, creating it
// when it does not exist yet.
func (s *csvImportService) resolveAnganwadi(ctx context.Context, name string) (string, error) {
	anganwadi, err := s.anganwadis.GetByName(ctx, name)
	if err == nil {
		return anganwadi.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	created := models.Anganwadi{Name: name}
	if err := s.anganwadis.Create(ctx, &created, nil, nil); err != nil {
		return "", fmt.Errorf("failed to create anganwadi %q: %w", name, err)
	}

	return created.ID, nil
}

func (s *csvImportService) finishFailed(ctx context.Context, record models.CsvImport, message string) (dto.CsvImportResponse, error) {
	record.Status = models.CsvImportStatusFailed
	record.ErrorLog = message
	if err := s.imports.Update(ctx, &record); err != nil {
		return dto.CsvImportResponse{}, err
	}
	return dto.NewCsvImportResponse(record), errors.New(message)
}

func (s *csvImportService) GetByID(ctx context.Context, id string) (dto.CsvImportResponse, error) {
	record, err := s.imports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CsvImportResponse{}, ErrCsvImportNotFound
		}
		return dto.CsvImportResponse{}, err
	}

	return dto.NewCsvImportResponse(record), nil
}

func (s *csvImportService) List(ctx context.Context, page, limit int) (dto.CsvImportListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, total, err := s.imports.List(ctx, page, limit)
	if err != nil {
		return dto.CsvImportListResponse{}, err
	}

	response := dto.CsvImportListResponse{
		Data: make([]dto.CsvImportResponse, 0, len(records)),
		Pagination: dto.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalCount: total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}
	for _, record := range records {
		response.Data = append(response.Data, dto.NewCsvImportResponse(record))
	}

	return response, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		// "anganwadi_name" and "anganwadi" are both accepted.
		key = strings.TrimSuffix(key, "_name")
		columns[key] = i
	}
	return columns
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func colOr(columns map[string]int, name string, fallback int) int {
	if index, ok := columns[name]; ok {
		return index
	}
	return fallback
}
