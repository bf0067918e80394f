// Package controller implements the core business logic (service layer)
// for the vacation ledger: validated CRUD over employee records and the
// reconciliation of the derived days_available column.
package controller

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gartstein/vacation/internal/pkg/utils"
	"github.com/gartstein/vacation/internal/vacation/accrual"
	"github.com/gartstein/vacation/internal/vacation/attachments"
	"github.com/gartstein/vacation/internal/vacation/db"
	dbmodels "github.com/gartstein/vacation/internal/vacation/db/models"
	e "github.com/gartstein/vacation/internal/vacation/errors"
	"github.com/gartstein/vacation/internal/vacation/models"
	"go.uber.org/zap"
)

// Clock provides the "now" entitlement is computed against.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Repository defines the storage interface for employee records. Every
// operation runs inside WithTransaction so a change and its derived
// days_available commit together.
type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Migrate(ctx context.Context) (*db.MigrationReport, error)
}

// EmployeeService provides validated operations over employee records.
type EmployeeService struct {
	repo   Repository
	clock  Clock
	logger *zap.Logger
}

// NewEmployeeService constructs an EmployeeService with a repository,
// a clock and a logger. A nil clock reads wall-clock time.
func NewEmployeeService(repo Repository, clock Clock, logger *zap.Logger) *EmployeeService {
	if clock == nil {
		clock = realClock{}
	}
	return &EmployeeService{
		repo:   repo,
		clock:  clock,
		logger: logger.Named("employee_service"),
	}
}

// CreateInput carries the raw text of a new employee as entered.
type CreateInput struct {
	Name           string
	EmployeeNumber string
	Status         models.Status
	Anniversary    string
}

// Create validates the input, assigns the next id and inserts the record
// with days_taken 0 and the full entitlement available.
func (s *EmployeeService) Create(ctx context.Context, in CreateInput) (*models.Employee, error) {
	name := strings.TrimSpace(in.Name)
	anniversaryText := strings.TrimSpace(in.Anniversary)
	if name == "" || anniversaryText == "" {
		return nil, fmt.Errorf("%w: name and anniversary date cannot be empty", e.ErrValidation)
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", e.ErrValidation, in.Status)
	}

	now := s.clock.Now()
	anniversary, err := accrual.ParseAnniversary(anniversaryText, now.Location())
	if err != nil {
		return nil, err
	}

	var number *int
	if in.Status == models.Company {
		n, err := parseEmployeeNumber(in.EmployeeNumber)
		if err != nil {
			return nil, err
		}
		number = &n
	}

	var created models.Employee
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if number != nil {
			if err := checkNumberFree(ctx, tx, *number, 0); err != nil {
				return err
			}
		}
		id, err := tx.NextID(ctx)
		if err != nil {
			return err
		}
		entitlement := accrual.Entitlement(anniversary, now)
		row := &dbmodels.Employee{
			ID:             id,
			EmployeeNumber: numberColumn(number),
			Name:           name,
			Status:         string(in.Status),
			Anniversary:    accrual.FormatAnniversary(anniversary),
			DaysTaken:      0,
			DaysAvailable:  int64(entitlement),
		}
		if err := tx.CreateEmployee(ctx, row); err != nil {
			return err
		}
		created = toModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee created",
		zap.Int64("employee_id", created.ID),
		zap.String("status", string(created.Status)),
		zap.Int("days_available", created.DaysAvailable),
	)
	return &created, nil
}

// Get returns one record, reconciling days_available first.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	var out models.Employee
	now := s.clock.Now()
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		row, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		out, _, err = syncRow(ctx, tx, row, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every record, reconciled, in the requested order.
func (s *EmployeeService) List(ctx context.Context, order models.ListOrder) ([]models.Employee, error) {
	employees, _, err := loadAll(ctx, s.repo, s.clock.Now(), order)
	return employees, err
}

// UpdateField re-validates and stores a single edited field. Anniversary and
// days_taken changes recompute days_available in the same transaction.
func (s *EmployeeService) UpdateField(ctx context.Context, id int64, field models.Field, value string) (*models.Employee, error) {
	value = strings.TrimSpace(value)
	return s.update(ctx, id, field, func(tx *db.Repository, row *dbmodels.Employee, now time.Time) error {
		switch field {
		case models.FieldName:
			if value == "" {
				return fmt.Errorf("%w: name cannot be empty", e.ErrValidation)
			}
			row.Name = value
		case models.FieldEmployeeNumber:
			return setEmployeeNumber(ctx, tx, row, value)
		case models.FieldStatus:
			return setStatus(ctx, tx, row, models.Status(value))
		case models.FieldAnniversary:
			if value == "" {
				return fmt.Errorf("%w: anniversary date cannot be empty", e.ErrValidation)
			}
			anniversary, err := accrual.ParseAnniversary(value, now.Location())
			if err != nil {
				return err
			}
			row.Anniversary = accrual.FormatAnniversary(anniversary)
		case models.FieldDaysTaken:
			taken, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: days taken must be a whole number", e.ErrValidation)
			}
			return setDaysTaken(row, taken, now)
		case models.FieldDocument:
			if value == "" {
				return fmt.Errorf("%w: document name cannot be empty", e.ErrValidation)
			}
			return renameCurrent(row, value)
		default:
			return fmt.Errorf("%w: unknown field %q", e.ErrValidation, field)
		}
		return nil
	})
}

// AdjustDays moves days_taken by delta, clamped to [0, entitlement].
func (s *EmployeeService) AdjustDays(ctx context.Context, id int64, delta int) (*models.Employee, error) {
	return s.update(ctx, id, models.FieldDaysTaken, func(_ *db.Repository, row *dbmodels.Employee, now time.Time) error {
		entitlement, err := entitlementOf(row, now)
		if err != nil {
			return err
		}
		taken := int(row.DaysTaken)
		delta = clamp(delta, -taken, max(entitlement, 0))
		return setDaysTaken(row, taken+delta, now)
	})
}

// SetDaysTaken sets days_taken to value, clamped to [0, entitlement].
func (s *EmployeeService) SetDaysTaken(ctx context.Context, id int64, value int) (*models.Employee, error) {
	return s.update(ctx, id, models.FieldDaysTaken, func(_ *db.Repository, row *dbmodels.Employee, now time.Time) error {
		return setDaysTaken(row, value, now)
	})
}

// SetStatus changes the status only. Moving to Temp leaves employee_number
// in place; the caller clears it with UpdateField. Moving back to Company
// fails when another Company record took the number meanwhile.
func (s *EmployeeService) SetStatus(ctx context.Context, id int64, status models.Status) (*models.Employee, error) {
	return s.update(ctx, id, models.FieldStatus, func(tx *db.Repository, row *dbmodels.Employee, _ time.Time) error {
		return setStatus(ctx, tx, row, status)
	})
}

// AttachDocument appends (basename(filePath), filePath) to the record's attachments.
func (s *EmployeeService) AttachDocument(ctx context.Context, id int64, filePath string) (*models.Employee, error) {
	return s.update(ctx, id, models.FieldDocument, func(_ *db.Repository, row *dbmodels.Employee, _ time.Time) error {
		if strings.TrimSpace(filePath) == "" {
			return fmt.Errorf("%w: file path cannot be empty", e.ErrValidation)
		}
		text, err := attachments.Append(utils.Deref(row.DocumentPath), filepath.Base(filePath), filePath)
		if err != nil {
			return err
		}
		row.DocumentPath = documentColumn(text)
		return nil
	})
}

// RenameCurrentDocument renames the last attachment.
func (s *EmployeeService) RenameCurrentDocument(ctx context.Context, id int64, newName string) (*models.Employee, error) {
	return s.UpdateField(ctx, id, models.FieldDocument, newName)
}

// DeleteDocument removes the attachment at index. Files on disk are untouched.
func (s *EmployeeService) DeleteDocument(ctx context.Context, id int64, index int) (*models.Employee, error) {
	return s.update(ctx, id, models.FieldDocument, func(_ *db.Repository, row *dbmodels.Employee, _ time.Time) error {
		text, err := attachments.RemoveAt(utils.Deref(row.DocumentPath), index)
		if err != nil {
			return err
		}
		row.DocumentPath = documentColumn(text)
		return nil
	})
}

// Delete removes the record permanently.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		return tx.DeleteEmployee(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.Int64("employee_id", id))
	return nil
}

// update loads the row, applies fn, recomputes days_available and writes
// the row back, all in one transaction.
func (s *EmployeeService) update(
	ctx context.Context,
	id int64,
	field models.Field,
	fn func(tx *db.Repository, row *dbmodels.Employee, now time.Time) error,
) (*models.Employee, error) {
	var out models.Employee
	now := s.clock.Now()
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		row, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, row, now); err != nil {
			return fmt.Errorf("employee %d: %s: %w", id, field, err)
		}
		entitlement, err := entitlementOf(row, now)
		if err != nil {
			return err
		}
		row.DaysAvailable = int64(entitlement) - row.DaysTaken
		if err := tx.UpdateColumns(ctx, id, columnsOf(row)); err != nil {
			return err
		}
		out = toModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("employee updated",
		zap.Int64("employee_id", id),
		zap.String("field", string(field)),
	)
	return &out, nil
}

func setEmployeeNumber(ctx context.Context, tx *db.Repository, row *dbmodels.Employee, value string) error {
	if value == "" {
		if row.Status == string(models.Company) {
			return fmt.Errorf("%w: employee number cannot be empty for Company status", e.ErrValidation)
		}
		row.EmployeeNumber = nil
		return nil
	}
	if row.Status == string(models.Temp) {
		return fmt.Errorf("%w: Temp employees cannot hold a number", e.ErrInvalidEmployeeNumber)
	}
	n, err := parseEmployeeNumber(value)
	if err != nil {
		return err
	}
	if err := checkNumberFree(ctx, tx, n, row.ID); err != nil {
		return err
	}
	row.EmployeeNumber = utils.Ptr(int64(n))
	return nil
}

func setStatus(ctx context.Context, tx *db.Repository, row *dbmodels.Employee, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", e.ErrValidation, status)
	}
	if status == models.Company && row.EmployeeNumber != nil {
		if err := checkNumberFree(ctx, tx, int(*row.EmployeeNumber), row.ID); err != nil {
			return err
		}
	}
	row.Status = string(status)
	return nil
}

func setDaysTaken(row *dbmodels.Employee, taken int, now time.Time) error {
	entitlement, err := entitlementOf(row, now)
	if err != nil {
		return err
	}
	row.DaysTaken = int64(clamp(taken, 0, entitlement))
	return nil
}

func renameCurrent(row *dbmodels.Employee, name string) error {
	text, err := attachments.RenameLast(utils.Deref(row.DocumentPath), name)
	if err != nil {
		return err
	}
	row.DocumentPath = documentColumn(text)
	return nil
}

// clamp bounds v to [lo, hi]; lo wins when hi < lo.
func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func parseEmployeeNumber(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: employee number cannot be empty for Company status", e.ErrValidation)
	}
	if len(text) > 3 || strings.Trim(text, "0123456789") != "" {
		return 0, fmt.Errorf("%w: got %q", e.ErrInvalidEmployeeNumber, text)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", e.ErrInvalidEmployeeNumber, text)
	}
	return n, nil
}

func checkNumberFree(ctx context.Context, tx *db.Repository, number int, excludeID int64) error {
	taken, err := tx.EmployeeNumberTaken(ctx, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %d", e.ErrDuplicateEmployeeNumber, number)
	}
	return nil
}

func columnsOf(row *dbmodels.Employee) map[string]interface{} {
	return map[string]interface{}{
		"name":            row.Name,
		"employee_number": nullable(row.EmployeeNumber),
		"status":          row.Status,
		"anniversary":     row.Anniversary,
		"days_taken":      row.DaysTaken,
		"days_available":  row.DaysAvailable,
		"document_path":   nullable(row.DocumentPath),
	}
}

// nullable turns a nil pointer into an untyped nil so gorm writes NULL.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func numberColumn(n *int) *int64 {
	if n == nil {
		return nil
	}
	return utils.Ptr(int64(*n))
}

func documentColumn(text string) *string {
	if text == "" {
		return nil
	}
	return &text
}
