package controller

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gartstein/vacation/internal/pkg/utils"
	"github.com/gartstein/vacation/internal/vacation/accrual"
	"github.com/gartstein/vacation/internal/vacation/attachments"
	"github.com/gartstein/vacation/internal/vacation/db"
	dbmodels "github.com/gartstein/vacation/internal/vacation/db/models"
	"github.com/gartstein/vacation/internal/vacation/models"
	"go.uber.org/zap"
)

// NumberFieldState is how the employee-number input should look for a status.
type NumberFieldState struct {
	Enabled bool
	Cleared bool
}

// Ledger keeps the cached days_available column consistent with the
// entitlement computed from each anniversary and days_taken.
type Ledger struct {
	repo   Repository
	clock  Clock
	logger *zap.Logger
}

// NewLedger constructs a Ledger over repo. A nil clock reads wall-clock time.
func NewLedger(repo Repository, clock Clock, logger *zap.Logger) *Ledger {
	if clock == nil {
		clock = realClock{}
	}
	return &Ledger{
		repo:   repo,
		clock:  clock,
		logger: logger.Named("ledger"),
	}
}

// Startup migrates the schema and then reconciles every record.
func (l *Ledger) Startup(ctx context.Context, order models.ListOrder) ([]models.Employee, error) {
	if _, err := l.repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return l.ReconcileAll(ctx, order)
}

// ReconcileAll recomputes days_available for every record, persists any that
// drifted and returns the corrected snapshot.
func (l *Ledger) ReconcileAll(ctx context.Context, order models.ListOrder) ([]models.Employee, error) {
	employees, corrected, err := loadAll(ctx, l.repo, l.clock.Now(), order)
	if err != nil {
		return nil, err
	}
	for _, c := range corrected {
		l.logger.Info("corrected days available",
			zap.Int64("employee_id", c.id),
			zap.Int("stored", c.stored),
			zap.Int("computed", c.computed),
		)
	}
	l.logger.Debug("reconciled employees",
		zap.Int("total", len(employees)),
		zap.Int("corrected", len(corrected)),
	)
	return employees, nil
}

// StatusTransition reports the employee-number field state for status.
// Temp staff have the field disabled and cleared.
func (l *Ledger) StatusTransition(status models.Status) NumberFieldState {
	if status == models.Temp {
		return NumberFieldState{Enabled: false, Cleared: true}
	}
	return NumberFieldState{Enabled: true, Cleared: false}
}

type correction struct {
	id       int64
	stored   int
	computed int
}

func loadAll(ctx context.Context, repo Repository, now time.Time, order models.ListOrder) ([]models.Employee, []correction, error) {
	var (
		employees []models.Employee
		corrected []correction
	)
	err := repo.WithTransaction(ctx, func(tx *db.Repository) error {
		rows, err := tx.ListEmployees(ctx)
		if err != nil {
			return err
		}
		employees = make([]models.Employee, 0, len(rows))
		for i := range rows {
			stored := int(rows[i].DaysAvailable)
			emp, changed, err := syncRow(ctx, tx, &rows[i], now)
			if err != nil {
				return err
			}
			if changed {
				corrected = append(corrected, correction{id: emp.ID, stored: stored, computed: emp.DaysAvailable})
			}
			employees = append(employees, emp)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sortEmployees(employees, order)
	return employees, corrected, nil
}

// syncRow recomputes days_available for row and writes it back if stale.
func syncRow(ctx context.Context, tx *db.Repository, row *dbmodels.Employee, now time.Time) (models.Employee, bool, error) {
	entitlement, err := entitlementOf(row, now)
	if err != nil {
		return models.Employee{}, false, err
	}
	available := int64(entitlement) - row.DaysTaken
	changed := available != row.DaysAvailable
	if changed {
		if err := tx.UpdateColumns(ctx, row.ID, map[string]interface{}{"days_available": available}); err != nil {
			return models.Employee{}, false, err
		}
		row.DaysAvailable = available
	}
	return toModel(row), changed, nil
}

func entitlementOf(row *dbmodels.Employee, now time.Time) (int, error) {
	anniversary, err := accrual.ParseAnniversary(row.Anniversary, now.Location())
	if err != nil {
		return 0, fmt.Errorf("employee %d: %w", row.ID, err)
	}
	return accrual.Entitlement(anniversary, now), nil
}

func toModel(row *dbmodels.Employee) models.Employee {
	var number *int
	if row.EmployeeNumber != nil {
		number = utils.Ptr(int(*row.EmployeeNumber))
	}
	return models.Employee{
		ID:             row.ID,
		EmployeeNumber: number,
		Name:           row.Name,
		Status:         models.Status(row.Status),
		Anniversary:    row.Anniversary,
		DaysTaken:      int(row.DaysTaken),
		DaysAvailable:  int(row.DaysAvailable),
		Attachments:    attachments.Decode(utils.Deref(row.DocumentPath)),
	}
}

func sortEmployees(employees []models.Employee, order models.ListOrder) {
	switch order {
	case models.OrderByLastName:
		sort.SliceStable(employees, func(i, j int) bool {
			a, b := lastName(employees[i].Name), lastName(employees[j].Name)
			if a != b {
				return a < b
			}
			return employees[i].ID < employees[j].ID
		})
	default:
		sort.SliceStable(employees, func(i, j int) bool {
			return employees[i].ID < employees[j].ID
		})
	}
}

// lastName is the final whitespace-delimited token of name, or name itself.
func lastName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[len(fields)-1]
}
