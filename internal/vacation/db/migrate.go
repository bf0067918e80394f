package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/gartstein/vacation/internal/vacation/accrual"
	"github.com/gartstein/vacation/internal/vacation/db/models"
	e "github.com/gartstein/vacation/internal/vacation/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationReport describes the work a Migrate pass performed.
type MigrationReport struct {
	Created         bool
	AddedColumns    []string
	NormalizedDates int64
}

// Migrate brings the employees table to the expected column set and rewrites
// dash-separated anniversaries to the slash form. Running it again on a
// migrated table does nothing.
func (r *Repository) Migrate(ctx context.Context) (*MigrationReport, error) {
	report := &MigrationReport{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		migrator := tx.Migrator()
		if !migrator.HasTable(&models.Employee{}) {
			if err := migrator.CreateTable(&models.Employee{}); err != nil {
				return storageError("create employees table", err)
			}
			report.Created = true
			r.logger.Info("created employees table")
		} else {
			added, err := addMissingColumns(tx)
			if err != nil {
				return err
			}
			report.AddedColumns = added
		}

		normalized, err := normalizeDates(tx)
		if err != nil {
			return err
		}
		report.NormalizedDates = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(report.AddedColumns) > 0 || report.NormalizedDates > 0 {
		r.logger.Info("migrated employees table",
			zap.Strings("added_columns", report.AddedColumns),
			zap.Int64("normalized_dates", report.NormalizedDates),
		)
	}
	return report, nil
}

func addMissingColumns(tx *gorm.DB) ([]string, error) {
	migrator := tx.Migrator()
	columnTypes, err := migrator.ColumnTypes(&models.Employee{})
	if err != nil {
		return nil, storageError("read employees columns", err)
	}
	existing := make(map[string]bool, len(columnTypes))
	for _, ct := range columnTypes {
		existing[strings.ToLower(ct.Name())] = true
	}

	if !existing["id"] {
		return nil, e.ErrMissingIdentityColumn
	}

	var added []string
	for _, column := range models.ExpectedColumns {
		if existing[column] {
			continue
		}
		if err := migrator.AddColumn(&models.Employee{}, column); err != nil {
			return nil, storageError(fmt.Sprintf("add column %s", column), err)
		}
		added = append(added, column)
	}
	return added, nil
}

// normalizeDates rewrites every dash-separated anniversary to the slash form.
func normalizeDates(tx *gorm.DB) (int64, error) {
	var legacy []models.Employee
	err := tx.Select("id", "anniversary").
		Where("anniversary LIKE ?", "%-%").
		Find(&legacy).Error
	if err != nil {
		return 0, storageError("find legacy anniversary dates", err)
	}

	for _, row := range legacy {
		err := tx.Model(&models.Employee{}).
			Where("id = ?", row.ID).
			Update("anniversary", accrual.NormalizeSeparators(row.Anniversary)).Error
		if err != nil {
			return 0, storageError(fmt.Sprintf("normalize anniversary of employee %d", row.ID), err)
		}
	}
	return int64(len(legacy)), nil
}
