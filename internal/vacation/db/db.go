// Package db persists employees in a local sqlite file through GORM and
// repairs the schema at startup.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/vacation/internal/vacation/db/models"
	e "github.com/gartstein/vacation/internal/vacation/errors"
	domain "github.com/gartstein/vacation/internal/vacation/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

type Config struct {
	// Path is the sqlite file, or ":memory:".
	Path string
	// OpenRetries bounds how often a locked or busy file is retried.
	OpenRetries uint64
	// BusyTimeout is handed to sqlite for lock waits inside a statement.
	BusyTimeout time.Duration
}

// Open connects to the sqlite file described by cfg. It does not migrate;
// call Migrate before any other operation.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (*Repository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty database path", e.ErrStorageUnavailable)
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", e.ErrStorageUnavailable, err)
		}
	}
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds())
	logger = logger.Named("repository")

	var gdb *gorm.DB
	operation := func() error {
		var err error
		gdb, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		// one process, one writer
		sqlDB.SetMaxOpenConns(1)
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("database open failed, retrying",
			zap.String("path", cfg.Path),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.OpenRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %w", e.ErrStorageUnavailable, err)
	}

	return &Repository{db: gdb, logger: logger}, nil
}

// NextID returns one more than the highest id in use. Not safe under
// concurrent writers.
func (r *Repository) NextID(ctx context.Context) (int64, error) {
	var maxID int64
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID)
	if result.Error != nil {
		return 0, storageError("read max id", result.Error)
	}
	return maxID + 1, nil
}

func (r *Repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	result := r.db.WithContext(ctx).Create(employee)
	if result.Error != nil {
		return storageError("create employee", result.Error)
	}
	return nil
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	result := r.db.WithContext(ctx).First(&employee, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: employee %d", e.ErrNotFound, id)
		}
		return nil, storageError("get employee", result.Error)
	}
	return &employee, nil
}

// ListEmployees returns every row ordered by id.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	result := r.db.WithContext(ctx).Order("id").Find(&employees)
	if result.Error != nil {
		return nil, storageError("list employees", result.Error)
	}
	return employees, nil
}

// UpdateColumns writes the given column values to one row. A nil value stores NULL.
func (r *Repository) UpdateColumns(ctx context.Context, id int64, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("id = ?", id).
		Updates(columns)

	if result.Error != nil {
		return storageError("update employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: employee %d", e.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Employee{}, "id = ?", id)
	if result.Error != nil {
		return storageError("delete employee", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: employee %d", e.ErrNotFound, id)
	}
	return nil
}

// EmployeeNumberTaken reports whether a Company employee other than
// excludeID holds number.
func (r *Repository) EmployeeNumberTaken(ctx context.Context, number int, excludeID int64) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("status = ? AND employee_number = ? AND id <> ?", string(domain.Company), number, excludeID).
		Limit(1).
		Count(&count)
	if result.Error != nil {
		return false, storageError("check employee number", result.Error)
	}
	return count > 0, nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx, logger: r.logger})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return storageError("exec", result.Error)
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", e.ErrStorageUnavailable, op, err)
}
