package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gartstein/vacation/internal/vacation/controller"
	"github.com/gartstein/vacation/internal/vacation/db"
	e "github.com/gartstein/vacation/internal/vacation/errors"
	"github.com/gartstein/vacation/internal/vacation/models"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// IntegrationTestSuite drives the engine against a data file that is closed
// and reopened between steps, the way separate runs of the program see it.
type IntegrationTestSuite struct {
	suite.Suite
	dbPath      string
	logger      *zap.Logger
	clock       *fixedClock
	testTimeout time.Duration
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.logger = zap.NewNop()
	s.testTimeout = 20 * time.Second
}

func (s *IntegrationTestSuite) SetupTest() {
	s.dbPath = filepath.Join(s.T().TempDir(), "employees.db")
	s.clock = &fixedClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// session opens the data file, runs the startup pass and hands the
// services to fn before closing the file again.
func (s *IntegrationTestSuite) session(fn func(ctx context.Context, svc *controller.EmployeeService, ledger *controller.Ledger)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	repo, err := db.Open(ctx, &db.Config{Path: s.dbPath, OpenRetries: 2}, s.logger)
	s.Require().NoError(err)
	defer func() { s.NoError(repo.Close()) }()

	ledger := controller.NewLedger(repo, s.clock, s.logger)
	_, err = ledger.Startup(ctx, models.OrderByID)
	s.Require().NoError(err)

	fn(ctx, controller.NewEmployeeService(repo, s.clock, s.logger), ledger)
}

func (s *IntegrationTestSuite) TestLegacyFileUpgrade() {
	ctx := context.Background()
	repo, err := db.Open(ctx, &db.Config{Path: s.dbPath}, s.logger)
	s.Require().NoError(err)
	s.Require().NoError(repo.Exec(ctx, `CREATE TABLE employees (
		id INTEGER PRIMARY KEY,
		employee_number INTEGER,
		name TEXT,
		status TEXT,
		anniversary DATE,
		days_taken INTEGER)`))
	s.Require().NoError(repo.Exec(ctx,
		`INSERT INTO employees VALUES (1, 7, 'Ana Diaz', 'Company', '2015-01-01', 50)`))
	s.Require().NoError(repo.Close())

	s.session(func(ctx context.Context, svc *controller.EmployeeService, _ *controller.Ledger) {
		emp, err := svc.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal("2015/01/01", emp.Anniversary)
		s.Equal(50, emp.DaysTaken)
		s.Equal(150, emp.DaysAvailable)
		s.Empty(emp.Attachments)

		_, err = svc.AttachDocument(ctx, 1, "/scans/ana.pdf")
		s.Require().NoError(err)
	})

	s.session(func(ctx context.Context, svc *controller.EmployeeService, _ *controller.Ledger) {
		emp, err := svc.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal("ana.pdf", emp.CurrentDocument())
	})
}

func (s *IntegrationTestSuite) TestBalancesGrowAcrossRuns() {
	s.session(func(ctx context.Context, svc *controller.EmployeeService, _ *controller.Ledger) {
		_, err := svc.Create(ctx, controller.CreateInput{
			Name: "Ana Diaz", EmployeeNumber: "7", Status: models.Company, Anniversary: "2022/01/01",
		})
		s.Require().NoError(err)
		_, err = svc.AdjustDays(ctx, 1, 10)
		s.Require().NoError(err)
	})

	s.clock.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.session(func(ctx context.Context, svc *controller.EmployeeService, ledger *controller.Ledger) {
		first, err := ledger.ReconcileAll(ctx, models.OrderByID)
		s.Require().NoError(err)
		s.Require().Len(first, 1)
		s.Equal(10, first[0].DaysTaken)
		s.Equal(first[0].DaysAvailable, 40-10)

		second, err := svc.List(ctx, models.OrderByID)
		s.Require().NoError(err)
		s.Equal(first, second)
	})
}

func (s *IntegrationTestSuite) TestRejectedChangeLeavesFileUntouched() {
	s.session(func(ctx context.Context, svc *controller.EmployeeService, _ *controller.Ledger) {
		_, err := svc.Create(ctx, controller.CreateInput{Name: "Ana Diaz", EmployeeNumber: "7", Status: models.Company, Anniversary: "2015/01/01"})
		s.Require().NoError(err)
		_, err = svc.Create(ctx, controller.CreateInput{Name: "Bo Lee", EmployeeNumber: "8", Status: models.Company, Anniversary: "2015/01/01"})
		s.Require().NoError(err)

		_, err = svc.UpdateField(ctx, 2, models.FieldEmployeeNumber, "7")
		s.ErrorIs(err, e.ErrDuplicateEmployeeNumber)
	})

	s.session(func(ctx context.Context, svc *controller.EmployeeService, _ *controller.Ledger) {
		emp, err := svc.Get(ctx, 2)
		s.Require().NoError(err)
		s.Equal("8", emp.NumberString())
	})
}
