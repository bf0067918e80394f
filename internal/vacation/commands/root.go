// Package commands is the command-line front end of the vacation ledger.
// Commands only parse input, call the controller and print what it returns.
package commands

import (
	"fmt"

	"github.com/gartstein/vacation/internal/vacation/config"
	"github.com/gartstein/vacation/internal/vacation/controller"
	"github.com/gartstein/vacation/internal/vacation/db"
	"github.com/gartstein/vacation/internal/vacation/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App carries what every command needs once the store is open.
type App struct {
	// Logger overrides the logger built from configuration when set.
	Logger *zap.Logger
	// Clock overrides wall-clock time when set.
	Clock controller.Clock

	ConfigPath   string
	DatabasePath string

	repo      *db.Repository
	employees *controller.EmployeeService
	ledger    *controller.Ledger
}

func New(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vacation",
		Short:         "Tracks employees and their accrued and used vacation days",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "path to a yaml config file")
	rootCmd.PersistentFlags().StringVar(&app.DatabasePath, "db", "", "path to the sqlite data file (overrides config)")

	rootCmd.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newSetCmd(app),
		newAdjustCmd(app),
		newStatusCmd(app),
		newDeleteCmd(app),
		newAttachCmd(app),
		newDocsCmd(app),
		newRenameDocCmd(app),
		newDeleteDocCmd(app),
		newRefreshCmd(app),
		newReportCmd(app),
	)
	return rootCmd
}

// open loads configuration, opens the data file, migrates it and reconciles
// every record before any command runs.
func (a *App) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.DatabasePath != "" {
		cfg.Database.Path = a.DatabasePath
	}

	if a.Logger == nil {
		a.Logger, err = cfg.Log.NewLogger()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
	}
	logger := a.Logger.With(zap.String("session_id", uuid.NewString()))

	ctx := cmd.Context()
	a.repo, err = db.Open(ctx, &db.Config{
		Path:        cfg.Database.Path,
		OpenRetries: cfg.Database.OpenRetries,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		return err
	}

	a.employees = controller.NewEmployeeService(a.repo, a.Clock, logger)
	a.ledger = controller.NewLedger(a.repo, a.Clock, logger)
	if _, err := a.ledger.Startup(ctx, models.OrderByID); err != nil {
		_ = a.repo.Close()
		a.repo = nil
		return err
	}
	return nil
}

// Close releases the data file. It is safe to call more than once.
func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return err
}
