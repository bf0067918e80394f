package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gartstein/vacation/internal/vacation/controller"
	e "github.com/gartstein/vacation/internal/vacation/errors"
	"github.com/gartstein/vacation/internal/vacation/models"
	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var name, number, status, anniversary string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Adds an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			emp, err := app.employees.Create(cmd.Context(), controller.CreateInput{
				Name:           name,
				EmployeeNumber: number,
				Status:         models.Status(status),
				Anniversary:    anniversary,
			})
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&number, "number", "", "employee number, 1-3 digits (Company only)")
	cmd.Flags().StringVar(&status, "status", string(models.Company), "Company or Temp")
	cmd.Flags().StringVar(&anniversary, "anniversary", "", "service anniversary, YYYY/MM/DD")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists employees with their current balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listOrder, err := parseOrder(order)
			if err != nil {
				return err
			}
			employees, err := app.employees.List(cmd.Context(), listOrder)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), employees)
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "order", string(models.OrderByID), "id or last_name")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Shows one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			emp, err := app.employees.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
}

func newSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set ID FIELD VALUE",
		Short: "Edits one field: name, employee_number, status, anniversary, days_taken or document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			emp, err := app.employees.UpdateField(cmd.Context(), id, models.Field(args[1]), args[2])
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
}

func newAdjustCmd(app *App) *cobra.Command {
	var by, to int
	cmd := &cobra.Command{
		Use:   "adjust ID",
		Short: "Adds to or sets the days taken, bounded by the entitlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var emp *models.Employee
			if cmd.Flags().Changed("to") {
				emp, err = app.employees.SetDaysTaken(cmd.Context(), id, to)
			} else {
				emp, err = app.employees.AdjustDays(cmd.Context(), id, by)
			}
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
	cmd.Flags().IntVar(&by, "by", 1, "days to add (negative to give back)")
	cmd.Flags().IntVar(&to, "to", 0, "absolute days taken")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Changes the status; moving to Temp clears the employee number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := models.Status(args[1])
			emp, err := app.employees.SetStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			if app.ledger.StatusTransition(status).Cleared && emp.EmployeeNumber != nil {
				emp, err = app.employees.UpdateField(cmd.Context(), id, models.FieldEmployeeNumber, "")
				if err != nil {
					return err
				}
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Deletes an employee permanently; attached files are left on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.employees.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted employee %d\n", id)
			return nil
		},
	}
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Recomputes days available for every employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := app.ledger.ReconcileAll(cmd.Context(), models.OrderByID)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), employees)
			return nil
		},
	}
}

func parseID(text string) (int64, error) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid employee id %q", e.ErrValidation, text)
	}
	return id, nil
}

func parseOrder(text string) (models.ListOrder, error) {
	switch models.ListOrder(text) {
	case models.OrderByID, models.OrderByLastName:
		return models.ListOrder(text), nil
	default:
		return "", fmt.Errorf("%w: unknown order %q", e.ErrValidation, text)
	}
}

func printEmployee(w io.Writer, emp *models.Employee) {
	fmt.Fprintf(w, "%s\n", emp.DisplayName())
	fmt.Fprintf(w, "  number:         %s\n", numberCell(emp))
	fmt.Fprintf(w, "  status:         %s\n", emp.Status)
	fmt.Fprintf(w, "  anniversary:    %s\n", emp.Anniversary)
	fmt.Fprintf(w, "  days taken:     %d\n", emp.DaysTaken)
	fmt.Fprintf(w, "  days available: %d\n", emp.DaysAvailable)
	fmt.Fprintf(w, "  document:       %s\n", emp.CurrentDocument())
}

// numberCell flags Company records still waiting for a number.
func numberCell(emp *models.Employee) string {
	if emp.MissingNumber() {
		return "(missing)"
	}
	return emp.NumberString()
}
