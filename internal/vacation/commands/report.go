package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gartstein/vacation/internal/vacation/models"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Prints the employee database report ordered by last name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := app.employees.List(cmd.Context(), models.OrderByLastName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rule := strings.Repeat("=", 100)
			fmt.Fprintln(out, "Employee Database Report")
			fmt.Fprintln(out, rule)
			printTable(out, employees)
			fmt.Fprintln(out, rule)
			return nil
		},
	}
}

func printTable(w io.Writer, employees []models.Employee) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID.NAME\t#\tSTATUS\tANNIVERSARY\tDAYS TAKEN\tDAYS AVAILABLE\tDOCUMENT")
	for i := range employees {
		emp := &employees[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			emp.DisplayName(),
			numberCell(emp),
			emp.Status,
			emp.Anniversary,
			emp.DaysTaken,
			emp.DaysAvailable,
			emp.CurrentDocument(),
		)
	}
	_ = tw.Flush()
}
