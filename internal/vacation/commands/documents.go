package commands

import (
	"fmt"
	"strconv"

	e "github.com/gartstein/vacation/internal/vacation/errors"
	"github.com/spf13/cobra"
)

func newAttachCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "attach ID PATH",
		Short: "Attaches a document file to an employee",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			emp, err := app.employees.AttachDocument(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
}

func newDocsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "docs ID",
		Short: "Lists the documents attached to an employee",
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
			out := cmd.OutOrStdout()
			for i, doc := range emp.Attachments {
				fmt.Fprintf(out, "%d\t%s\t%s\n", i, doc.Name, doc.Path)
			}
			return nil
		},
	}
}

func newRenameDocCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-doc ID NAME",
		Short: "Renames the most recently attached document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			emp, err := app.employees.RenameCurrentDocument(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
}

func newDeleteDocCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-doc ID INDEX",
		Short: "Detaches the document at INDEX (see docs); the file stays on disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: invalid index %q", e.ErrValidation, args[1])
			}
			emp, err := app.employees.DeleteDocument(cmd.Context(), id, index)
			if err != nil {
				return err
			}
			printEmployee(cmd.OutOrStdout(), emp)
			return nil
		},
	}
}
