package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// stylesCommand creates the styles command group.
func (c *CLI) stylesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List and inspect catalog records",
	}

	cmd.AddCommand(c.stylesListCommand())
	cmd.AddCommand(c.stylesShowCommand())

	return cmd
}

func (c *CLI) stylesListCommand() *cobra.Command {
	var idsOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every style record in matching order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if idsOnly {
				for _, id := range cat.IDs() {
					fmt.Fprintln(w, id)
				}
				return nil
			}
			fmt.Fprintln(w, renderRecordTable(cat.Records(), -1))
			printDetail(w, "%d records from %s", cat.Len(), strings.Join(cat.Sources(), ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print only record ids")

	return cmd
}

func (c *CLI) stylesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the criteria and sub-styles of a record",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			cat, err := catalog.LoadPaths(cmd.Context(), c.config().StylePaths...)
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return cat.IDs(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := cat.Get(args[0])
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

// renderRecordTable renders records as a table. The row at cursor is
// highlighted; pass -1 for none.
func renderRecordTable(records []*style.Record, cursor int) string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{rec.ID, rec.Preferred, fmt.Sprint(len(rec.Styles)), rec.Source}
	}
	return recordTable(rows, func(row int) bool { return row == cursor }).Render()
}

func recordTable(rows [][]string, selected func(row int) bool) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Preferred", "Styles", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1: // header
				return headerStyle.Padding(0, 1)
			case selected(row):
				return base.Foreground(colorGreen).Bold(true)
			case col == 3:
				return base.Foreground(colorDim)
			}
			return base
		})
}

func printRecord(w io.Writer, rec *style.Record) {
	fmt.Fprintln(w, StyleTitle.Render(rec.ID))
	if rec.Description != "" {
		printDetail(w, "%s", rec.Description)
	}
	printKeyValue(w, "source", rec.Source)
	printKeyValue(w, "preferred", rec.Preferred)

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleHighlight.Render("Criteria"))
	for i, clause := range rec.Criteria {
		prefix := "  "
		if i > 0 {
			prefix = "or"
		}
		printKeyValue(w, prefix, clauseString(clause))
	}

	for _, name := range rec.Order {
		fmt.Fprintln(w)
		title := name
		if name == rec.Preferred {
			title += " " + StyleDim.Render("(preferred)")
		}
		fmt.Fprintln(w, StyleHighlight.Render(title))
		printParams(w, rec.Styles[name])
	}
}

func clauseString(clause style.Clause) string {
	if len(clause) == 0 {
		return StyleDim.Render("(any)")
	}
	return clause.String()
}
