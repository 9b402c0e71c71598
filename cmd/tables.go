package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the target tables",
	Long:  `List the tables and views of every configured schema after the except and target hints are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}

		ctx := context.Background()
		src, err := e.Open(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		tables, err := e.Tables(ctx, src.Meta)
		if err != nil {
			return fmt.Errorf("listing tables: %w", err)
		}
		for _, t := range tables {
			name := t.QualifiedName()
			if t.IsView() {
				fmt.Printf("  %s %s\n", highlightStyle.Render(name), dimStyle.Render("(view)"))
				continue
			}
			fmt.Printf("  %s\n", highlightStyle.Render(name))
		}
		fmt.Println()
		fmt.Printf("%d tables\n", len(tables))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
