package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	extractOutput string
	extractStdout bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the database metadata into a snapshot",
	Long: `Connect to the configured database and extract tables, columns, primary
and unique keys, indexes, foreign keys and (when enabled) procedures.
The snapshot is written as YAML into the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}

		ctx := context.Background()
		snap, err := e.Extract(ctx)
		if err != nil {
			return fmt.Errorf("extracting metadata: %w", err)
		}

		if extractStdout {
			data, err := snap.ToYAML()
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, snap.Summary())
			return nil
		}

		fmt.Println(renderSummary(snap))
		path := extractOutput
		if path == "" {
			path, err = e.WriteSnapshot(snap)
		} else {
			err = snap.WriteYAML(path)
		}
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Println(successStyle.Render("Snapshot written to " + path))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "snapshot path (default: <output.directory>/schema-snapshot.yaml)")
	extractCmd.Flags().BoolVar(&extractStdout, "stdout", false, "print the snapshot instead of writing it")
	rootCmd.AddCommand(extractCmd)
}
