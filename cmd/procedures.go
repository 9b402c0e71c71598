package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var proceduresOutput string

var proceduresCmd = &cobra.Command{
	Use:   "procedures",
	Short: "Set up parameter beans of the stored procedures",
	Long: `Extract the stored procedures of the configured schemas, including
synonyms and DB-link procedures, and print their parameter-bean descriptors
as YAML. Procedures are read even when procedure.enabled is false.`,
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

		res, err := e.ParameterBeans(ctx, src.Meta)
		if err != nil {
			return fmt.Errorf("setting up parameter beans: %w", err)
		}
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshaling parameter beans: %w", err)
		}

		if proceduresOutput == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.MkdirAll(filepath.Dir(proceduresOutput), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(proceduresOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing parameter beans: %w", err)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("%d parameter beans written to %s", len(res.Beans), proceduresOutput)))
		return nil
	},
}

func init() {
	proceduresCmd.Flags().StringVarP(&proceduresOutput, "output", "o", "", "write the descriptors to a file instead of stdout")
	rootCmd.AddCommand(proceduresCmd)
}
