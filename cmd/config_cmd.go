package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Create, view and validate the dfmeta configuration.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walk through prompts to create a dfmeta configuration file at ~/.dfmeta/dfmeta.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println(titleStyle.Render("dfmeta configuration"))
		fmt.Println()

		dbType := prompt(reader, "Database type (oracle/postgresql/mysql/sqlserver/sqlite/h2)", "postgresql")
		db := config.DatabaseConfig{Type: dbType}
		if dbType == "sqlite" {
			db.DSN = prompt(reader, "Database file", "")
		} else {
			db.Host = prompt(reader, "Host", "localhost")
			portStr := prompt(reader, "Port", defaultPort(dbType))
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid port: %s", portStr)
			}
			db.Port = port
			db.Database = prompt(reader, "Database name", "")
			db.Schema = prompt(reader, "Main schema (leave empty for default)", defaultSchema(dbType))
			db.Username = prompt(reader, "Username", "")
			db.Password = prompt(reader, "Password (or ${ENV:NAME})", "")
		}
		procedures := prompt(reader, "Extract procedures (y/n)", "n")
		fmt.Println()

		cfg := &config.Config{
			Version:   config.CurrentVersion,
			Database:  db,
			Procedure: config.ProcedureConfig{Enabled: strings.HasPrefix(strings.ToLower(procedures), "y")},
		}

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}
		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(successStyle.Render("Config written to " + cfgPath))
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  dfmeta tables       List the target tables")
		fmt.Println("  dfmeta extract      Extract the metadata snapshot")
		fmt.Println("  dfmeta procedures   Set up procedure parameter beans")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Database:\n")
		fmt.Printf("    Type:           %s\n", cfg.Database.Type)
		fmt.Printf("    Host:           %s\n", cfg.Database.Host)
		fmt.Printf("    Port:           %d\n", cfg.Database.Port)
		fmt.Printf("    Database:       %s\n", cfg.Database.Database)
		fmt.Printf("    Schema:         %s\n", cfg.Database.Schema)
		fmt.Printf("    Username:       %s\n", cfg.Database.Username)
		fmt.Printf("    Password:       %s\n", maskSecret(cfg.Database.Password))
		if cfg.Database.DSN != "" {
			fmt.Printf("    DSN:            %s\n", maskSecret(cfg.Database.DSN))
		}
		fmt.Println()
		fmt.Printf("  Additional schemas: %d\n", len(cfg.AdditionalSchemas))
		fmt.Printf("  Procedures:         %t (synonyms: %s, DB links: %d)\n",
			cfg.Procedure.Enabled, cfg.Procedure.SynonymHandling, len(cfg.Procedure.DBLinks))
		fmt.Printf("  Output:             %s\n", cfg.Output.Directory)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(cfgFile); err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Println(successStyle.Render("Configuration is valid."))
		return nil
	},
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func defaultPort(dbType string) string {
	switch dbType {
	case "oracle":
		return "1521"
	case "mysql":
		return "3306"
	case "sqlserver":
		return "1433"
	case "h2":
		return "5435"
	default:
		return "5432"
	}
}

func defaultSchema(dbType string) string {
	switch dbType {
	case "postgresql", "h2":
		return "public"
	case "sqlserver":
		return "dbo"
	}
	return ""
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
