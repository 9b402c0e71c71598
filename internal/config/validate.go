package config

import (
	"fmt"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/hint"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
)

// Validate checks the settings that would otherwise fail in the middle of a run.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Database.Type) == "" {
		problems = append(problems, "database.type is required")
	}
	if len(c.Tables.ObjectTypeTargets) == 0 {
		problems = append(problems, "tables.objectTypeTargets must not be empty")
	}
	problems = append(problems, badHints("tables.tableTargets", c.Tables.TableTargets)...)
	problems = append(problems, badHints("tables.tableExcepts", c.Tables.TableExcepts)...)
	for table, cols := range c.Tables.ColumnExcepts {
		problems = append(problems, badHints("tables.columnExcepts."+table, cols)...)
	}

	for i, s := range c.AdditionalSchemas {
		prefix := fmt.Sprintf("additionalSchemas[%d]", i)
		if strings.TrimSpace(s.Schema) == "" && strings.TrimSpace(s.Catalog) == "" {
			problems = append(problems, prefix+": schema or catalog is required")
		}
		if len(s.ObjectTypeTargets) == 0 {
			problems = append(problems, prefix+".objectTypeTargets must not be empty")
		}
		problems = append(problems, badHints(prefix+".tableTargets", s.TableTargets)...)
		problems = append(problems, badHints(prefix+".tableExcepts", s.TableExcepts)...)
	}

	for i, fk := range c.ForeignKeys.UniqueKeyBased {
		prefix := fmt.Sprintf("foreignKeys.uniqueKeyBased[%d]", i)
		if fk.Name == "" || fk.LocalTable == "" || fk.ForeignTable == "" {
			problems = append(problems, prefix+": name, localTable and foreignTable are required")
		}
		if len(fk.LocalColumns) == 0 || len(fk.LocalColumns) != len(fk.ForeignColumns) {
			problems = append(problems, prefix+": localColumns and foreignColumns must pair up")
		}
	}

	switch c.Procedure.SynonymHandling {
	case SynonymNone, SynonymInclude, SynonymSwitch:
	default:
		problems = append(problems, fmt.Sprintf("procedure.synonymHandling %q is not one of none, include, switch", c.Procedure.SynonymHandling))
	}
	problems = append(problems, badHints("procedure.catalogTargets", c.Procedure.CatalogTargets)...)
	problems = append(problems, badHints("procedure.schemaTargets", c.Procedure.SchemaTargets)...)
	problems = append(problems, badHints("procedure.nameTargets", c.Procedure.NameTargets)...)
	problems = append(problems, badHints("procedure.nameExcepts", c.Procedure.NameExcepts)...)
	for i, l := range c.Procedure.DBLinks {
		if l.Procedure == "" || l.DBLink == "" {
			problems = append(problems, fmt.Sprintf("procedure.dbLinks[%d]: procedure and dbLink are required", i))
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) == 0 {
		return nil
	}
	return notice.New("The configuration is invalid.").
		WithAdvice("Fix the settings below in the config file and run again.").
		With("Problems", problems...)
}

func badHints(field string, hints []string) []string {
	var out []string
	for _, h := range hint.Validate(hints) {
		out = append(out, fmt.Sprintf("%s: bad pattern %q", field, h))
	}
	return out
}
