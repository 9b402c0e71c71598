// Package extractor turns raw database metadata into the schema model:
// tables, columns, primary and unique keys, indexes and foreign keys.
//
// Drivers disagree about identifier case, key ordering and duplicate rows.
// The extractors reconcile them so that two runs against the same schema
// produce the same model.
package extractor

import (
	"log/slog"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/target"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

// Extractor reads the basic metadata of one data source.
type Extractor struct {
	meta   dbmeta.MetaData
	policy *target.Policy
	mapper *typemap.Mapper
	ukFKs  *UniqueKeyFKCache
	log    *slog.Logger
}

// New creates an extractor. mapper and ukFKs are optional; without a cache
// no unique-key based foreign keys are merged.
func New(meta dbmeta.MetaData, policy *target.Policy, mapper *typemap.Mapper, ukFKs *UniqueKeyFKCache, log *slog.Logger) *Extractor {
	if log == nil {
		log = logging.Discard()
	}
	return &Extractor{meta: meta, policy: policy, mapper: mapper, ukFKs: ukFKs, log: log}
}

func (x *Extractor) engine() dbmeta.Engine { return x.meta.Engine() }

// retryNames returns the spellings tried after the literal table name found
// nothing: lower case, then upper case. Names already in a single case are
// not retried.
func retryNames(name string) []string {
	lower, upper := strings.ToLower(name), strings.ToUpper(name)
	if name == lower || name == upper {
		return nil
	}
	return []string{lower, upper}
}

// fetchWithRetry runs fetch with the literal name and then with the retry
// names until one finds rows. An error of the literal attempt is returned;
// a retry attempt that fails counts as not found.
func fetchWithRetry[T any](x *Extractor, op, table string, fetch func(name string) ([]T, error)) ([]T, error) {
	rows, err := fetch(table)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}
	for _, name := range retryNames(table) {
		rows, err := fetch(name)
		res := dbmeta.Classify(x.engine(), rows, err)
		switch res.State {
		case dbmeta.LookupFound:
			x.log.Debug("found by case retry", "op", op, "table", table, "name", name)
			return res.Rows, nil
		case dbmeta.LookupFailed:
			x.log.Warn("case retry failed, treated as not found", "op", op, "table", name, "error", res.Err)
		}
	}
	return nil, nil
}

// keyColumnExceptedError is the configuration error of a key column that is
// also column-excepted.
func keyColumnExceptedError(kind string, us schema.UnifiedSchema, table, column, constraint string) error {
	return notice.New("The "+kind+" column is excepted by the column-except setting.").
		WithAdvice(
			"Key columns cannot be excepted, the relationships would be broken.",
			"Remove the column from columnExcepts, or except the whole table.",
		).
		With("Table", us.Qualify(table)).
		With("Column", column).
		With("Constraint", constraint).
		With("Property", "columnExcepts")
}
