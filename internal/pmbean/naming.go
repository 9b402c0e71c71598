package pmbean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const beanSuffix = "Pmb"

// sqlServerVersion is the ";1" suffix SQL Server drivers append to procedure names.
var sqlServerVersion = regexp.MustCompile(`;\d+$`)

// Camelize joins the words of a database name in upper camel case.
// Words are split at '_', '.', '@', '-' and spaces; an all upper case word
// is lowered first, mixed-case words keep their inner capitals.
func Camelize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '.' || r == '@' || r == '-' || unicode.IsSpace(r)
	})
	// a Caser keeps state, one per call
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		if w == strings.ToUpper(w) {
			w = strings.ToLower(w)
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// BaseName is the camel-cased procedure name used in generated names.
func BaseName(procedureName string) string {
	name := sqlServerVersion.ReplaceAllString(strings.TrimSpace(procedureName), "")
	name = strings.NewReplacer(".", "_", "@", "_").Replace(name)
	return Camelize(name)
}

// ClassName returns the parameter-bean class name of a procedure.
func ClassName(procedureName string) string {
	return BaseName(procedureName) + beanSuffix
}

// PropertyName returns the property name of a procedure column. The "@" of
// SQL Server parameter names is dropped.
func PropertyName(columnName string) string {
	return lowerFirst(Camelize(strings.TrimPrefix(strings.TrimSpace(columnName), "@")))
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
