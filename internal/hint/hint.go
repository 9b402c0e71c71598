// Package hint decides whether a named database object is targeted by
// include and exclude hint lists.
//
// A hint is one of:
//
//	EMP           exact match
//	EMP*          prefix match (also "prefix:EMP")
//	*_HIST        suffix match (also "suffix:_HIST")
//	*TMP*         contains match (also "contain:TMP")
//	pattern:^X.+  regular expression
//
// Any hint may be negated with a leading "!". Matching ignores case.
package hint

import (
	"regexp"
	"strings"
)

const (
	prefixMark  = "prefix:"
	suffixMark  = "suffix:"
	containMark = "contain:"
	patternMark = "pattern:"
	negateMark  = "!"
	wildcard    = "*"
)

// IsHit reports whether name matches a single hint.
func IsHit(name, hint string) bool {
	hint = strings.TrimSpace(hint)
	if strings.HasPrefix(hint, negateMark) {
		return !IsHit(name, hint[len(negateMark):])
	}
	lname := strings.ToLower(name)
	switch {
	case hasMark(hint, prefixMark):
		return strings.HasPrefix(lname, strings.ToLower(hint[len(prefixMark):]))
	case hasMark(hint, suffixMark):
		return strings.HasSuffix(lname, strings.ToLower(hint[len(suffixMark):]))
	case hasMark(hint, containMark):
		return strings.Contains(lname, strings.ToLower(hint[len(containMark):]))
	case hasMark(hint, patternMark):
		re, err := regexp.Compile("(?i)" + hint[len(patternMark):])
		if err != nil {
			return false
		}
		return re.MatchString(name)
	}
	return matchGlob(lname, strings.ToLower(hint))
}

func hasMark(hint, mark string) bool {
	return len(hint) >= len(mark) && strings.EqualFold(hint[:len(mark)], mark)
}

func matchGlob(name, pattern string) bool {
	if pattern == wildcard {
		return true
	}
	if len(pattern) > 2 && strings.HasPrefix(pattern, wildcard) && strings.HasSuffix(pattern, wildcard) {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}
	if strings.HasSuffix(pattern, wildcard) {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}
	if strings.HasPrefix(pattern, wildcard) {
		return strings.HasSuffix(name, pattern[1:])
	}
	return name == pattern
}

// IsHitAny reports whether name matches at least one of the hints.
func IsHitAny(name string, hints []string) bool {
	for _, h := range hints {
		if IsHit(name, h) {
			return true
		}
	}
	return false
}

// IsTarget reports whether name is targeted: it must not match any exclude
// hint, and must match an include hint unless the include list is empty.
func IsTarget(name string, includes, excludes []string) bool {
	if IsHitAny(name, excludes) {
		return false
	}
	if len(includes) == 0 {
		return true
	}
	return IsHitAny(name, includes)
}

// Validate returns the hints that cannot be evaluated (bad regular expressions).
func Validate(hints []string) []string {
	var bad []string
	for _, h := range hints {
		raw := strings.TrimPrefix(strings.TrimSpace(h), negateMark)
		if hasMark(raw, patternMark) {
			if _, err := regexp.Compile(raw[len(patternMark):]); err != nil {
				bad = append(bad, h)
			}
		}
	}
	return bad
}
