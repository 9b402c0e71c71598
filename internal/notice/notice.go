// Package notice builds the operator-facing message of fatal extraction errors.
//
// A notice error is meant for a human fixing configuration: it states what went
// wrong, what to do about it, and the context the failure happened in.
package notice

import (
	"strings"
)

// Item is one context section of a notice message.
type Item struct {
	Title  string
	Values []string
}

// Error is a fatal error carrying notice, advice and context sections.
type Error struct {
	Notice string
	Advice []string
	Items  []Item
	Cause  error
}

// New creates a notice error with the given headline.
func New(notice string) *Error {
	return &Error{Notice: notice}
}

// WithAdvice appends advice lines.
func (e *Error) WithAdvice(lines ...string) *Error {
	e.Advice = append(e.Advice, lines...)
	return e
}

// With appends a context section. Empty values are kept so the reader can see
// that the value was actually blank.
func (e *Error) With(title string, values ...string) *Error {
	e.Items = append(e.Items, Item{Title: title, Values: values})
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Value returns the first value of the named context section.
func (e *Error) Value(title string) (string, bool) {
	for _, it := range e.Items {
		if it.Title == title && len(it.Values) > 0 {
			return it.Values[0], true
		}
	}
	return "", false
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("Look! Read the message below.\n")
	b.WriteString("/* * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * *\n")
	b.WriteString(e.Notice)
	b.WriteString("\n")
	if len(e.Advice) > 0 {
		b.WriteString("\n[Advice]\n")
		for _, line := range e.Advice {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	for _, it := range e.Items {
		b.WriteString("\n[")
		b.WriteString(it.Title)
		b.WriteString("]\n")
		for _, v := range it.Values {
			b.WriteString(v)
			b.WriteString("\n")
		}
	}
	if e.Cause != nil {
		b.WriteString("\n[Cause]\n")
		b.WriteString(e.Cause.Error())
		b.WriteString("\n")
	}
	b.WriteString("* * * * * * * * * */")
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}
