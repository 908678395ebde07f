// Package pserr defines the diagnostics produced while checking parameter
// specifications. Every violation is reported as a Diagnostic carrying its
// Kind and source span; none of them is fatal to a checking run.
package pserr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind defines the category of a diagnostic.
type Kind string

const (
	InvalidParamSpecContext Kind = "InvalidParamSpecContext"
	ConcatenateNotAllowed   Kind = "ConcatenateNotAllowed"
	ArityMismatch           Kind = "ArityMismatch"
	ArityTooSmall           Kind = "ArityTooSmall"
	ArgumentTypeMismatch    Kind = "ArgumentTypeMismatch"
	InconsistentBinding     Kind = "InconsistentBinding"
	InvalidShape            Kind = "InvalidShape"

	OutOfScope                   Kind = "OutOfScope"
	MisplacedComponent           Kind = "MisplacedComponent"
	ComponentsMustBeUsedTogether Kind = "ComponentsMustBeUsedTogether"
	OriginMismatch               Kind = "OriginMismatch"

	TooManyPositionalArguments Kind = "TooManyPositionalArguments"
	UnexpectedKeywordArgument  Kind = "UnexpectedKeywordArgument"
	MissingRequiredArgument    Kind = "MissingRequiredArgument"

	SyntaxError        Kind = "SyntaxError"
	InvalidTypeForm    Kind = "InvalidTypeForm"
	UnknownName        Kind = "UnknownName"
	UnknownAttribute   Kind = "UnknownAttribute"
	NotCallable        Kind = "NotCallable"
	BadAssignment      Kind = "BadAssignment"
	BadReturn          Kind = "BadReturn"
	AssertTypeMismatch Kind = "AssertTypeMismatch"
	RevealedType       Kind = "RevealedType"
)

var kinds = []Kind{
	InvalidParamSpecContext, ConcatenateNotAllowed, ArityMismatch, ArityTooSmall,
	ArgumentTypeMismatch, InconsistentBinding, InvalidShape,
	OutOfScope, MisplacedComponent, ComponentsMustBeUsedTogether, OriginMismatch,
	TooManyPositionalArguments, UnexpectedKeywordArgument, MissingRequiredArgument,
	SyntaxError, InvalidTypeForm, UnknownName, UnknownAttribute, NotCallable,
	BadAssignment, BadReturn, AssertTypeMismatch, RevealedType,
}

// ParseKind looks up a kind by its name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range kinds {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

// Severity separates real errors from informational output such as
// reveal_type results.
type Severity int

const (
	SeverityError Severity = iota
	SeverityInfo
)

func (s Severity) String() string {
	if s == SeverityInfo {
		return "info"
	}
	return "error"
}

// Severity reports how a diagnostic of this kind is classified.
func (k Kind) Severity() Severity {
	if k == RevealedType {
		return SeverityInfo
	}
	return SeverityError
}

// Span is a source position. A zero Line means the position is unknown.
type Span struct {
	File   string
	Line   int
	Column int
}

func (s Span) IsZero() bool {
	return s.Line == 0
}

func (s Span) String() string {
	if s.Line == 0 {
		return s.File
	}
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return fmt.Sprintf("line %d:%d", s.Line, s.Column)
}

// Diagnostic is a single reported violation.
type Diagnostic struct {
	Kind Kind
	Span Span
	Msg  string
}

func (d *Diagnostic) Error() string {
	if d.Span.IsZero() {
		return fmt.Sprintf("[%s] %s", d.Kind, d.Msg)
	}
	return fmt.Sprintf("[%s] %s %s", d.Kind, d.Span, d.Msg)
}

// Severity is a shortcut for d.Kind.Severity().
func (d *Diagnostic) Severity() Severity {
	return d.Kind.Severity()
}

// WithSpan returns a copy of d positioned at span. A diagnostic that already
// has a position keeps it.
func (d *Diagnostic) WithSpan(span Span) *Diagnostic {
	cp := *d
	if cp.Span.IsZero() {
		cp.Span = span
	}
	return &cp
}

// New creates a diagnostic without a position. Callers that know the source
// span attach it later with WithSpan.
func New(kind Kind, msg string) *Diagnostic {
	return &Diagnostic{Kind: kind, Msg: msg}
}

// Newf is New with fmt formatting.
func Newf(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At creates a positioned diagnostic.
func At(span Span, kind Kind, msg string) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Msg: msg}
}

// KindOf extracts the diagnostic kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind, true
	}
	return "", false
}

// List collects the diagnostics of one checking run.
type List struct {
	Items []*Diagnostic
}

// Add appends diagnostics, skipping nils.
func (l *List) Add(ds ...*Diagnostic) {
	for _, d := range ds {
		if d != nil {
			l.Items = append(l.Items, d)
		}
	}
}

// Addf appends a positioned diagnostic built with fmt formatting.
func (l *List) Addf(span Span, kind Kind, format string, args ...any) {
	l.Items = append(l.Items, &Diagnostic{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)})
}

func (l *List) Len() int {
	return len(l.Items)
}

// Errors returns only the diagnostics with error severity.
func (l *List) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range l.Items {
		if d.Severity() == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (l *List) HasErrors() bool {
	for _, d := range l.Items {
		if d.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by position, keeping the emission order of
// diagnostics reported at the same span.
func (l *List) Sort() {
	sort.SliceStable(l.Items, func(i, j int) bool {
		a, b := l.Items[i].Span, l.Items[j].Span
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

func (l *List) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(l.Items)))
	for _, d := range l.Items {
		sb.WriteString(fmt.Sprintf("- %v\n", d))
	}
	return sb.String()
}

// Err returns l as an error when it holds at least one error-severity
// diagnostic, and nil otherwise.
func (l *List) Err() error {
	if l.HasErrors() {
		return l
	}
	return nil
}
