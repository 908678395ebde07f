package checkfile

import (
	"fmt"
	"strings"

	"martianoff/pspec/pserr"
)

// Mismatch is a difference between the expected and the produced
// diagnostics of a file.
type Mismatch struct {
	Span pserr.Span
	Msg  string
}

func (m Mismatch) String() string {
	return m.Span.String() + ": " + m.Msg
}

// Verify matches diagnostics against the expectations of the items on their
// lines. Every expectation must be met by a distinct diagnostic, and every
// diagnostic must be expected.
func Verify(f *File, diags []*pserr.Diagnostic) []Mismatch {
	byLine := make(map[int]*Item)
	f.Walk(func(it *Item) { byLine[it.Line] = it })

	produced := make(map[*Item][]*pserr.Diagnostic)
	var out []Mismatch
	for _, d := range diags {
		it, ok := byLine[d.Span.Line]
		if !ok {
			out = append(out, Mismatch{Span: d.Span, Msg: "unexpected " + describe(d)})
			continue
		}
		produced[it] = append(produced[it], d)
	}

	f.Walk(func(it *Item) {
		got := produced[it]
		used := make([]bool, len(got))
		span := pserr.Span{File: f.Path, Line: it.Line, Column: it.Column}
		for _, e := range it.Expect {
			found := false
			for i, d := range got {
				if !used[i] && d.Kind == e.Kind && strings.Contains(d.Msg, e.Fragment) {
					used[i] = true
					found = true
					break
				}
			}
			if !found {
				out = append(out, Mismatch{Span: span, Msg: fmt.Sprintf("missing %s", e)})
			}
		}
		for i, d := range got {
			if !used[i] {
				out = append(out, Mismatch{Span: d.Span, Msg: "unexpected " + describe(d)})
			}
		}
	})
	return out
}

func describe(d *pserr.Diagnostic) string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Msg)
}
