// Package checkfile reads checked modules from YAML fixture files and
// compares the diagnostics a check produced with the ones each item expects.
//
// A fixture is a mapping with an optional name and a body. Every body item is
// either a plain string holding one statement, or a mapping with exactly one
// of stmt, def or class, an optional nested body and an optional expect list:
//
//	name: twice
//	body:
//	  - P = ParamSpec("P")
//	  - def: "twice(f: Callable[P, int], *args: P.args, **kwargs: P.kwargs) -> int"
//	    body:
//	      - return f(*args, **kwargs)
//	  - stmt: twice(a_int_b_str, "A", 1)
//	    expect:
//	      - "ArgumentTypeMismatch: `Literal['A']` is not assignable to parameter `a`"
//
// An expectation is a diagnostic kind, optionally followed by ": " and a
// fragment of the message.
package checkfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"martianoff/pspec/pserr"
)

// ItemKind is the syntactic form of a body item.
type ItemKind int

const (
	Stmt ItemKind = iota
	Def
	Class
)

func (k ItemKind) String() string {
	switch k {
	case Def:
		return "def"
	case Class:
		return "class"
	}
	return "stmt"
}

// Expectation is one diagnostic an item must produce.
type Expectation struct {
	Kind     pserr.Kind
	Fragment string
}

func (e Expectation) String() string {
	if e.Fragment == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Fragment
}

// Item is one statement, function or class of a module.
type Item struct {
	Kind   ItemKind
	Source string
	// Line and Column locate the first character of Source in the file.
	Line   int
	Column int
	Body   []*Item
	Expect []Expectation
}

// File is a parsed fixture.
type File struct {
	Path string
	Name string
	Body []*Item
}

// Load reads and parses a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses fixture content. The path is recorded on the file and used
// in error messages.
func Parse(data []byte, path string) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f := &File{Path: path}
	if len(root.Content) == 0 {
		return f, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: expected a mapping at the top level", path, doc.Line)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "name":
			f.Name = value.Value
		case "body":
			items, err := parseItems(value, path)
			if err != nil {
				return nil, err
			}
			f.Body = items
		default:
			return nil, fmt.Errorf("%s:%d: unknown key %q", path, key.Line, key.Value)
		}
	}
	return f, nil
}

func parseItems(seq *yaml.Node, path string) ([]*Item, error) {
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s:%d: body must be a list", path, seq.Line)
	}
	items := make([]*Item, 0, len(seq.Content))
	for _, n := range seq.Content {
		item, err := parseItem(n, path)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItem(n *yaml.Node, path string) (*Item, error) {
	if n.Kind == yaml.ScalarNode {
		return sourceItem(Stmt, n), nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: expected a statement or a mapping", path, n.Line)
	}
	var item *Item
	var body, expect *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		var kind ItemKind
		switch key.Value {
		case "stmt":
			kind = Stmt
		case "def":
			kind = Def
		case "class":
			kind = Class
		case "body":
			body = value
			continue
		case "expect":
			expect = value
			continue
		default:
			return nil, fmt.Errorf("%s:%d: unknown key %q", path, key.Line, key.Value)
		}
		if item != nil {
			return nil, fmt.Errorf("%s:%d: an item holds exactly one of stmt, def or class", path, key.Line)
		}
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s:%d: %s must be a string", path, value.Line, key.Value)
		}
		item = sourceItem(kind, value)
	}
	if item == nil {
		return nil, fmt.Errorf("%s:%d: an item needs one of stmt, def or class", path, n.Line)
	}
	if body != nil {
		if item.Kind == Stmt {
			return nil, fmt.Errorf("%s:%d: only def and class items have a body", path, body.Line)
		}
		items, err := parseItems(body, path)
		if err != nil {
			return nil, err
		}
		item.Body = items
	}
	if expect != nil {
		exps, err := parseExpect(expect, path)
		if err != nil {
			return nil, err
		}
		item.Expect = exps
	}
	return item, nil
}

// sourceItem places the item at the first character of the scalar's text,
// past an opening quote.
func sourceItem(kind ItemKind, n *yaml.Node) *Item {
	col := n.Column
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		col++
	}
	return &Item{Kind: kind, Source: n.Value, Line: n.Line, Column: col}
}

func parseExpect(n *yaml.Node, path string) ([]Expectation, error) {
	var values []*yaml.Node
	switch n.Kind {
	case yaml.ScalarNode:
		values = []*yaml.Node{n}
	case yaml.SequenceNode:
		values = n.Content
	default:
		return nil, fmt.Errorf("%s:%d: expect must be a string or a list", path, n.Line)
	}
	out := make([]Expectation, 0, len(values))
	for _, v := range values {
		e, err := ParseExpectation(v.Value)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, v.Line, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseExpectation parses "Kind" or "Kind: fragment".
func ParseExpectation(s string) (Expectation, error) {
	name, fragment, _ := strings.Cut(s, ":")
	kind, ok := pserr.ParseKind(strings.TrimSpace(name))
	if !ok {
		return Expectation{}, fmt.Errorf("unknown diagnostic kind %q", strings.TrimSpace(name))
	}
	return Expectation{Kind: kind, Fragment: strings.TrimSpace(fragment)}, nil
}

// Walk calls fn for every item of the file, parents before children.
func (f *File) Walk(fn func(*Item)) {
	var walk func([]*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			fn(it)
			walk(it.Body)
		}
	}
	walk(f.Body)
}
