// Package checker drives the checking of one module. It walks the items of
// a parsed fixture, declares the names they introduce and types every
// statement, solving each call through the infer and matcher packages.
package checker

import (
	"errors"

	"martianoff/pspec/internal/analyzer"
	"martianoff/pspec/internal/checkfile"
	"martianoff/pspec/internal/infer"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// Checker holds the state of checking one file. ParamSpec variables live in
// its arena for the whole run.
type Checker struct {
	path    string
	arena   *types.Arena
	inf     *infer.Inferer
	diags   *pserr.List
	classes map[string]*analyzer.ClassInfo
}

func New(path string) *Checker {
	c := &Checker{
		path:    path,
		arena:   types.NewArena(),
		diags:   &pserr.List{},
		classes: make(map[string]*analyzer.ClassInfo),
	}
	c.inf = infer.NewInferer(c.arena)
	c.inf.Constructor = c.constructor
	return c
}

// Check checks every item of f and returns the diagnostics sorted by
// position.
func Check(f *checkfile.File) *pserr.List {
	c := New(f.Path)
	c.Module(f.Body)
	c.diags.Sort()
	return c.diags
}

// Module checks items as the top level of a module.
func (c *Checker) Module(items []*checkfile.Item) {
	c.items(items, analyzer.NewModuleScope(), nil)
}

func (c *Checker) constructor(co *types.ClassObject) (*types.Callable, bool) {
	info, ok := c.classes[co.Name]
	if !ok {
		return nil, false
	}
	return info.Constructor(), true
}

// locator maps positions inside an item's source to file spans.
func (c *Checker) locator(it *checkfile.Item) analyzer.Locator {
	return func(p syntax.Pos) pserr.Span {
		return pserr.Span{File: c.path, Line: it.Line + p.Line - 1, Column: it.Column + p.Col - 1}
	}
}

// items checks a block. class is the class whose body the block is, nil
// for modules and function bodies.
func (c *Checker) items(items []*checkfile.Item, scope *analyzer.Scope, class *analyzer.ClassInfo) {
	for _, it := range items {
		at := c.locator(it)
		switch it.Kind {
		case checkfile.Def:
			d, err := syntax.ParseDef(it.Source)
			if err != nil {
				c.syntaxError(err, at)
				continue
			}
			c.def(d, it.Body, scope, class, at)
		case checkfile.Class:
			cl, err := syntax.ParseClass(it.Source)
			if err != nil {
				c.syntaxError(err, at)
				continue
			}
			c.class(cl, it.Body, scope, at)
		default:
			st, err := syntax.ParseStatement(it.Source)
			if err != nil {
				c.syntaxError(err, at)
				continue
			}
			c.stmt(st, scope, class, at)
		}
	}
}

// syntaxError re-bases a parser position, relative to the item source, onto
// the fixture file.
func (c *Checker) syntaxError(err error, at analyzer.Locator) {
	var d *pserr.Diagnostic
	if !errors.As(err, &d) {
		c.diags.Add(pserr.At(at(syntax.Pos{Line: 1, Col: 1}), pserr.SyntaxError, err.Error()))
		return
	}
	cp := *d
	cp.Span = at(syntax.Pos{Line: d.Span.Line, Col: d.Span.Column})
	c.diags.Add(&cp)
}

func (c *Checker) def(d *syntax.Def, body []*checkfile.Item, scope *analyzer.Scope, class *analyzer.ClassInfo, at analyzer.Locator) {
	sig := analyzer.LowerDef(d, scope, c.arena, at, c.diags, class)
	switch {
	case class == nil:
		scope.Define(d.Name, &analyzer.Symbol{Kind: analyzer.SymValue, Type: sig.Callable})
	case d.Name == "__init__":
		class.Init = analyzer.DropFirst(sig.Callable)
	default:
		class.Methods[d.Name] = analyzer.DropFirst(sig.Callable)
	}
	c.items(body, sig.Scope, nil)
}

func (c *Checker) class(cl *syntax.Class, body []*checkfile.Item, scope *analyzer.Scope, at analyzer.Locator) {
	info, cs := analyzer.LowerClass(cl, scope, c.arena, at, c.diags)
	scope.Define(cl.Name, &analyzer.Symbol{Kind: analyzer.SymClass, Class: info})
	c.classes[info.Name] = info
	c.items(body, cs, info)
}
