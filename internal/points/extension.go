// Package points is a goldmark extension for inline point annotations in
// worksheets. It parses {points}`<value> [<category>]` roles and
// {points-total} report lines, accumulates per-category totals in a single
// post-parse transform, and renders the final display text. Diagnostics go
// to an explicit collector registered in the parser context, never to a log.
package points

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DefaultCategories are the labels accepted without a warning.
var DefaultCategories = []string{"bonus", "extra", "challenge"}

// Option configures the extension.
type Option func(*Extension)

// WithRecognizedCategories replaces the recognized category set. Unrecognized
// labels still count toward totals; they just draw a warning diagnostic.
func WithRecognizedCategories(names ...string) Option {
	return func(e *Extension) {
		e.categories = make(map[string]bool, len(names))
		for _, n := range names {
			e.categories[n] = true
		}
	}
}

// Extension wires the annotation parser, the report placeholder parser, the
// totals transform, and the HTML renderer into a goldmark.Markdown.
type Extension struct {
	categories map[string]bool
}

// New returns the extension with the default recognized categories.
func New(opts ...Option) *Extension {
	e := &Extension{}
	WithRecognizedCategories(DefaultCategories...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extension) recognized(category string) bool {
	return e.categories[category]
}

func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(&annotationParser{ext: e}, 150)),
		parser.WithBlockParsers(util.Prioritized(&reportBlockParser{}, 450)),
		parser.WithASTTransformers(util.Prioritized(&totalsTransformer{}, 200)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&htmlRenderer{}, 500)),
	)
}
