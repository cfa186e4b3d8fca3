package points

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// totalsKey carries the finished totals out of one parse.
var totalsKey = parser.NewContextKey()

// TotalsFor returns the totals computed during the parse that used pc, or
// nil if the transform has not run. Available even when the document has
// no placeholder.
func TotalsFor(pc parser.Context) *Totals {
	if v := pc.Get(totalsKey); v != nil {
		if t, ok := v.(*Totals); ok {
			return t
		}
	}
	return nil
}

// totalsTransformer is the single authoritative pass that accumulates
// totals and finalizes display text. goldmark runs AST transformers once
// per parse, after the tree is fully assembled, which is exactly the
// invocation contract this pass needs.
type totalsTransformer struct{}

func (t *totalsTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	totals := NewTotals()

	// Annotations first: accumulate in document order, render each in place.
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if a, ok := n.(*Annotation); ok {
			totals.Add(a.Value, a.Category)
			a.Rendered = AnnotationText(a.Value, a.Category)
		}
		return ast.WalkContinue, nil
	})

	// Placeholders second: every one sees the same document-wide totals,
	// each with its own copy attached.
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if r, ok := n.(*ReportPlaceholder); ok {
			r.Totals = totals.Clone()
			r.Summary = SummaryText(totals)
		}
		return ast.WalkContinue, nil
	})

	pc.Set(totalsKey, totals)
}
