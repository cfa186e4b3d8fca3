package points

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
)

// KindAnnotation identifies inline point annotation nodes.
var KindAnnotation = ast.NewNodeKind("PointsAnnotation")

// KindReportPlaceholder identifies block totals-report nodes.
var KindReportPlaceholder = ast.NewNodeKind("PointsReport")

// Annotation is one marked point value, e.g. {points}`2 bonus`.
// Value and Category are set by the inline parser; Rendered stays empty
// until the totals transform fills in the final display text.
type Annotation struct {
	ast.BaseInline

	Value    int
	Category string
	Rendered string
}

// NewAnnotation returns an annotation for the given value and optional category.
func NewAnnotation(value int, category string) *Annotation {
	return &Annotation{Value: value, Category: category}
}

func (n *Annotation) Kind() ast.NodeKind {
	return KindAnnotation
}

func (n *Annotation) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Value":    strconv.Itoa(n.Value),
		"Category": n.Category,
	}, nil)
}

// ReportPlaceholder marks where a totals report renders. The parser creates
// it empty; the totals transform attaches Totals and the summary text.
type ReportPlaceholder struct {
	ast.BaseBlock

	Totals  *Totals
	Summary string
}

// NewReportPlaceholder returns an unresolved report placeholder.
func NewReportPlaceholder() *ReportPlaceholder {
	return &ReportPlaceholder{}
}

func (n *ReportPlaceholder) Kind() ast.NodeKind {
	return KindReportPlaceholder
}

func (n *ReportPlaceholder) Dump(source []byte, level int) {
	kv := map[string]string{"Summary": n.Summary}
	if n.Totals != nil {
		kv["Grand"] = strconv.Itoa(n.Totals.Grand())
	}
	ast.DumpHelper(n, source, level, kv, nil)
}
