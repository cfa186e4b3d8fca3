package points

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// ReportLabel opens every rendered totals report.
const ReportLabel = "Total Points:"

// AnnotationText renders one annotation, e.g. "(2 points)", "(1 point)",
// "(2 bonus points)". The plural suffix is dropped only when value is
// exactly 1.
func AnnotationText(value int, category string) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(strconv.Itoa(value))
	b.WriteByte(' ')
	if category != "" {
		b.WriteString(category)
		b.WriteByte(' ')
	}
	b.WriteString("point")
	if value != 1 {
		b.WriteByte('s')
	}
	b.WriteByte(')')
	return b.String()
}

// SummaryText renders the report body after the label: the grand total,
// then a parenthesized category list when any category exists. Entries
// are always plural and keep first-encounter order.
func SummaryText(t *Totals) string {
	grand := strconv.Itoa(t.Grand())
	if t.Len() == 0 {
		return grand
	}
	entries := make([]string, 0, t.Len())
	for _, ct := range t.Categories() {
		entries = append(entries, fmt.Sprintf("+ %d %s points", ct.Points, ct.Category))
	}
	return grand + " (" + strings.Join(entries, ", ") + ")"
}

// ReportText renders the full plain-text report line.
func ReportText(t *Totals) string {
	return ReportLabel + " " + SummaryText(t)
}

// htmlRenderer emits HTML for the two node kinds from the display text
// set by the totals transform.
type htmlRenderer struct{}

func (r *htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAnnotation, r.renderAnnotation)
	reg.Register(KindReportPlaceholder, r.renderReport)
}

func (r *htmlRenderer) renderAnnotation(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	a := node.(*Annotation)
	w.WriteString(`<span class="points">`)
	w.Write(util.EscapeHTML([]byte(a.Rendered)))
	w.WriteString(`</span>`)
	return ast.WalkContinue, nil
}

func (r *htmlRenderer) renderReport(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	p := node.(*ReportPlaceholder)
	w.WriteString(`<p class="points-total"><strong>`)
	w.WriteString(ReportLabel)
	w.WriteString(`</strong> `)
	w.Write(util.EscapeHTML([]byte(p.Summary)))
	w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}
