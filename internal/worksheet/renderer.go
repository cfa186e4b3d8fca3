package worksheet

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/myst-ext/myst-ext-points/internal/points"
)

// Result is one rendered worksheet.
type Result struct {
	Title       string
	HTML        []byte
	Totals      *points.Totals
	Diagnostics []points.Diagnostic
}

// Hash returns the content hash used for worksheet identity and dedup.
func Hash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Renderer converts worksheet Markdown to HTML with point totals. The
// goldmark instance is built once and shared; per-render state flows
// through a fresh parser context on every call.
type Renderer struct {
	md    goldmark.Markdown
	stats *RenderStats
}

// NewRenderer builds a renderer. recognized overrides the default category
// set when non-empty; stats may be nil.
func NewRenderer(recognized []string, stats *RenderStats) *Renderer {
	var opts []points.Option
	if len(recognized) > 0 {
		opts = append(opts, points.WithRecognizedCategories(recognized...))
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, points.New(opts...)),
		),
		stats: stats,
	}
}

// Render parses and renders one worksheet.
func (r *Renderer) Render(src []byte) (*Result, error) {
	start := time.Now()
	pc := parser.NewContext()
	col := points.NewCollector()
	points.WithDiagnostics(pc, col)

	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render worksheet: %w", err)
	}

	res := &Result{
		Title:       documentTitle(doc, src),
		HTML:        buf.Bytes(),
		Totals:      points.TotalsFor(pc),
		Diagnostics: col.All(),
	}
	if r.stats != nil {
		r.stats.Record(time.Since(start), len(col.Errors()), len(col.Warnings()))
	}
	return res, nil
}

// documentTitle returns the text of the first level-1 heading, if any.
func documentTitle(doc ast.Node, src []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return strings.TrimSpace(inlineText(h, src))
		}
	}
	return ""
}

// inlineText collects the plain text of an inline subtree.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			continue
		}
		sb.WriteString(inlineText(c, src))
	}
	return sb.String()
}
