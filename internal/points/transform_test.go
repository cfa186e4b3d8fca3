package points

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
)

// convert runs one full parse+render with a fresh context and collector.
func convert(t *testing.T, src string, opts ...Option) (string, *Totals, *Collector) {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(New(opts...)))
	pc := parser.NewContext()
	col := NewCollector()
	WithDiagnostics(pc, col)
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf, parser.WithContext(pc)); err != nil {
		t.Fatalf("convert: %v", err)
	}
	return buf.String(), TotalsFor(pc), col
}

func TestTransform_WorksheetReport(t *testing.T) {
	src := "Task one. {points}`2`\n\nTask two. {points}`2 bonus`\n\nTask three. {points}`1`\n\n{points-total}\n"
	html, totals, col := convert(t, src)

	if totals.Grand() != 5 {
		t.Errorf("expected grand total 5, got %d", totals.Grand())
	}
	if sum, ok := totals.Category("bonus"); !ok || sum != 2 {
		t.Errorf("expected bonus sum 2, got %d (ok=%v)", sum, ok)
	}
	want := `<p class="points-total"><strong>Total Points:</strong> 5 (+ 2 bonus points)</p>`
	if !strings.Contains(html, want) {
		t.Errorf("expected report %q in output, got:\n%s", want, html)
	}
	if len(col.All()) != 0 {
		t.Errorf("expected no diagnostics, got %v", col.All())
	}
}

func TestTransform_AnnotationDisplayText(t *testing.T) {
	src := "One. {points}`1`\n\nTwo. {points}`2`\n\nBonus. {points}`2 bonus`\n"
	html, _, _ := convert(t, src)

	for _, want := range []string{
		`<span class="points">(1 point)</span>`,
		`<span class="points">(2 points)</span>`,
		`<span class="points">(2 bonus points)</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output, got:\n%s", want, html)
		}
	}
}

func TestTransform_ZeroAnnotations(t *testing.T) {
	html, totals, col := convert(t, "Nothing to grade here.\n\n{points-total}\n")

	if totals.Grand() != 0 {
		t.Errorf("expected grand total 0, got %d", totals.Grand())
	}
	want := `<p class="points-total"><strong>Total Points:</strong> 0</p>`
	if !strings.Contains(html, want) {
		t.Errorf("expected bare zero report in output, got:\n%s", html)
	}
	if strings.Contains(html, "0 (") {
		t.Errorf("expected no parenthesized list for empty totals, got:\n%s", html)
	}
	if len(col.All()) != 0 {
		t.Errorf("expected no diagnostics, got %v", col.All())
	}
}

func TestTransform_TwoPlaceholdersRenderIdentically(t *testing.T) {
	src := "{points-total}\n\nTask. {points}`3 bonus`\n\n{points-total}\n"
	html, _, _ := convert(t, src)

	want := `<p class="points-total"><strong>Total Points:</strong> 3 (+ 3 bonus points)</p>`
	if got := strings.Count(html, want); got != 2 {
		t.Errorf("expected 2 identical reports, found %d in:\n%s", got, html)
	}
}

func TestTransform_CategoryOrderIsFirstEncounter(t *testing.T) {
	src := "A. {points}`1 extra`\n\nB. {points}`9 bonus`\n\nC. {points}`4 extra`\n\n{points-total}\n"
	html, _, _ := convert(t, src)

	want := `<strong>Total Points:</strong> 14 (+ 5 extra points, + 9 bonus points)`
	if !strings.Contains(html, want) {
		t.Errorf("expected first-encounter category order, got:\n%s", html)
	}
}

func TestTransform_ParseErrorOmitsAnnotation(t *testing.T) {
	src := "Broken. {points}`abc`\n\n{points-total}\n"
	html, totals, col := convert(t, src)

	if strings.Contains(html, `<span class="points">`) {
		t.Errorf("expected no annotation span, got:\n%s", html)
	}
	if strings.Contains(html, "{points}") {
		t.Errorf("expected the broken markup to be consumed, got:\n%s", html)
	}
	if totals.Grand() != 0 {
		t.Errorf("expected grand total 0, got %d", totals.Grand())
	}
	errs := col.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d: %v", len(errs), col.All())
	}
	if errs[0].Kind != DiagParseError {
		t.Errorf("expected kind %q, got %q", DiagParseError, errs[0].Kind)
	}
	if !strings.Contains(errs[0].Message, "abc") {
		t.Errorf("expected offending text in message, got %q", errs[0].Message)
	}
}

func TestTransform_UnknownCategoryWarns(t *testing.T) {
	src := "Task. {points}`2 xyz`\n\n{points-total}\n"
	html, totals, col := convert(t, src)

	warns := col.Warnings()
	if len(warns) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warns), col.All())
	}
	if warns[0].Kind != DiagUnknownCategory {
		t.Errorf("expected kind %q, got %q", DiagUnknownCategory, warns[0].Kind)
	}
	if sum, ok := totals.Category("xyz"); !ok || sum != 2 {
		t.Errorf("expected xyz sum 2 despite warning, got %d (ok=%v)", sum, ok)
	}
	if !strings.Contains(html, "(2 xyz points)") {
		t.Errorf("expected verbatim label in rendered text, got:\n%s", html)
	}
}

func TestTransform_CustomRecognizedCategories(t *testing.T) {
	src := "Task. {points}`2 bonus`\n"
	_, _, col := convert(t, src, WithRecognizedCategories("participation"))

	if len(col.Warnings()) != 1 {
		t.Errorf("expected warning once %q is no longer recognized, got %v", "bonus", col.All())
	}
}

func TestTransform_TotalsAvailableWithoutPlaceholder(t *testing.T) {
	_, totals, _ := convert(t, "Task. {points}`4`\n")

	if totals == nil {
		t.Fatal("expected totals in context even without a placeholder")
	}
	if totals.Grand() != 4 {
		t.Errorf("expected grand total 4, got %d", totals.Grand())
	}
}

func TestPlaceholder_InterruptsParagraph(t *testing.T) {
	html, _, _ := convert(t, "Some text\n{points-total}\n")

	if !strings.Contains(html, `class="points-total"`) {
		t.Errorf("expected placeholder to interrupt the paragraph, got:\n%s", html)
	}
}

func TestPlaceholder_RejectsTrailingText(t *testing.T) {
	html, _, _ := convert(t, "{points-total} please\n")

	if strings.Contains(html, `class="points-total"`) {
		t.Errorf("expected no placeholder for a line with trailing text, got:\n%s", html)
	}
	if !strings.Contains(html, "{points-total} please") {
		t.Errorf("expected the line to stay literal paragraph text, got:\n%s", html)
	}
}

func TestAnnotation_UnclosedBacktickStaysLiteral(t *testing.T) {
	html, totals, col := convert(t, "Task. {points}`2\n")

	if totals.Grand() != 0 {
		t.Errorf("expected no annotation parsed, grand total %d", totals.Grand())
	}
	if len(col.All()) != 0 {
		t.Errorf("expected no diagnostics for unmatched syntax, got %v", col.All())
	}
	if !strings.Contains(html, "{points}") {
		t.Errorf("expected literal markup in output, got:\n%s", html)
	}
}
