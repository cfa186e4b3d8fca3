package worksheet

import (
	"strings"
	"testing"

	"github.com/myst-ext/myst-ext-points/internal/points"
)

const sampleWorksheet = `# Week 3 Worksheet

## Warm-up

Solve for x. {points}` + "`2`" + `

## Main

Prove the lemma. {points}` + "`2 bonus`" + `

Sketch the graph. {points}` + "`1`" + `

{points-total}
`

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(nil, nil)
	res, err := r.Render([]byte(sampleWorksheet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Title != "Week 3 Worksheet" {
		t.Errorf("expected title %q, got %q", "Week 3 Worksheet", res.Title)
	}
	if res.Totals.Grand() != 5 {
		t.Errorf("expected grand total 5, got %d", res.Totals.Grand())
	}
	html := string(res.HTML)
	if !strings.Contains(html, "<strong>Total Points:</strong> 5 (+ 2 bonus points)") {
		t.Errorf("expected totals report in HTML, got:\n%s", html)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestRenderer_Diagnostics(t *testing.T) {
	r := NewRenderer(nil, nil)
	res, err := r.Render([]byte("Broken. {points}`abc`\n\nOdd. {points}`2 xyz`\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(res.Diagnostics), res.Diagnostics)
	}
	if res.Diagnostics[0].Severity != points.SeverityError {
		t.Errorf("expected first diagnostic to be the parse error, got %v", res.Diagnostics[0])
	}
	if res.Diagnostics[1].Kind != points.DiagUnknownCategory {
		t.Errorf("expected unknown-category warning, got %v", res.Diagnostics[1])
	}
	if res.Totals.Grand() != 2 {
		t.Errorf("expected grand total 2, got %d", res.Totals.Grand())
	}
}

func TestRenderer_NoTitle(t *testing.T) {
	r := NewRenderer(nil, nil)
	res, err := r.Render([]byte("No heading here. {points}`1`\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "" {
		t.Errorf("expected empty title, got %q", res.Title)
	}
}

func TestRenderer_CustomCategories(t *testing.T) {
	r := NewRenderer([]string{"participation"}, nil)
	res, err := r.Render([]byte("Task. {points}`2 bonus`\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != points.DiagUnknownCategory {
		t.Errorf("expected bonus to warn under a custom set, got %v", res.Diagnostics)
	}
}

func TestRenderer_GFMTables(t *testing.T) {
	r := NewRenderer(nil, nil)
	res, err := r.Render([]byte("| Task | Points |\n| --- | --- |\n| One | 2 |\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(res.HTML), "<table>") {
		t.Errorf("expected GFM table rendering, got:\n%s", res.HTML)
	}
}

func TestRenderer_RecordsStats(t *testing.T) {
	stats := NewRenderStats(0)
	r := NewRenderer(nil, stats)
	if _, err := r.Render([]byte("Broken. {points}`abc`\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := stats.Snapshot()
	if snap.Renders != 1 {
		t.Errorf("expected 1 render recorded, got %d", snap.Renders)
	}
	if snap.ParseErrors != 1 {
		t.Errorf("expected 1 parse error recorded, got %d", snap.ParseErrors)
	}
}

func TestHash_Deterministic(t *testing.T) {
	a := Hash([]byte("same content"))
	b := Hash([]byte("same content"))
	c := Hash([]byte("different content"))

	if a != b {
		t.Error("expected identical content to hash identically")
	}
	if a == c {
		t.Error("expected different content to hash differently")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
