package importer

import (
	"strings"
	"testing"
)

func TestHTMLConverter_HeadingsAndContent(t *testing.T) {
	input := `<html><head><title>Geometry Quiz</title></head><body>
<h1>Geometry Quiz</h1>
<p>Answer every question.</p>
<h2>Triangles</h2>
<p>Find the missing angle. (2 points)</p>
<ul><li>Show your work. (1 bonus point)</li></ul>
<script>ignored()</script>
</body></html>`

	c := &HTMLConverter{}
	draft, err := c.Convert(strings.NewReader(input), "quiz.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.Title != "Geometry Quiz" {
		t.Errorf("expected title from <title>, got %q", draft.Title)
	}
	if draft.Rewrites != 2 {
		t.Errorf("expected 2 rewrites, got %d", draft.Rewrites)
	}

	md := string(draft.Markdown())
	if !strings.Contains(md, "# Geometry Quiz") {
		t.Errorf("expected h1 kept, got:\n%s", md)
	}
	if !strings.Contains(md, "## Triangles") {
		t.Errorf("expected h2 kept, got:\n%s", md)
	}
	if !strings.Contains(md, "Find the missing angle. {points}`2`") {
		t.Errorf("expected rewritten paragraph, got:\n%s", md)
	}
	if !strings.Contains(md, "Show your work. {points}`1 bonus`") {
		t.Errorf("expected rewritten list item, got:\n%s", md)
	}
	if strings.Contains(md, "ignored()") {
		t.Errorf("expected script content skipped, got:\n%s", md)
	}
	// The converted h1 supersedes the fallback title heading.
	if strings.Count(md, "# Geometry Quiz") != 1 {
		t.Errorf("expected a single h1, got:\n%s", md)
	}
}

func TestHTMLConverter_PlainBody(t *testing.T) {
	c := &HTMLConverter{}
	draft, err := c.Convert(strings.NewReader("<p>Just one task. (3 pts)</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Title != "page" {
		t.Errorf("expected filename title, got %q", draft.Title)
	}
	md := string(draft.Markdown())
	if !strings.Contains(md, "Just one task. {points}`3`") {
		t.Errorf("expected rewritten paragraph, got:\n%s", md)
	}
}
