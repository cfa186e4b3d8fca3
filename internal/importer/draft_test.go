package importer

import (
	"strings"
	"testing"
)

func TestDraftMarkdown_TitleAndSections(t *testing.T) {
	d := &Draft{Title: "Algebra Review"}
	d.AddParagraph("Intro text.")
	d.AddSection(2, "Warm-up")
	d.AddParagraph("Solve for x. {points}`2`")

	md := string(d.Markdown())
	if !strings.HasPrefix(md, "# Algebra Review\n\n") {
		t.Errorf("expected title heading first, got:\n%s", md)
	}
	if !strings.Contains(md, "## Warm-up\n\n") {
		t.Errorf("expected section heading, got:\n%s", md)
	}
	if !strings.HasSuffix(md, "{points-total}\n") {
		t.Errorf("expected trailing totals directive, got:\n%s", md)
	}
}

func TestDraftMarkdown_SkipsTitleWhenSectionHasH1(t *testing.T) {
	d := &Draft{Title: "fallback"}
	d.AddSection(1, "Real Title")
	d.AddParagraph("Body.")

	md := string(d.Markdown())
	if strings.Contains(md, "# fallback") {
		t.Errorf("expected filename title to be dropped, got:\n%s", md)
	}
	if !strings.Contains(md, "# Real Title\n\n") {
		t.Errorf("expected converted h1 kept, got:\n%s", md)
	}
}

func TestDraftMarkdown_EmptyDraftStillHasDirective(t *testing.T) {
	d := &Draft{}
	if got := string(d.Markdown()); got != "{points-total}\n" {
		t.Errorf("expected bare directive, got %q", got)
	}
}

func TestDraftAddParagraph_OpensImplicitSection(t *testing.T) {
	d := &Draft{}
	d.AddParagraph("Loose text.")
	if len(d.Sections) != 1 || d.Sections[0].Level != 0 {
		t.Fatalf("expected one level-0 section, got %+v", d.Sections)
	}
}

func TestSplitParagraphs(t *testing.T) {
	parts := splitParagraphs("one\n\n\n\ntwo\n\n   \n\nthree")
	if len(parts) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(parts), parts)
	}
	if parts[0] != "one" || parts[1] != "two" || parts[2] != "three" {
		t.Errorf("unexpected paragraphs: %q", parts)
	}
}
