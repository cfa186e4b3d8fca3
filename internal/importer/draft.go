package importer

import "strings"

// Section is one heading-scoped block of a converted document.
// Level 0 means body text without a heading.
type Section struct {
	Level      int
	Title      string
	Paragraphs []string
}

// Draft is a converted legacy worksheet, ready to emit as annotated
// Markdown for an author to review and edit.
type Draft struct {
	Title    string
	Sections []Section
	Rewrites int
}

// AddSection opens a new heading-scoped section.
func (d *Draft) AddSection(level int, title string) {
	d.Sections = append(d.Sections, Section{Level: level, Title: title})
}

// AddParagraph appends text to the current section, opening a level-0
// section when none exists yet.
func (d *Draft) AddParagraph(text string) {
	if len(d.Sections) == 0 {
		d.Sections = append(d.Sections, Section{})
	}
	last := &d.Sections[len(d.Sections)-1]
	last.Paragraphs = append(last.Paragraphs, text)
}

// Markdown emits the draft as Markdown with a trailing totals directive.
// The draft title becomes a level-1 heading unless a converted section
// already carries one.
func (d *Draft) Markdown() []byte {
	var b strings.Builder

	hasH1 := false
	for _, s := range d.Sections {
		if s.Level == 1 && s.Title != "" {
			hasH1 = true
			break
		}
	}
	if d.Title != "" && !hasH1 {
		b.WriteString("# " + d.Title + "\n\n")
	}

	for _, s := range d.Sections {
		if s.Level > 0 && s.Title != "" {
			b.WriteString(strings.Repeat("#", s.Level) + " " + s.Title + "\n\n")
		}
		for _, p := range s.Paragraphs {
			b.WriteString(p + "\n\n")
		}
	}

	b.WriteString("{points-total}\n")
	return []byte(b.String())
}

// splitParagraphs breaks extracted text on blank lines, dropping empties.
func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
