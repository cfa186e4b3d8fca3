package importer

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFConverter handles PDF files. It tries the Go library first, then
// falls back to pdftotext when enabled.
type PDFConverter struct {
	FallbackPdftotext bool
}

func (c *PDFConverter) Convert(r io.Reader, filename string) (*Draft, error) {
	// ledongthuc/pdf needs a ReadSeeker+size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "pointsmd-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && c.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	draft := &Draft{Title: baseName(filename)}

	pages := strings.Split(text, "\f")
	nonEmpty := 0
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			nonEmpty++
		}
	}

	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		// Page sections only make sense when there is more than one.
		if nonEmpty > 1 {
			draft.AddSection(2, fmt.Sprintf("Page %d", i+1))
		}
		for _, para := range splitParagraphs(page) {
			out, n := RewriteAnnotations(para)
			draft.Rewrites += n
			draft.AddParagraph(out)
		}
	}
	return draft, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
