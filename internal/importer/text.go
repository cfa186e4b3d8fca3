package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextConverter handles plain text files.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (*Draft, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	draft := &Draft{Title: baseName(filename)}
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		para, n := RewriteAnnotations(current.String())
		draft.Rewrites += n
		draft.AddParagraph(para)
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan text: %w", err)
	}
	return draft, nil
}
