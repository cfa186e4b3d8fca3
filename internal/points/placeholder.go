package points

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// directiveMarker is the block placeholder syntax; the line must hold nothing else.
var directiveMarker = []byte("{points-total}")

// reportBlockParser parses a {points-total} line into a ReportPlaceholder.
// Like a thematic break it may interrupt a paragraph.
type reportBlockParser struct{}

func (p *reportBlockParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *reportBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w > 3 {
		return nil, parser.NoChildren
	}
	rest := line[pos:]
	if !bytes.HasPrefix(rest, directiveMarker) {
		return nil, parser.NoChildren
	}
	if !util.IsBlank(rest[len(directiveMarker):]) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return NewReportPlaceholder(), parser.NoChildren
}

func (p *reportBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *reportBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
}

func (p *reportBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *reportBlockParser) CanAcceptIndentedLine() bool {
	return false
}
