package points

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// rolePrefix opens an inline annotation; the payload runs to the next backtick.
var rolePrefix = []byte("{points}`")

// ParseAnnotation parses a payload of the form "<value>" or "<value> <category>".
// The value must be a non-negative base-10 integer. The category, when present,
// is everything after the first whitespace run, taken verbatim.
func ParseAnnotation(payload string) (value int, category string, err error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return 0, "", fmt.Errorf("point value missing in %q", payload)
	}
	valueTok := s
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		valueTok = s[:i]
		category = strings.TrimSpace(s[i+1:])
	}
	value, err = strconv.Atoi(valueTok)
	if err != nil {
		return 0, "", fmt.Errorf("point value %q is not an integer", valueTok)
	}
	if value < 0 {
		return 0, "", fmt.Errorf("point value %q is negative", valueTok)
	}
	return value, category, nil
}

// annotationParser parses {points}`...` roles into Annotation nodes.
type annotationParser struct {
	ext *Extension
}

func (p *annotationParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *annotationParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, rolePrefix) {
		return nil
	}
	rest := line[len(rolePrefix):]
	end := bytes.IndexByte(rest, '`')
	if end < 0 {
		return nil
	}
	payload := string(rest[:end])
	block.Advance(len(rolePrefix) + end + 1)

	diags := DiagnosticsFor(pc)
	value, category, err := ParseAnnotation(payload)
	if err != nil {
		// The markup is consumed but no annotation node is produced.
		diags.Errorf(DiagParseError, "%s", err)
		return ast.NewString(nil)
	}
	if category != "" && !p.ext.recognized(category) {
		diags.Warnf(DiagUnknownCategory, "unrecognized category %q kept verbatim", category)
	}
	return NewAnnotation(value, category)
}
