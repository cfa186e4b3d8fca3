package points

import (
	"fmt"

	"github.com/yuin/goldmark/parser"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Diagnostic kinds.
const (
	DiagParseError      = "parse_error"
	DiagUnknownCategory = "unknown_category"
)

// Diagnostic is one problem found while parsing annotations.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
}

// Collector gathers diagnostics during a single parse. A nil collector is
// valid and drops everything, so the extension works without one registered.
type Collector struct {
	diags []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Errorf records an error-level diagnostic.
func (c *Collector) Errorf(kind, format string, args ...any) {
	if c == nil {
		return
	}
	c.diags = append(c.diags, Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning-level diagnostic.
func (c *Collector) Warnf(kind, format string, args ...any) {
	if c == nil {
		return
	}
	c.diags = append(c.diags, Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	})
}

// All returns every diagnostic in report order.
func (c *Collector) All() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diags
}

// Errors returns only error-level diagnostics.
func (c *Collector) Errors() []Diagnostic {
	return c.filter(SeverityError)
}

// Warnings returns only warning-level diagnostics.
func (c *Collector) Warnings() []Diagnostic {
	return c.filter(SeverityWarning)
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	return len(c.Errors()) > 0
}

func (c *Collector) filter(sev Severity) []Diagnostic {
	if c == nil {
		return nil
	}
	var out []Diagnostic
	for _, d := range c.diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// diagnosticsKey carries the collector through one parse.
var diagnosticsKey = parser.NewContextKey()

// WithDiagnostics registers a collector in a parser context before parsing.
func WithDiagnostics(pc parser.Context, c *Collector) {
	pc.Set(diagnosticsKey, c)
}

// DiagnosticsFor returns the collector registered in pc, or nil.
func DiagnosticsFor(pc parser.Context) *Collector {
	if v := pc.Get(diagnosticsKey); v != nil {
		if c, ok := v.(*Collector); ok {
			return c
		}
	}
	return nil
}
