// Package result defines the reported shape of a match: the wire form the
// engine produces once a rule's pattern has matched and its conditions have
// passed.
package result

import (
	"fmt"

	"github.com/oxhq/semgo/internal/ast"
	"github.com/oxhq/semgo/internal/rule"
)

// Location pinpoints a match within a file.
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// Finding is one reported rule match, ready for rendering.
type Finding struct {
	RuleID     string            `json:"rule_id"`
	Message    string            `json:"message"`
	Severity   rule.Severity     `json:"severity"`
	Confidence rule.Confidence   `json:"confidence,omitempty"`
	Location   Location          `json:"location"`
	Bindings   map[string]string `json:"bindings,omitempty"`
	Fix        string            `json:"fix,omitempty"`
}

// Key returns the deduplication/sort identity of a finding, per
// (file, start_line, start_col, end_line, end_col, rule_id).
func (f Finding) Key() string {
	return fmt.Sprintf("%s:%d:%d:%d:%d:%s",
		f.Location.File, f.Location.StartLine, f.Location.StartCol,
		f.Location.EndLine, f.Location.EndCol, f.RuleID)
}

// FromRange builds a Location from an ast.Range.
func FromRange(r ast.Range) Location {
	return Location{
		File:      r.File,
		StartLine: r.StartLine,
		StartCol:  r.StartCol,
		EndLine:   r.EndLine,
		EndCol:    r.EndCol,
	}
}

// Less orders findings by (file, start_line, start_col, end_line, end_col,
// rule_id), the order the engine reports across files and rules.
func Less(a, b Finding) bool {
	if a.Location.File != b.Location.File {
		return a.Location.File < b.Location.File
	}
	if a.Location.StartLine != b.Location.StartLine {
		return a.Location.StartLine < b.Location.StartLine
	}
	if a.Location.StartCol != b.Location.StartCol {
		return a.Location.StartCol < b.Location.StartCol
	}
	if a.Location.EndLine != b.Location.EndLine {
		return a.Location.EndLine < b.Location.EndLine
	}
	if a.Location.EndCol != b.Location.EndCol {
		return a.Location.EndCol < b.Location.EndCol
	}
	return a.RuleID < b.RuleID
}
