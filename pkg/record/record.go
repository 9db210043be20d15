// Package record defines the structured unit produced from one input line
// and the grammar that produces it.
package record

import (
	"fmt"
	"regexp"
	"strconv"
)

// lineGrammar matches "id:name:content": a run of decimal digits, a colon,
// a run of word characters, a colon, then arbitrary remaining text
// (possibly empty, possibly containing further colons).
var lineGrammar = regexp.MustCompile(`^(\d+):(\w+):(.*)$`)

// Record is one parsed input line. Records are immutable once constructed;
// identity is ID.
type Record struct {
	ID      int64
	Name    string
	Content string
}

// String renders the record in the same id:name:content form Parse accepts.
func (r Record) String() string {
	return fmt.Sprintf("%d:%s:%s", r.ID, r.Name, r.Content)
}

// ParseError reports a line that does not conform to the record grammar.
// It carries the offending line so callers can log or surface it; the
// failure is recoverable and never indicates an unhealthy run.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}

// Parse converts one raw line into a Record. Lines that do not match the
// grammar, and ids too large for int64, fail with a *ParseError.
func Parse(line string) (Record, error) {
	m := lineGrammar.FindStringSubmatch(line)
	if m == nil {
		return Record{}, &ParseError{Line: line, Reason: "line does not match id:name:content"}
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "id out of range"}
	}

	return Record{ID: id, Name: m[2], Content: m[3]}, nil
}
