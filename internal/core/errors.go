package core

// errors.go defines the error taxonomy of the parsing engine.
//
// Every failure is a *ParseError. Structural failures carry one of the
// sentinel kinds below; cell failures carry KindColumn together with the ID
// of the column that raised them and the scalar type's own error:
//
//	_, err := schema.Parse(text)
//	switch {
//	case errors.Is(err, core.ErrInvalidHeader):
//	case errors.Is(err, timestampColumn.Err()):
//	    errors.Is(err, schema.ErrInvalidFormat) // unwraps to the domain error
//	}

import "fmt"

// Kind classifies a parse failure.
type Kind int

const (
	KindUnexpectedEOF Kind = iota // Document has no lines at all
	KindInvalidHeader             // First line differs from the declared labels
	KindUnexpectedEOL             // Data row has fewer cells than columns
	KindColumn                    // A cell failed its column's scalar parse
)

// String returns the kind's name as used in logs, metrics and API responses.
func (k Kind) String() string {
	switch k {
	case KindUnexpectedEOF:
		return "UnexpectedEOF"
	case KindInvalidHeader:
		return "InvalidHeader"
	case KindUnexpectedEOL:
		return "UnexpectedEOL"
	case KindColumn:
		return "Column"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Structural sentinels; match with errors.Is.
var (
	ErrUnexpectedEOF = &ParseError{Kind: KindUnexpectedEOF, Index: -1}
	ErrInvalidHeader = &ParseError{Kind: KindInvalidHeader, Index: -1}
	ErrUnexpectedEOL = &ParseError{Kind: KindUnexpectedEOL, Index: -1}
)

// ParseError reports why a document could not be parsed.
type ParseError struct {
	Kind   Kind
	Line   int    // 1-based line number, 0 when not tied to a line
	Column string // Column ID for KindColumn
	Index  int    // Column position for KindColumn and KindUnexpectedEOL, -1 otherwise
	Err    error  // Scalar type's error for KindColumn
}

func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case KindUnexpectedEOF:
		msg = "unexpected end of input: document has no header"
	case KindInvalidHeader:
		msg = "invalid header"
	case KindUnexpectedEOL:
		msg = "unexpected end of line"
		if e.Column != "" {
			msg += fmt.Sprintf(": missing column %q", e.Column)
		}
	case KindColumn:
		msg = fmt.Sprintf("column %q", e.Column)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	default:
		msg = e.Kind.String()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Unwrap returns the scalar type's error, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// Is matches targets of the same kind. Column targets also require the same
// column ID, so each column has its own distinct error case.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Kind == KindColumn {
		return t.Column == e.Column
	}
	return true
}
