package core

import "strings"

// Parse validates the header line of text against the schema and parses every
// following line into a record.
//
// Parsing is all-or-nothing: the first failure, scanning top to bottom and
// left to right, aborts the document. A line produced by a trailing newline is
// parsed like any other row. Cells beyond the declared columns are ignored.
//
// Parse holds no state between calls and is safe for concurrent use.
func (s *Schema[R]) Parse(text string) (Collection[R], error) {
	if text == "" {
		return nil, &ParseError{Kind: KindUnexpectedEOF, Index: -1}
	}

	lines := strings.Split(text, "\n")

	if lines[0]+headerSep != s.header {
		return nil, &ParseError{Kind: KindInvalidHeader, Line: 1, Index: -1}
	}

	records := make(Collection[R], 0, len(lines)-1)
	for i, line := range lines[1:] {
		rec, err := s.parseRow(line, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// parseRow parses one data line into a record. lineNum is 1-based.
func (s *Schema[R]) parseRow(line string, lineNum int) (R, error) {
	var rec R
	cells := strings.Split(line, headerSep)

	for i, col := range s.columns {
		if i >= len(cells) {
			return rec, &ParseError{Kind: KindUnexpectedEOL, Line: lineNum, Column: col.ID, Index: i}
		}
		if err := col.assign(&rec, cells[i]); err != nil {
			return rec, &ParseError{Kind: KindColumn, Line: lineNum, Column: col.ID, Index: i, Err: err}
		}
	}

	return rec, nil
}
