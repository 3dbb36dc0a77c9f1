package core

import (
	"fmt"
	"reflect"
	"strings"
)

// headerSep separates both header labels and row cells.
const headerSep = ","

// Column binds one header label to one typed field of the record type R.
//
// Columns are built with [Field] or [Infallible] and are immutable once
// created. Column order inside a [Schema] is both the expected header order
// and the expected cell order of every data row.
type Column[R any] struct {
	ID         string // Record field identifier: "timestamp"
	Label      string // Literal header text (must match the document exactly)
	Type       string // Scalar type name, for listings
	Infallible bool   // True when the scalar type cannot fail to parse

	assign func(rec *R, cell string) error
}

// Field declares a column whose scalar type is parsed by parse and stored in
// the record by set. A parse failure is reported as this column's error.
func Field[R, T any](id, label string, parse func(string) (T, error), set func(*R, T)) Column[R] {
	return Column[R]{
		ID:    id,
		Label: label,
		Type:  typeName[T](),
		assign: func(rec *R, cell string) error {
			v, err := parse(cell)
			if err != nil {
				return err
			}
			set(rec, v)
			return nil
		},
	}
}

// Infallible declares a column whose scalar type cannot fail to parse, such
// as an opaque token. The conversion has no error result, so the column can
// never raise a column error.
func Infallible[R, T any](id, label string, conv func(string) T, set func(*R, T)) Column[R] {
	return Column[R]{
		ID:         id,
		Label:      label,
		Type:       typeName[T](),
		Infallible: true,
		assign: func(rec *R, cell string) error {
			set(rec, conv(cell))
			return nil
		},
	}
}

// Err returns the sentinel identifying failures raised by this column.
//
//	if errors.Is(err, timestampColumn.Err()) { ... }
func (c Column[R]) Err() error {
	return &ParseError{Kind: KindColumn, Column: c.ID, Index: -1}
}

// Info returns the column's descriptive fields.
func (c Column[R]) Info() ColumnInfo {
	return ColumnInfo{ID: c.ID, Label: c.Label, Type: c.Type, Infallible: c.Infallible}
}

// ColumnInfo describes a column without its record binding.
type ColumnInfo struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Infallible bool   `json:"infallible"`
}

// Collection is the ordered sequence of records produced by a successful
// parse. Record order equals input line order.
type Collection[R any] []R

// Schema is an ordered, immutable list of columns producing records of type R.
type Schema[R any] struct {
	name    string
	columns []Column[R]
	header  string // labels joined by "," plus the trailing sentinel ","
}

// NewSchema builds a schema from columns in declared order.
// Returns an error if there are no columns, an ID is empty or repeated, or a
// label contains the cell separator or a line break.
func NewSchema[R any](name string, cols ...Column[R]) (*Schema[R], error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("schema %s: at least one column is required", name)
	}

	seen := make(map[string]bool, len(cols))
	var header strings.Builder
	for i, col := range cols {
		if col.ID == "" {
			return nil, fmt.Errorf("schema %s: column %d has no id", name, i)
		}
		if seen[col.ID] {
			return nil, fmt.Errorf("schema %s: duplicate column id %q", name, col.ID)
		}
		if strings.ContainsAny(col.Label, ",\n") {
			return nil, fmt.Errorf("schema %s: label %q contains a separator", name, col.Label)
		}
		if col.assign == nil {
			return nil, fmt.Errorf("schema %s: column %q has no parser", name, col.ID)
		}
		seen[col.ID] = true

		header.WriteString(col.Label)
		header.WriteString(headerSep)
	}

	return &Schema[R]{
		name:    name,
		columns: append([]Column[R](nil), cols...),
		header:  header.String(),
	}, nil
}

// MustSchema is like NewSchema but panics on error.
// Use it for package-level schema declarations.
func MustSchema[R any](name string, cols ...Column[R]) *Schema[R] {
	s, err := NewSchema(name, cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema's registry name.
func (s *Schema[R]) Name() string { return s.name }

// Header returns the header line a document must start with.
func (s *Schema[R]) Header() string {
	return strings.TrimSuffix(s.header, headerSep)
}

// Columns describes the schema's columns in declared order.
func (s *Schema[R]) Columns() []ColumnInfo {
	infos := make([]ColumnInfo, len(s.columns))
	for i, col := range s.columns {
		infos[i] = col.Info()
	}
	return infos
}

// Column returns the column with the given ID.
func (s *Schema[R]) Column(id string) (Column[R], bool) {
	for _, col := range s.columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column[R]{}, false
}

// Decode parses text and returns the collection as an untyped value together
// with its record count. It lets registries handle schemas of any record type.
func (s *Schema[R]) Decode(text string) (any, int, error) {
	records, err := s.Parse(text)
	if err != nil {
		return nil, 0, err
	}
	return records, len(records), nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
