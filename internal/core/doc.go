// Package core provides the schema-driven tabular parsing engine.
//
// A schema declares an ordered list of typed columns for a record type. The
// engine validates a document's header line against the declared labels,
// splits every following line on commas, parses each cell with its column's
// scalar type and returns the records in input order. It can be used by the
// CLI, the HTTP service, or tests without modification.
//
// # Declaring a Schema
//
// Columns bind a header label to a record field and a scalar parse function:
//
//	var Log = core.MustSchema("cookie_log",
//	    core.Infallible("cookie", "cookie", ParseCookie,
//	        func(e *LogEntry, c Cookie) { e.Cookie = c }),
//	    core.Field("timestamp", "timestamp", ParseTimestamp,
//	        func(e *LogEntry, ts Timestamp) { e.Timestamp = ts }),
//	)
//
// [Field] columns may fail; [Infallible] columns take a conversion without an
// error result and can never fail.
//
// # Document Format
//
// The first line must equal the labels joined by commas. There is no quoting,
// escaping or multi-line cell support. Cells beyond the declared columns are
// ignored; missing cells fail the whole document.
//
// # Error Handling
//
// Every failure is a [*ParseError]. Structural failures match
// [ErrUnexpectedEOF], [ErrInvalidHeader] and [ErrUnexpectedEOL]; cell failures
// match the failing column's [Column.Err] and unwrap to the scalar type's
// error. [MapError] turns any error into a coded [UserMessage]:
//
//   - CSV001-CSV004: Document errors (empty, header, short row, bad value)
//   - FILE001-FILE003: File errors (size, missing, encoding)
//   - DB001-DB007: Storage errors
//   - UPL002-UPL005, REQ001-REQ002: Request errors
//
// # Registry
//
// Schemas register themselves at init time with [Register] so transports can
// list them and parse documents by name.
package core
