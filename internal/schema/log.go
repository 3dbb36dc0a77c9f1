// Package schema declares the scalar types and tabular schemas of cookie logs.
package schema

import "github.com/JonMunkholm/cookielog/internal/core"

// LogEntry is one row of a cookie log.
type LogEntry struct {
	Cookie    Cookie    `json:"cookie"`
	Timestamp Timestamp `json:"timestamp"`
}

// Cookie log columns, in header order.
var (
	CookieColumn = core.Infallible("cookie", "cookie", ParseCookie,
		func(e *LogEntry, c Cookie) { e.Cookie = c })

	TimestampColumn = core.Field("timestamp", "timestamp", ParseTimestamp,
		func(e *LogEntry, ts Timestamp) { e.Timestamp = ts })
)

// Log is the cookie log schema:
//
//	cookie,timestamp
//	AtY0laUfhglK3lC7,2018-12-09T14:19:00+00:00
var Log = core.MustSchema("cookie_log", CookieColumn, TimestampColumn)

// ErrTimestamp matches failures raised by the timestamp column.
// The cookie column is infallible and has no error case.
var ErrTimestamp = TimestampColumn.Err()

func init() {
	core.Register(Log)
}

// ParseLog parses a cookie log document.
func ParseLog(text string) (core.Collection[LogEntry], error) {
	return Log.Parse(text)
}
