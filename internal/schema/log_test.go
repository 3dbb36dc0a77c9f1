package schema

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/cookielog/internal/core"
)

const sampleLog = `cookie,timestamp
AtY0laUfhglK3lC7,2018-12-09T14:19:00+00:00
SAZuXPGUrfbcn5UA,2018-12-09T10:13:00+00:00
5UAVanZf6UtGyKVS,2018-12-09T07:25:00+00:00
AtY0laUfhglK3lC7,2018-12-09T06:19:00+00:00
SAZuXPGUrfbcn5UA,2018-12-08T22:03:00+00:00
4sMM2LxV07bPJzwf,2018-12-08T21:30:00+00:00
fbcn5UAVanZf6UtG,2018-12-08T09:30:00+00:00
4sMM2LxV07bPJzwf,2018-12-07T23:30:00+00:00`

func TestParseLog(t *testing.T) {
	entries, err := ParseLog(sampleLog)
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("ParseLog() returned %d entries, want 8", len(entries))
	}

	want := LogEntry{
		Cookie: "AtY0laUfhglK3lC7",
		Timestamp: Timestamp{
			Date: Date{Year: 2018, Month: 12, Day: 9},
			Time: "14:19:00+00:00",
		},
	}
	if entries[0] != want {
		t.Errorf("entries[0] = %+v, want %+v", entries[0], want)
	}
	if entries[7].Cookie != "4sMM2LxV07bPJzwf" || entries[7].Timestamp.Date.Day != 7 {
		t.Errorf("entries[7] = %+v", entries[7])
	}
}

func TestParseLog_SingleRow(t *testing.T) {
	entries, err := ParseLog("cookie,timestamp\nabc,2018-12-09T14:19:00+00:00")
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Cookie != "abc" || entries[0].Timestamp.Time != "14:19:00+00:00" {
		t.Errorf("ParseLog() = %+v", entries)
	}
}

func TestParseLog_TimestampError(t *testing.T) {
	_, err := ParseLog("cookie,timestamp\nabc,2018-13")

	if !errors.Is(err, ErrTimestamp) {
		t.Fatalf("ParseLog() error = %v, want ErrTimestamp", err)
	}
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseLog() error = %v, want it to wrap ErrInvalidFormat", err)
	}

	var perr *core.ParseError
	if !errors.As(err, &perr) || perr.Line != 2 || perr.Column != "timestamp" {
		t.Errorf("ParseLog() error = %#v", err)
	}
}

func TestParseLog_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", core.ErrUnexpectedEOF},
		{"wrong header", "timestamp,cookie\n2018-12-09,abc", core.ErrInvalidHeader},
		{"header with spaces", "cookie, timestamp", core.ErrInvalidHeader},
		{"missing timestamp", "cookie,timestamp\nabc", core.ErrUnexpectedEOL},
		{"trailing newline", "cookie,timestamp\nabc,2018-12-09T00:00:00\n", core.ErrUnexpectedEOL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLog(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseLog() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseLog_CookieNeverFails(t *testing.T) {
	entries, err := ParseLog("cookie,timestamp\n,2018-12-09T00:00:00\n ,2018-12-09")
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if entries[0].Cookie != "" || entries[1].Cookie != " " {
		t.Errorf("cookies = %q, %q", entries[0].Cookie, entries[1].Cookie)
	}
}

func TestLog_Registered(t *testing.T) {
	d, ok := core.Get("cookie_log")
	if !ok {
		t.Fatal("cookie_log is not registered")
	}
	if d.Header() != "cookie,timestamp" {
		t.Errorf("Header() = %q", d.Header())
	}

	cols := d.Columns()
	if len(cols) != 2 || !cols[0].Infallible || cols[1].Infallible {
		t.Errorf("Columns() = %+v", cols)
	}
}
