package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date parse errors. ErrInvalidLiteral wraps the underlying *strconv.NumError.
var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrInvalidLiteral = errors.New("invalid literal")
)

// Date is a calendar date as written in a log: "Y-M-D".
// Month and day are not range checked; any integer of the field's width is kept.
type Date struct {
	Year  uint32
	Month uint8
	Day   uint8
}

// ParseDate parses "Y-M-D", reading segments left to right.
func ParseDate(s string) (Date, error) {
	year, rest, err := cutSegment(s, 32)
	if err != nil {
		return Date{}, err
	}
	month, rest, err := cutSegment(rest, 8)
	if err != nil {
		return Date{}, err
	}
	day, err := parseLiteral(rest, 8)
	if err != nil {
		return Date{}, err
	}

	return Date{Year: uint32(year), Month: uint8(month), Day: uint8(day)}, nil
}

// cutSegment splits s on the first '-' and parses the part before it.
func cutSegment(s string, bitSize int) (uint64, string, error) {
	seg, rest, ok := strings.Cut(s, "-")
	if !ok {
		return 0, "", ErrInvalidFormat
	}
	v, err := parseLiteral(seg, bitSize)
	if err != nil {
		return 0, "", err
	}
	return v, rest, nil
}

// parseLiteral parses an unsigned decimal integer that fits in bitSize bits.
// A single leading '+' is accepted.
func parseLiteral(s string, bitSize int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidLiteral, err)
	}
	return v, nil
}

// String formats the date as "Y-M-D" without padding, the inverse of ParseDate.
func (d Date) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, d.Month, d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Time returns the date at midnight UTC and whether it names a real calendar
// day. Parsing never checks ranges; this is for consumers that need one.
func (d Date) Time() (time.Time, bool) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return time.Time{}, false
	}
	t := time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
	if t.Day() != int(d.Day) {
		return time.Time{}, false
	}
	return t, true
}

// Timestamp pairs a Date with the unparsed time of day that followed it.
type Timestamp struct {
	Date Date   `json:"date"`
	Time string `json:"time"`
}

// ParseTimestamp splits s at the first 'T'. The part before it must be a
// Date; the rest, including any further 'T', is kept verbatim as Time.
// Without a 'T' the whole string is the date and Time is empty.
func ParseTimestamp(s string) (Timestamp, error) {
	datePart, timePart, _ := strings.Cut(s, "T")
	d, err := ParseDate(datePart)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Date: d, Time: timePart}, nil
}

// String joins date and time with 'T'; a timestamp without a time renders
// as its date.
func (t Timestamp) String() string {
	if t.Time == "" {
		return t.Date.String()
	}
	return t.Date.String() + "T" + t.Time
}
