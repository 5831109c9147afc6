package types

import (
	"strings"
	"time"

	dberr "rowexec/pkg/error"
)

// DateDays counts days since 1970-01-01.
type DateDays int32

// TimestampMicros counts microseconds since 1970-01-01 00:00:00 UTC.
type TimestampMicros int64

const (
	microsPerDay = int64(24 * time.Hour / time.Microsecond)
	dateLayout   = "2006-01-02"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	dateLayout,
}

// DateFromTime truncates t to its UTC calendar day.
func DateFromTime(t time.Time) DateDays {
	return DateDays(floorDiv(t.UTC().Unix(), 86400))
}

// TimestampFromTime converts t to microseconds since the epoch.
func TimestampFromTime(t time.Time) TimestampMicros {
	return TimestampMicros(t.UTC().UnixMicro())
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (d DateDays) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// Timestamp returns midnight of the day.
func (d DateDays) Timestamp() TimestampMicros {
	return TimestampMicros(int64(d) * microsPerDay)
}

func (d DateDays) String() string {
	return d.Time().Format(dateLayout)
}

func (ts TimestampMicros) Time() time.Time {
	return time.UnixMicro(int64(ts)).UTC()
}

// Date truncates to the containing day.
func (ts TimestampMicros) Date() DateDays {
	return DateDays(floorDiv(int64(ts), microsPerDay))
}

func (ts TimestampMicros) String() string {
	t := ts.Time()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}

// ParseDate accepts YYYY-MM-DD and, for convenience, any timestamp layout.
func ParseDate(s string) (DateDays, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateFromTime(t), nil
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return 0, dberr.Newf(dberr.KindMismatchType, "can't convert '%s' to DATE", s)
	}
	return ts.Date(), nil
}

// ParseTimestamp accepts the common SQL and RFC 3339 timestamp layouts.
func ParseTimestamp(s string) (TimestampMicros, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimestampFromTime(t), nil
		}
	}
	return 0, dberr.Newf(dberr.KindMismatchType, "can't convert '%s' to TIMESTAMP", s)
}

// AsDate reads DATE, TIMESTAMP (truncated) or a date string.
func (v Value) AsDate() (DateDays, error) {
	if v.IsNull() {
		return 0, errNullCast()
	}
	switch id := v.typ.ID; {
	case id == DateType:
		return DateDays(v.i), nil
	case id == TimestampType:
		return TimestampMicros(v.i).Date(), nil
	case id.IsString():
		return ParseDate(v.s)
	}
	return 0, errMismatch(v, "DATE")
}

// AsTimestamp reads TIMESTAMP, DATE (at midnight) or a timestamp string.
func (v Value) AsTimestamp() (TimestampMicros, error) {
	if v.IsNull() {
		return 0, errNullCast()
	}
	switch id := v.typ.ID; {
	case id == TimestampType:
		return TimestampMicros(v.i), nil
	case id == DateType:
		return DateDays(v.i).Timestamp(), nil
	case id.IsString():
		return ParseTimestamp(v.s)
	}
	return 0, errMismatch(v, "TIMESTAMP")
}
