package database

import (
	"fmt"
	"time"
)

// TimeLayout is the text form of timestamps stored by SQLite.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Time scans a timestamp column from either driver.
// PostgreSQL yields time.Time, SQLite yields text.
type Time struct {
	time.Time
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into database.Time", src)
	}
}

func (t *Time) parse(s string) error {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}
