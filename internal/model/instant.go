package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// instantLayout is the wire format for timestamps: millisecond-precision
// UTC ISO-8601, e.g. 2024-05-05T09:34:38.963Z.
const instantLayout = "2006-01-02T15:04:05.000Z"

// Instant wraps time.Time to serialize as an ISO-8601 instant string
// and to scan from timestamp columns.
type Instant struct {
	time.Time
}

func NewInstant(t time.Time) Instant {
	return Instant{t.UTC().Truncate(time.Millisecond)}
}

func Now() Instant {
	return NewInstant(time.Now())
}

func (i Instant) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.UTC().Format(instantLayout) + `"`), nil
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*i = NewInstant(t)
	return nil
}

func (i Instant) Value() (driver.Value, error) {
	return i.UTC(), nil
}

func (i *Instant) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*i = NewInstant(v)
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Instant", src)
	}
}
