package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Millis is a timestamp persisted as integer epoch milliseconds.
type Millis struct {
	time.Time
}

// NewMillis truncates t to millisecond precision.
func NewMillis(t time.Time) *Millis {
	return &Millis{Time: time.UnixMilli(t.UnixMilli())}
}

func (m Millis) GormDataType() string {
	return "integer"
}

func (m Millis) Value() (driver.Value, error) {
	return m.UnixMilli(), nil
}

func (m *Millis) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		m.Time = time.Time{}
	case int64:
		m.Time = time.UnixMilli(v)
	case int:
		m.Time = time.UnixMilli(int64(v))
	case float64:
		m.Time = time.UnixMilli(int64(v))
	case time.Time:
		m.Time = v
	default:
		return fmt.Errorf("scan millis: unsupported type %T", value)
	}
	return nil
}
