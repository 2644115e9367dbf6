package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// ISOLayout is ISO-8601 in UTC with millisecond precision, e.g.
// 2024-05-01T10:20:30.123Z.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ISOTime is a timestamp that always serializes with ISOLayout.
type ISOTime struct {
	time.Time
}

// NewISOTime converts t to UTC and drops everything below a millisecond,
// which is all the layout can carry.
func NewISOTime(t time.Time) ISOTime {
	return ISOTime{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t ISOTime) String() string {
	return t.UTC().Format(ISOLayout)
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ISOTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid ISO-8601 time %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}
