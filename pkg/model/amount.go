package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Amount is a money value as the spreadsheet backend returns it: either a
// JSON number or a numeric string such as "3,000".
type Amount float64

func ParseAmount(s string) (Amount, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount(f), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid amount %s: %w", raw, err)
	}
	*a = Amount(f)
	return nil
}

func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}

func (a Amount) Float64() float64 {
	return float64(a)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"2006-01-02",
	"1/2/2006",
}

// Timestamp keeps the backend's original text next to the parsed instant.
// Unparseable values keep Raw and a zero Time.
type Timestamp struct {
	Time time.Time
	Raw  string
}

func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*ts = Timestamp{}
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = ParseTimestamp(s)
	default:
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", raw, err)
		}
		*ts = Timestamp{Time: time.UnixMilli(int64(ms)).UTC(), Raw: raw}
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time.IsZero() {
		return json.Marshal(ts.Raw)
	}
	return json.Marshal(ts.Time.Format(time.RFC3339))
}

func (ts Timestamp) String() string {
	return ts.Raw
}

// After orders known instants before unknown ones, so unparseable rows sink.
func (ts Timestamp) After(other Timestamp) bool {
	if ts.Time.IsZero() || other.Time.IsZero() {
		return !ts.Time.IsZero() && other.Time.IsZero()
	}
	return ts.Time.After(other.Time)
}
