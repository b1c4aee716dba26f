package transfer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"
)

const Version = 1

//go:embed schema.json
var Schema string

type Mode string

const (
	ModeMerge   Mode = "merge"
	ModeReplace Mode = "replace"
)

func ParseMode(value string) (Mode, bool) {
	switch Mode(value) {
	case "", ModeMerge:
		return ModeMerge, true
	case ModeReplace:
		return ModeReplace, true
	default:
		return "", false
	}
}

// Record is the portable shape of a task. It matches the browser
// dashboard's local storage format.
type Record struct {
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	Created     *Timestamp `json:"created,omitempty"`
	Priority    int        `json:"priority,omitempty"`
	DueDate     *string    `json:"dueDate"`
	Tags        []string   `json:"tags,omitempty"`
	Description string     `json:"description,omitempty"`
}

type Document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Tasks      []Record  `json:"tasks"`
}

type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Timestamp reads RFC 3339 strings or Unix milliseconds and writes RFC 3339.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.UTC().Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string

		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}

		parsed, err := time.Parse(time.RFC3339Nano, value)

		if err != nil {
			return fmt.Errorf("invalid timestamp %q", value)
		}

		ts.Time = parsed
		return nil
	}

	var millis int64

	if err := json.Unmarshal(data, &millis); err != nil {
		return fmt.Errorf("invalid timestamp %s", string(data))
	}

	ts.Time = time.UnixMilli(millis).UTC()

	return nil
}
