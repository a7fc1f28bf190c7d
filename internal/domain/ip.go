package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IPAddress is an address registered with the backend.
// The backend owns the usage flag; Usage is the display label derived from it.
type IPAddress struct {
	IP     string `json:"ip"`
	IsUsed Flag   `json:"is_used,omitempty"`
	Usage  string `json:"-"`
}

// Flag is a 0/1 column as served by the backend.
type Flag int

// UnmarshalJSON accepts numbers, booleans and strings. A string that is not
// a number is a display label: "", "0" and "No" are unused, anything else is used.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = 0
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = 1
		return nil
	case bytes.Equal(data, []byte("false")):
		*f = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = labelFlag(strings.TrimSpace(s))
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid flag value %q: %w", data, ErrInvalidInput)
	}
	if n != 0 {
		*f = 1
	} else {
		*f = 0
	}
	return nil
}

func labelFlag(s string) Flag {
	if s == "" || strings.EqualFold(s, "No") {
		return 0
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n == 0 {
		return 0
	}
	return 1
}

// UsageLabel renders a usage flag the way the IP list shows it.
func UsageLabel(f Flag) string {
	if f == 0 {
		return "No"
	}
	return "Yes"
}
