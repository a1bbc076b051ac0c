package model

import (
	"bytes"
	"fmt"
)

// Flag is a boolean that also accepts the 0/1 integers and strings the
// API emits for tinyint columns.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.Trim(data, `"`)) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}
