package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number, a numeric string, or null.
// The airline API is not consistent about quoting coordinates.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("flex float %q: %w", s, err)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Float64() float64 { return float64(f) }

// FlexID is an identifier that may be sent as a number or a string.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex id: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string { return string(id) }

// FlexIDs accepts either a single id or a list of ids.
type FlexIDs []FlexID

func (ids *FlexIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ids = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []FlexID
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*ids = list
		return nil
	}
	var one FlexID
	if err := one.UnmarshalJSON(data); err != nil {
		return err
	}
	if one == "" {
		*ids = nil
		return nil
	}
	*ids = FlexIDs{one}
	return nil
}

// First returns the first id, or "" when empty.
func (ids FlexIDs) First() FlexID {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
