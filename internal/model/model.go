package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text is an optional display string decoded from untrusted JSON.
// The zero value is absent.
type Text struct {
	Value string
	Valid bool
}

// Some returns a present Text. An empty string is still treated as absent
// so that Or falls back the same way for "" and a missing field.
func Some(s string) Text {
	return Text{Value: s, Valid: s != ""}
}

// Or returns the value when present, otherwise fallback.
func (t Text) Or(fallback string) string {
	if t.Valid {
		return t.Value
	}
	return fallback
}

// ClassRecord is a single scheduled class as returned by the classes API.
// Every field is optional; decoding never fails because of a field's
// shape, it only leaves the field absent.
type ClassRecord struct {
	Title     Text
	StartDate Text // display only, never parsed
	EndDate   Text // display only, never parsed
	Canceled  bool
	Online    bool
	Room      Text // room.title
	Employee  Text // employee.name
}

// UnmarshalJSON decodes one array element of the classes response.
// Non-object values yield a record with every field absent.
func (c *ClassRecord) UnmarshalJSON(data []byte) error {
	*c = ClassRecord{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	c.Title = textOf(fields["title"])
	c.StartDate = textOf(fields["start_date"])
	c.EndDate = textOf(fields["end_date"])
	c.Canceled = truthy(fields["canceled"])
	c.Online = truthy(fields["online"])
	c.Room = nestedText(fields["room"], "title")
	c.Employee = nestedText(fields["employee"], "name")
	return nil
}

func nestedText(raw json.RawMessage, key string) Text {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Text{}
	}
	return textOf(obj[key])
}

// textOf renders scalar JSON values as text. Objects, arrays, null and
// false are absent.
func textOf(raw json.RawMessage) Text {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Text{}
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Text{}
		}
		return Some(s)
	case 't':
		return Some("true")
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f == 0 {
			return Text{}
		}
		return Some(strconv.FormatFloat(f, 'f', -1, 64))
	default:
		return Text{}
	}
}

// truthy follows the usual loose truthiness: true, non-zero numbers,
// non-empty strings, objects and arrays are true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	switch raw[0] {
	case 't', '{', '[':
		return true
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	default:
		return false
	}
}
