// Package literal parses the JSON-ish textual literals the REPL and batch
// driver accept for set/insert/append arguments, turning them into
// bencode.Value trees. JSON's number/string/array/object shapes map onto
// Bencode's Int/ByteString/List/Dict; Bencode has no boolean, null or
// float kind, so JSON true, false, null and non-integer numbers are
// rejected rather than silently coerced.
package literal

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/omkarkirpan/bencedit/bencode"
)

// Error is returned when a literal cannot be parsed into a Value.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "literal: " + e.Message }

// Parse parses s as a single JSON-ish literal and converts it to a
// bencode.Value. Numbers must be integers (Bencode has no float kind);
// true, false and null have no Bencode representation and are rejected.
func Parse(s string) (bencode.Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return bencode.Value{}, &Error{Message: fmt.Sprintf("invalid literal %q: %v", s, err)}
	}
	return convert(raw)
}

func convert(raw interface{}) (bencode.Value, error) {
	switch t := raw.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return bencode.Value{}, &Error{Message: fmt.Sprintf("only integers are representable in Bencode, got %q", t.String())}
		}
		return bencode.Int(n), nil

	case string:
		return bencode.String(t), nil

	case []interface{}:
		v := bencode.NewList()
		list, _ := v.AsList()
		for i, item := range t {
			child, err := convert(item)
			if err != nil {
				return bencode.Value{}, &Error{Message: fmt.Sprintf("list item %d: %v", i, err)}
			}
			list.Push(child)
		}
		return v, nil

	case map[string]interface{}:
		v := bencode.NewDict()
		dict, _ := v.AsDict()
		for k, item := range t {
			child, err := convert(item)
			if err != nil {
				return bencode.Value{}, &Error{Message: fmt.Sprintf("key %q: %v", k, err)}
			}
			dict.Set([]byte(k), child)
		}
		return v, nil

	case bool:
		return bencode.Value{}, &Error{Message: "booleans have no Bencode representation"}

	case nil:
		return bencode.Value{}, &Error{Message: "null has no Bencode representation"}

	default:
		return bencode.Value{}, &Error{Message: fmt.Sprintf("unsupported literal value of type %T", raw)}
	}
}
