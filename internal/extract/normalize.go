package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Shape classifies the top-level form of a flat-schema extraction response.
// Models sometimes wrap the record list in a containing object, or return a
// single record instead of a list; classification happens in one place so
// the rest of the pipeline only ever sees a record list.
type Shape int

const (
	// ShapeList is a plain JSON array of records.
	ShapeList Shape = iota
	// ShapeWrapped is an object whose single list-valued field holds the records.
	ShapeWrapped
	// ShapeSingle is a lone record object, coerced into a one-element list.
	ShapeSingle
)

// Response is a classified flat-schema extraction response.
type Response struct {
	Shape Shape
	Items []json.RawMessage
}

// Classify parses raw JSON and normalizes it into a record list. An object
// with exactly one list-valued field unwraps to that list; an object with no
// list-valued fields is treated as a single record. Objects with several
// list-valued fields are ambiguous and rejected.
func Classify(raw []byte) (Response, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Response{}, fmt.Errorf("empty extraction response")
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Response{}, fmt.Errorf("parse response list: %w", err)
		}
		return Response{Shape: ShapeList, Items: items}, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Response{}, fmt.Errorf("parse response object: %w", err)
		}

		var lists [][]json.RawMessage
		for _, v := range fields {
			v = bytes.TrimSpace(v)
			if len(v) > 0 && v[0] == '[' {
				var items []json.RawMessage
				if err := json.Unmarshal(v, &items); err != nil {
					return Response{}, fmt.Errorf("parse wrapped list: %w", err)
				}
				lists = append(lists, items)
			}
		}
		switch len(lists) {
		case 0:
			return Response{Shape: ShapeSingle, Items: []json.RawMessage{trimmed}}, nil
		case 1:
			return Response{Shape: ShapeWrapped, Items: lists[0]}, nil
		default:
			return Response{}, fmt.Errorf("ambiguous response: object has %d list fields", len(lists))
		}

	default:
		return Response{}, fmt.Errorf("unexpected response shape (starts with %q)", trimmed[0])
	}
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeBlock removes a surrounding markdown code fence, if any.
func StripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
