// Package payload provides safe access to the heterogeneous payload trees the
// source system posts to the webhook endpoint. Payload schemas have drifted
// over time (a lower-camel "data.*" shape and a legacy capitalized shape
// coexist), so every lookup is tolerant: a missing key, an out-of-bounds
// index, or a wrong node type resolves to nil rather than an error.
package payload

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Tree is a parsed webhook payload: string-keyed maps and ordered sequences of
// arbitrary depth, with string, number, boolean, or null leaves. Trees are
// treated as immutable once handed to the pipeline.
type Tree = map[string]any

// Path is an ordered list of lookup steps. Each step is either a string (map
// key) or an int (sequence index), so a single path can descend through mixed
// containers, e.g. {"AssignedUsers", 0, "User", "Name"}.
type Path []any

// Get walks path through node. At each step the current node must be a map
// when the step is a string key, or a sequence when the step is an int index;
// any mismatch, absent key, or out-of-bounds index returns nil immediately.
func Get(node any, path ...any) any {
	cur := node
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			v, present := m[key]
			if !present {
				return nil
			}
			cur = v
		case int:
			seq, ok := cur.([]any)
			if !ok || key < 0 || key >= len(seq) {
				return nil
			}
			cur = seq[key]
		default:
			return nil
		}
	}
	return cur
}

// PickString returns the first candidate that is a string and non-empty after
// trimming surrounding whitespace, or "" if all candidates fail. This is the
// canonical "first shape wins" selection used wherever a field may appear
// under multiple historical payload shapes.
func PickString(values ...any) string {
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Stringify renders a scalar leaf as a display string. Integral floats (the
// usual encoding/json representation of payload IDs) render without a decimal
// point. Containers and nil report ok=false.
func Stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

// Truthy reports whether a scalar stringifies to a truthy token. The source
// system has emitted archival flags as booleans, numbers, and strings, so the
// check is applied to the stringified value: "true", "1", and "yes" count,
// case-insensitively.
func Truthy(v any) bool {
	s, ok := Stringify(v)
	if !ok {
		return false
	}
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Int extracts an integer from a scalar leaf. JSON numbers arrive as float64;
// only integral values qualify. Strings are not coerced.
func Int(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
