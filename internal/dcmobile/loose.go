package dcmobile

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// looseJSON keeps numbers as json.Number so ids survive without float rounding.
var looseJSON = jsoniter.Config{UseNumber: true}.Froze()

// decodeObject reads body as a JSON object. The server sometimes answers with
// a JSON string that itself holds the object, which is unwrapped once.
func decodeObject(body []byte) (map[string]any, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	var value any
	if err := looseJSON.Unmarshal(trimmed, &value); err != nil {
		return nil, false
	}
	if inner, ok := value.(string); ok {
		if err := looseJSON.UnmarshalFromString(strings.TrimSpace(inner), &value); err != nil {
			return nil, false
		}
	}
	obj, ok := value.(map[string]any)
	return obj, ok
}

// truthy reports whether v is one of the server's spellings of yes.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		n, err := t.Float64()
		return err == nil && n == 1
	case float64:
		return t == 1
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		return s == "1" || s == "true"
	}
	return false
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	out, err := looseJSON.MarshalToString(v)
	if err != nil {
		return ""
	}
	return out
}

// firstString returns the first non-empty value among keys.
func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(stringOf(obj[k])); s != "" {
			return s
		}
	}
	return ""
}
