package apierr

import (
	"encoding/json"
	"strings"
)

// MessageFromBody extracts a human-readable message from an error response
// body. The API and the proxies in front of it use a few shapes:
//
//	{"message": "..."}
//	{"error": "..."}
//	{"error": {"message": "..."}}
//	{"detail": "..."}
//	{"errors": [{"message": "..."}]}
//
// Non-JSON and unrecognised bodies yield "".
func MessageFromBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed[0] != '{' {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return ""
	}

	for _, key := range []string{"message", "detail", "error"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if s, ok := asString(raw); ok {
			return s
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			if s, ok := asString(nested["message"]); ok {
				return s
			}
		}
	}

	if raw, ok := obj["errors"]; ok {
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			if s, ok := asString(list[0]["message"]); ok {
				return s
			}
		}
	}
	return ""
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
