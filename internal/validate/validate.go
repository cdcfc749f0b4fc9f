// Package validate holds the pure request validators: no I/O, deterministic
// given input. Bodies are decoded to raw-message maps so that the handlers
// can tell an absent field from an explicit null.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLen     = 140
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var jsonContentType = regexp.MustCompile(`^(?i)application/json(\s*;.*)?$`)

// Error is a client-input validation failure, carried up to the handler as a
// 400 with its code in the response envelope.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// ContentTypeIsJSON reports whether ct is application/json, optionally
// followed by parameters (e.g. charset). Case-insensitive.
func ContentTypeIsJSON(ct string) bool {
	return jsonContentType.MatchString(ct)
}

// ParseBody checks the content type and decodes the body into a field map.
// An empty body is not valid JSON. Invalid content type and invalid JSON are
// distinct error kinds.
func ParseBody(contentType string, body []byte) (map[string]json.RawMessage, *Error) {
	if !ContentTypeIsJSON(contentType) {
		return nil, &Error{Code: "INVALID_CONTENT_TYPE", Message: "Content-Type must be application/json"}
	}
	if len(body) == 0 {
		return nil, &Error{Code: "INVALID_JSON", Message: "Request body is not valid JSON"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &Error{Code: "INVALID_JSON", Message: "Request body is not valid JSON"}
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

// Title validates a raw title field and returns it trimmed. In required mode
// an absent, non-string or blank title is MISSING_TITLE; otherwise the same
// failures are INVALID_TITLE. Length is counted in runes, before trimming.
func Title(raw json.RawMessage, required bool) (string, *Error) {
	badCode, badMsg := "INVALID_TITLE", "'title' must be a non-empty string"
	if required {
		badCode, badMsg = "MISSING_TITLE", "'title' is required"
	}
	if raw == nil {
		return "", &Error{Code: badCode, Message: badMsg}
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return "", &Error{Code: badCode, Message: badMsg}
	}
	if strings.TrimSpace(title) == "" {
		return "", &Error{Code: badCode, Message: badMsg}
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", &Error{
			Code:    "TITLE_TOO_LONG",
			Message: fmt.Sprintf("'title' must be <= %d characters", MaxTitleLen),
		}
	}
	return strings.TrimSpace(title), nil
}

// dueDateLayouts accepts RFC3339 (a Z suffix is equivalent to +00:00), a
// naive datetime, or a bare date.
var dueDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DueDate validates a raw dueDate field. Absent or explicit null is valid
// and yields nil; otherwise the value must be a string parsing as a
// date-time, returned verbatim.
func DueDate(raw json.RawMessage) (*string, *Error) {
	if raw == nil {
		return nil, nil
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &Error{Code: "INVALID_DUE_DATE", Message: "'dueDate' must be RFC3339/ISO-8601"}
	}
	if value == nil {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if _, err := time.Parse(layout, *value); err == nil {
			return value, nil
		}
	}
	return nil, &Error{Code: "INVALID_DUE_DATE", Message: "'dueDate' must be RFC3339/ISO-8601"}
}

// PageLimit parses the list limit query parameter. Absent means the default;
// out-of-range integers are clamped silently, non-integers rejected.
func PageLimit(raw string) (int32, *Error) {
	if raw == "" {
		return DefaultPageSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &Error{
			Code:    "INVALID_LIMIT",
			Message: fmt.Sprintf("'limit' must be an integer between 1 and %d", MaxPageSize),
		}
	}
	if n < 1 {
		n = 1
	}
	if n > MaxPageSize {
		n = MaxPageSize
	}
	return int32(n), nil
}
