package transport

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorBody is the error payload the backend sends with non-2xx answers.
// Detail is either a plain string or a list of validation issues.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// ValidationIssue is one entry of a validation error list.
type ValidationIssue struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// DecodeDetail extracts a human-readable reason from an error body. It
// returns "" when the body carries no usable detail.
func DecodeDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload ErrorBody
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var issues []ValidationIssue
	if err := json.Unmarshal(payload.Detail, &issues); err == nil && len(issues) > 0 {
		return issues[0].String()
	}
	return ""
}

func (v ValidationIssue) String() string {
	if len(v.Loc) == 0 {
		return v.Msg
	}
	parts := make([]string, 0, len(v.Loc))
	for _, p := range v.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, "."), v.Msg)
}
