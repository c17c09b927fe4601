package oracle

import (
	"errors"
	"strings"
)

// ErrNoStructuredPayload means the completion text contained no JSON
// object or array to extract.
var ErrNoStructuredPayload = errors.New("NO_STRUCTURED_PAYLOAD")

// ExtractJSON pulls the best-effort JSON document out of free-form
// completion text: the span from the first '{' to the last '}', falling
// back to the first '[' through the last ']' for bare-array replies.
// The extracted span is not validated here.
func ExtractJSON(content string) (string, error) {
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1], nil
		}
	}
	if start := strings.Index(content, "["); start >= 0 {
		if end := strings.LastIndex(content, "]"); end > start {
			return content[start : end+1], nil
		}
	}
	return "", ErrNoStructuredPayload
}
