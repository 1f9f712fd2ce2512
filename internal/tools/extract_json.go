package tools

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
)

const (
	jsonStartMarker = "<<JSON_START>>"
	jsonEndMarker   = "<<JSON_END>>"
)

// extractJSON digs a single JSON object out of raw model output. The raw
// payload may be an NDJSON stream of generate responses, a marker-fenced
// object, prose with an embedded object, or the object itself.
func extractJSON(raw []byte) ([]byte, bool) {
	text := assembleStream(raw)

	if start := strings.Index(text, jsonStartMarker); start >= 0 {
		rest := text[start+len(jsonStartMarker):]
		if end := strings.Index(rest, jsonEndMarker); end >= 0 {
			if obj, ok := balancedObject(rest[:end]); ok {
				return obj, true
			}
		}
	}

	if obj, ok := balancedObject(text); ok {
		return obj, true
	}

	return nil, false
}

// assembleStream joins the "response" fragments of an NDJSON generate
// stream back into one string. Input that is not such a stream passes
// through untouched.
func assembleStream(raw []byte) string {
	var (
		sb       strings.Builder
		fragment bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk struct {
			Response *string `json:"response"`
		}

		if err := json.Unmarshal(line, &chunk); err != nil || chunk.Response == nil {
			return string(raw)
		}

		fragment = true

		sb.WriteString(*chunk.Response)
	}

	if !fragment || scanner.Err() != nil {
		return string(raw)
	}

	return sb.String()
}

// balancedObject returns the first brace-balanced object in text that
// parses as JSON. Braces inside string literals are skipped.
func balancedObject(text string) ([]byte, bool) {
	for from := 0; from < len(text); {
		start := strings.IndexByte(text[from:], '{')
		if start < 0 {
			return nil, false
		}

		start += from

		depth := 0
		inString := false
		escaped := false

		for i := start; i < len(text); i++ {
			c := text[i]

			switch {
			case escaped:
				escaped = false
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					candidate := []byte(text[start : i+1])
					if json.Valid(candidate) {
						return candidate, true
					}

					i = len(text)
				}
			}
		}

		from = start + 1
	}

	return nil, false
}
