package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrNoStructuredResponse is returned when model output contains no JSON
// object at all.
var ErrNoStructuredResponse = errors.New("could not get a structured response")

// jsonObjectPattern grabs the first '{' through the last '}' in the text.
// Deliberately greedy and non-recursive: prose around the object is
// tolerated, multiple JSON-like spans are not disambiguated.
var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractJSONObject recovers the JSON object span embedded in free-form
// model output. Markdown code fences are stripped first. Kept as a named
// seam so a stricter parser could replace it without touching callers.
func ExtractJSONObject(raw string) (string, error) {
	cleaned := stripFences(raw)

	span := jsonObjectPattern.FindString(cleaned)
	if span == "" {
		return "", ErrNoStructuredResponse
	}
	return span, nil
}

// ParseModelOutput converts direct-mode model output into a Result. A
// missing JSON span yields ErrNoStructuredResponse; malformed JSON inside
// the span propagates the parse error with no repair attempt.
func ParseModelOutput(raw string) (*Result, error) {
	span, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return &result, nil
}

// DecodePayload converts an already-structured proxy response into a
// Result, tolerating absent optional fields and loosely typed numbers.
func DecodePayload(payload map[string]any) (*Result, error) {
	var result Result

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &result,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode analysis payload: %w", err)
	}
	return &result, nil
}

// stripFences removes a surrounding markdown code fence from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
