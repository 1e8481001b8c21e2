package providers

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fieldsSchema is the canonical schema for one extracted passport record.
// All four fields are required; a response that parses but misses any of
// them is a terminal validation failure, not a transient glitch.
const fieldsSchema = `{
	"type": "object",
	"properties": {
		"last_name": {"type": "string"},
		"first_name": {"type": "string"},
		"passport_number": {"type": "string"},
		"nationality": {"type": "string"}
	},
	"required": ["last_name", "first_name", "passport_number", "nationality"]
}`

var compiledFieldsSchema = jsonschema.MustCompileString("passport.json", fieldsSchema)

// decodeFields parses model output into PassportFields.
//
// Recovery mirrors what the model actually sends: raw JSON, JSON inside
// markdown code fences, or an array of records when the image holds
// multiple (first record wins). Unparseable output is classified as a
// transient model error; parseable output failing schema validation is
// invalid input.
func decodeFields(content string) (*PassportFields, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newError(KindTransientModel, "empty model response", nil)
	}

	raw, err := parseJSONCandidate(content)
	if err != nil {
		return nil, newError(KindTransientModel, "model returned malformed JSON", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, newError(KindTransientModel, "model returned malformed JSON", err)
	}

	// Multiple records: validate and take the first.
	if arr, ok := doc.([]any); ok {
		if len(arr) == 0 {
			return nil, newError(KindTransientModel, "model returned an empty record array", nil)
		}
		doc = arr[0]
		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, newError(KindTransientModel, "failed to reserialize record", err)
		}
	}

	if err := compiledFieldsSchema.Validate(doc); err != nil {
		return nil, newError(KindInvalidInput, "model response missing required passport fields", err)
	}

	var fields PassportFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, newError(KindTransientModel, "failed to decode passport fields", err)
	}
	return &fields, nil
}

// parseJSONCandidate finds the JSON payload in model output, stripping
// markdown code fences and surrounding prose if present.
func parseJSONCandidate(content string) (json.RawMessage, error) {
	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	var lastErr error
	for _, c := range candidates {
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(c), &raw); err == nil {
			return raw, nil
		} else {
			lastErr = err
		}
	}
	return nil, lastErr
}

// stripCodeFences removes a surrounding markdown code fence block.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}

// extractJSONCandidate pulls the outermost {...} or [...] span out of
// surrounding text.
func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)

	objStart := strings.Index(trimmed, "{")
	arrStart := strings.Index(trimmed, "[")

	var start int
	var closeChar string
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		start = arrStart
		closeChar = "]"
	case objStart >= 0:
		start = objStart
		closeChar = "}"
	default:
		return ""
	}

	end := strings.LastIndex(trimmed, closeChar)
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}
