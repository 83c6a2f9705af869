package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Structured makes a generation call that must return a JSON object conforming
// to the given JSON Schema, and unmarshals it into out.
//
// The raw response is tolerant of markdown fencing and surrounding prose: the
// first balanced JSON object in the content is extracted before validation.
// Every failure mode (transport, extraction, schema, unmarshal) is returned as
// an ordinary error so callers can fall back.
func Structured(ctx context.Context, provider Provider, request Request, schema map[string]interface{}, out interface{}) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return fmt.Errorf("invalid output schema: %w", err)
	}

	response, err := provider.Call(ctx, request)
	if err != nil {
		return fmt.Errorf("generation call failed: %w", err)
	}

	raw, err := ExtractJSON(response.Content)
	if err != nil {
		return err
	}

	result, err := compiled.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("response does not match schema: %s", strings.Join(issues, "; "))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to unmarshal structured response: %w", err)
	}

	return nil
}

// ExtractJSON pulls the first balanced top-level JSON object out of free text.
// Handles responses wrapped in markdown fences or prefixed with prose.
func ExtractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response")
}
