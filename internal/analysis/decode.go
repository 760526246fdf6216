package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lingua-health/lingua/internal/model"
)

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[i+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// DecodeResult parses and validates an analysis payload.
func DecodeResult(content string) (model.AnalysisResult, error) {
	content = stripFences(content)
	if content == "" {
		return model.AnalysisResult{}, ErrEmptyResponse
	}
	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: decode: %v", ErrInvalidResult, err)
	}
	if err := result.Validate(); err != nil {
		return model.AnalysisResult{}, err
	}
	return result, nil
}

// DecodeTranslation parses a translated dictionary, keeping string values only.
func DecodeTranslation(content string) (map[string]string, error) {
	content = stripFences(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode translation: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out, nil
}
