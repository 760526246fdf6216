// Package analysis talks to the external AI service that analyzes tongue
// images, translates UI strings, and answers follow-up questions.
package analysis

import (
	"context"
	"errors"

	"github.com/lingua-health/lingua/internal/model"
)

var (
	// ErrQuotaExceeded indicates the provider rejected the call for quota or rate limits (HTTP 429).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrEmptyResponse is returned when the provider answers without content.
	ErrEmptyResponse = errors.New("ai returned an empty response")
	// ErrInvalidResult marks analysis payloads that violate the result schema.
	ErrInvalidResult = model.ErrInvalidResult
)

// Analyzer turns a captured image into an analysis result written in lang.
type Analyzer interface {
	Analyze(ctx context.Context, image string, lang string) (model.AnalysisResult, error)
}

// Chatter answers a question about a result in lang.
type Chatter interface {
	Chat(ctx context.Context, question string, result model.AnalysisResult, lang string) (string, error)
}
