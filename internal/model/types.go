// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"time"
)

// DefaultLanguage is the language of the built-in UI dictionary.
const DefaultLanguage = "en"

// ErrInvalidResult reports an analysis payload that does not match the expected schema.
var ErrInvalidResult = errors.New("invalid analysis result")

// UserProfile is the locally captured display identity. It is not a trust boundary.
type UserProfile struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PreferredLanguage string `json:"language,omitempty"`
}

// ScanRecord is one completed analysis. Records are immutable once created.
type ScanRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Image     string         `json:"image"`
	Results   AnalysisResult `json:"results"`
	Summary   string         `json:"summary"`
}

// Temperament describes the constitutional archetype reported by the analysis.
type Temperament struct {
	Archetype   string   `json:"archetype"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
}

// DetectedCondition is a named visual marker with its likelihood.
type DetectedCondition struct {
	Name       string  `json:"name"`
	Likelihood float64 `json:"likelihood"`
	Evidence   string  `json:"evidence"`
	Severity   string  `json:"severity"`
}

// CategoryResult is a per-category finding.
type CategoryResult struct {
	Detected    bool     `json:"detected"`
	Likelihood  float64  `json:"likelihood"`
	Markers     []string `json:"markers"`
	Description string   `json:"description"`
}

// OrganBalance holds free-text notes per organ system.
type OrganBalance struct {
	Liver     string `json:"liver"`
	Kidney    string `json:"kidney"`
	Digestion string `json:"digestion"`
	Heart     string `json:"heart"`
}

// Guidance holds lifestyle suggestions and the overall urgency.
type Guidance struct {
	Hydration      string   `json:"hydration"`
	Nutrition      string   `json:"nutrition"`
	Lifestyle      string   `json:"lifestyle"`
	Hygiene        string   `json:"hygiene"`
	RecoverySteps  []string `json:"recoverySteps"`
	MedicalUrgency string   `json:"medicalUrgency"`
}

// AnalysisResult is the payload returned by the analysis service. The session
// stores and forwards it without interpreting anything beyond the trend metrics.
type AnalysisResult struct {
	Redness  float64 `json:"redness"`
	Cracks   float64 `json:"cracks"`
	Moisture float64 `json:"moisture"`
	Color    string  `json:"color"`
	Texture  string  `json:"texture"`

	Temperament        Temperament         `json:"temperament"`
	DetectedConditions []DetectedCondition `json:"detectedConditions"`

	ViralCommon    CategoryResult `json:"viralCommon"`
	ChronicSerious CategoryResult `json:"chronicSerious"`
	OrganHealth    OrganBalance   `json:"organHealth"`
	MentalState    CategoryResult `json:"mentalState"`
	EverydayStuff  CategoryResult `json:"everydayStuff"`

	Guidance Guidance `json:"guidance"`
}

var (
	severities = map[string]struct{}{"low": {}, "moderate": {}, "high": {}}
	urgencies  = map[string]struct{}{"low": {}, "medium": {}, "high": {}}
)

// Validate checks the structural constraints of the analysis schema.
func (r AnalysisResult) Validate() error {
	scores := []struct {
		name  string
		value float64
	}{
		{"redness", r.Redness},
		{"cracks", r.Cracks},
		{"moisture", r.Moisture},
		{"viralCommon.likelihood", r.ViralCommon.Likelihood},
		{"chronicSerious.likelihood", r.ChronicSerious.Likelihood},
		{"mentalState.likelihood", r.MentalState.Likelihood},
		{"everydayStuff.likelihood", r.EverydayStuff.Likelihood},
	}
	for i, c := range r.DetectedConditions {
		scores = append(scores, struct {
			name  string
			value float64
		}{fmt.Sprintf("detectedConditions[%d].likelihood", i), c.Likelihood})
	}
	for _, s := range scores {
		if s.value < 0 || s.value > 100 {
			return fmt.Errorf("%w: %s out of range: %v", ErrInvalidResult, s.name, s.value)
		}
	}
	if r.Color == "" || r.Texture == "" {
		return fmt.Errorf("%w: color and texture are required", ErrInvalidResult)
	}
	for i, c := range r.DetectedConditions {
		if _, ok := severities[c.Severity]; !ok {
			return fmt.Errorf("%w: detectedConditions[%d].severity %q", ErrInvalidResult, i, c.Severity)
		}
	}
	if _, ok := urgencies[r.Guidance.MedicalUrgency]; !ok {
		return fmt.Errorf("%w: guidance.medicalUrgency %q", ErrInvalidResult, r.Guidance.MedicalUrgency)
	}
	return nil
}

// TrendPoint is one charted sample derived from a scan record.
type TrendPoint struct {
	Date     string
	Redness  float64
	Moisture float64
	Cracks   float64
}

// TrendSummary aggregates a trend window.
type TrendSummary struct {
	Samples      int
	MeanRedness  float64
	MeanMoisture float64
	MeanCracks   float64
	MaxRedness   float64
	MinMoisture  float64
}
