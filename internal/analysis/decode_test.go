package analysis

import (
	"errors"
	"strings"
	"testing"
)

const validResult = `{
  "redness": 42, "cracks": 10, "moisture": 65,
  "color": "pale pink", "texture": "smooth",
  "temperament": {"archetype": "Phlegmatic", "description": "calm", "traits": ["steady"]},
  "detectedConditions": [{"name": "Visual Marker for Anemia", "likelihood": 30, "evidence": "pale", "severity": "low"}],
  "viralCommon": {"detected": false, "likelihood": 5, "markers": [], "description": ""},
  "chronicSerious": {"detected": false, "likelihood": 3, "markers": [], "description": ""},
  "organHealth": {"liver": "ok", "kidney": "ok", "digestion": "ok", "heart": "ok"},
  "mentalState": {"detected": false, "likelihood": 10, "markers": [], "description": ""},
  "everydayStuff": {"detected": true, "likelihood": 60, "markers": ["coffee"], "description": "stain"},
  "guidance": {"hydration": "drink", "nutrition": "greens", "lifestyle": "walk", "hygiene": "scrape",
    "recoverySteps": ["one", "two"], "medicalUrgency": "low"}
}`

func TestDecodeResult(t *testing.T) {
	got, err := DecodeResult(validResult)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Redness != 42 || got.Color != "pale pink" || got.Temperament.Archetype != "Phlegmatic" {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(got.Guidance.RecoverySteps) != 2 || got.EverydayStuff.Markers[0] != "coffee" {
		t.Fatalf("unexpected nested fields %+v", got)
	}

	fenced := "```json\n" + validResult + "\n```"
	if _, err := DecodeResult(fenced); err != nil {
		t.Fatalf("decode fenced: %v", err)
	}
}

func TestDecodeResultRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":       "I cannot help with that",
		"redness high":   strings.Replace(validResult, `"redness": 42`, `"redness": 142`, 1),
		"bad severity":   strings.Replace(validResult, `"severity": "low"`, `"severity": "extreme"`, 1),
		"bad urgency":    strings.Replace(validResult, `"medicalUrgency": "low"`, `"medicalUrgency": "urgent"`, 1),
		"missing color":  strings.Replace(validResult, `"color": "pale pink"`, `"color": ""`, 1),
		"negative score": strings.Replace(validResult, `"likelihood": 60`, `"likelihood": -1`, 1),
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeResult(content); !errors.Is(err, ErrInvalidResult) {
				t.Fatalf("expected ErrInvalidResult, got %v", err)
			}
		})
	}
	if _, err := DecodeResult("  "); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestDecodeTranslationKeepsStrings(t *testing.T) {
	got, err := DecodeTranslation(`{"home": "خانه", "count": 3, "nested": {"a": "b"}, "history": "تاریخچه"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got["home"] != "خانه" || got["history"] != "تاریخچه" {
		t.Fatalf("unexpected translation %v", got)
	}
	if _, err := DecodeTranslation("[1,2]"); err == nil {
		t.Fatalf("expected error for non-object payload")
	}
}

func TestPrompts(t *testing.T) {
	if p := AnalysisSystemPrompt("fa"); !strings.Contains(p, "Persian") || !strings.Contains(p, `"medicalUrgency"`) {
		t.Fatalf("analysis prompt missing language or schema")
	}
	p, err := TranslatePrompt("de", map[string]string{"home": "Home"})
	if err != nil {
		t.Fatalf("translate prompt: %v", err)
	}
	if !strings.Contains(p, "German") || !strings.Contains(p, `{"home":"Home"}`) {
		t.Fatalf("unexpected translate prompt %q", p)
	}
	result, _ := DecodeResult(validResult)
	chat := ChatPrompt("What should I eat?", result, "xx")
	for _, want := range []string{"pale pink", "Phlegmatic", "Visual Marker for Anemia", "What should I eat?", "in xx"} {
		if !strings.Contains(chat, want) {
			t.Fatalf("chat prompt missing %q", want)
		}
	}
}
