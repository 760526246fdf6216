package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lingua-health/lingua/internal/i18n"
	"github.com/lingua-health/lingua/internal/model"
)

// languageName spells out a tag for prompts, falling back to the tag itself.
func languageName(tag string) string {
	if l, ok := i18n.FindLanguage(tag); ok {
		return l.Name
	}
	return tag
}

// AnalysisSystemPrompt directs the model to return one JSON analysis object.
func AnalysisSystemPrompt(lang string) string {
	return `Act as a world-class diagnostic tongue analysis expert. You must produce one valid JSON object only (no markdown, no commentary, no code fences).

Perform a multi-layered analysis:
1. Condition markers. When the visual markers strongly suggest a condition, name it as "Visual Marker for <condition>":
   - Diabetes: deep yellow coating, dry surface, smooth red patches.
   - Anemia: pale or bloodless appearance with a glossy, smooth texture.
   - Strep/Scarlet fever: bright strawberry red with raised papillae.
   - Oral thrush: thick, white, curd-like coating.
   - Chronic fatigue/stress: scalloped edges and a quivering tongue.
   - Vitamin deficiency: B12 or iron markers from redness and glossiness.
2. Temperament. Name the constitution (Sanguine, Phlegmatic, Choleric, Melancholic, or a TCM pattern such as Damp-Heat) from coating, moisture and color, and explain its effect on energy and personality.
3. Recovery path. A step-by-step list of lifestyle and dietary changes.
   STRICT: never suggest chemicals, pharmaceutical pills, over-the-counter medication or synthetic treatment. Only whole foods and nutrients, hydration, oral hygiene habits and stress management.

Requirements:
- redness, cracks, moisture and every likelihood are numbers from 0 to 100.
- severity is one of low, moderate, high.
- medicalUrgency is one of low, medium, high.
- All text fields are written in ` + languageName(lang) + `.

Schema (example with empty values):
` + resultSchema
}

// AnalysisUserPrompt accompanies the image part.
func AnalysisUserPrompt() string {
	return "Analyze this tongue image and return the JSON object."
}

var resultSchema = func() string {
	category := model.CategoryResult{Markers: []string{}}
	example := model.AnalysisResult{
		Temperament:        model.Temperament{Traits: []string{}},
		DetectedConditions: []model.DetectedCondition{{Severity: "low"}},
		ViralCommon:        category,
		ChronicSerious:     category,
		MentalState:        category,
		EverydayStuff:      category,
		Guidance:           model.Guidance{RecoverySteps: []string{}, MedicalUrgency: "low"},
	}
	b, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}()

// TranslatePrompt asks for the UI labels in lang under the same keys.
func TranslatePrompt(lang string, source map[string]string) (string, error) {
	labels, err := json.Marshal(source)
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}
	return fmt.Sprintf(`Translate the following UI labels into %s (%s).
Return ONLY a JSON object with the same keys. Keep placeholders in braces such as {name} unchanged.
UI Labels: %s`, languageName(lang), lang, labels), nil
}

// ChatPrompt frames a follow-up question with the result it refers to.
func ChatPrompt(question string, result model.AnalysisResult, lang string) string {
	markers := make([]string, 0, len(result.DetectedConditions))
	for _, c := range result.DetectedConditions {
		markers = append(markers, c.Name)
	}
	return fmt.Sprintf(`You are Lingua, a supportive AI health buddy.
Context: the user's tongue shows %s color and %s texture.
Temperament: %s.
Detected markers: %s.

Question: %q

Rules:
- Answer in a supportive, buddy-like tone in %s.
- Do not suggest any chemicals, pills, or medications.
- Focus on lifestyle, food-based nutrition, and hydration.
- Keep it helpful and reassuring.`,
		result.Color, result.Texture, result.Temperament.Archetype,
		strings.Join(markers, ", "), question, languageName(lang))
}
