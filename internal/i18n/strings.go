// Package i18n resolves UI strings for the active language.
package i18n

import "strings"

// Base is the complete default-language dictionary. Every key the UI asks for
// must be present here.
var Base = map[string]string{
	"welcome":        "How's your health today, {name}?",
	"newScan":        "New Scan",
	"history":        "History",
	"profile":        "Profile",
	"settings":       "Settings",
	"signOut":        "Sign Out",
	"startScan":      "Start New Scan",
	"latestAnalysis": "Latest Analysis",
	"viewHistory":    "View History",
	"madeBy":         "Made by Mahak Salam",
	"language":       "Language",
	"analyzing":      "Lingua is analyzing...",
	"translating":    "Translating UI...",
	"waitAi":         "Connecting with AI to look for patterns...",
	"home":           "Home",
	"back":           "Back",
	"save":           "Save",
	"changeLang":     "Select your preferred language",
	"placeholder":    "Search languages...",
	"error":          "Oops! Something went wrong.",
	"translateError": "Could not translate the interface. Keeping the current language.",
	"busy":           "An analysis is already running.",
	"collision":      "Could not save the scan. Please try again.",
	"quota":          "The AI service is busy right now. Please try again later.",
	"invalidResult":  "The analysis came back incomplete. Please try another photo.",
	"invalidImage":   "Please choose a JPEG or PNG image.",
	"invalidProfile": "Please enter your name and email.",
	"privacy":        "Lingua is an AI health buddy, not a medical professional.",
	"urgency":        "Urgency",
	"captured":       "Scan Captured",
	"path":           "Personalized Recovery Path",
	"summary":        "Analysis shows {color} color with {texture} texture.",
	"streak":         "{days} Day Streak",
	"trends":         "Health Trends",
	"redness":        "Redness",
	"moisture":       "Moisture",
	"cracks":         "Cracks",
	"noScans":        "No scans yet. Start your first scan.",
	"compare":        "Compare Mode",
	"previousScan":   "Previous Scan",
	"backToHistory":  "Back to History",
	"markers":        "Identified Clinical Markers",
	"noMarkers":      "No specific condition markers detected.",
	"organs":         "Organ Balance",
	"temperament":    "Archetype Profile",
	"chat":           "Chat with Lingua",
	"chatHint":       "Ask about your results...",
	"chatError":      "Sorry, I had trouble thinking about that.",
	"share":          "Share Link",
	"openLink":       "Open Link",
	"imagePath":      "Image file",
	"name":           "Display Name",
	"email":          "Email",
	"signIn":         "Get Started",
}

// MissingKey is shown for an empty key.
const MissingKey = "?"

// Lookup resolves key through overlay, then base, then the key itself. The
// result is never empty.
func Lookup(overlay map[string]string, key string) string {
	if key == "" {
		return MissingKey
	}
	if v, ok := overlay[key]; ok && v != "" {
		return v
	}
	if v, ok := Base[key]; ok && v != "" {
		return v
	}
	return key
}

// Expand substitutes {name} placeholders in text.
func Expand(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{") {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
