package i18n

import "strings"

// Language is an entry of the language picker.
type Language struct {
	Code       string
	Name       string
	NativeName string
}

// Languages lists the selectable UI languages.
var Languages = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "fa", Name: "Persian", NativeName: "فارسی"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
}

var rtl = map[string]struct{}{"fa": {}, "ar": {}, "he": {}, "ur": {}}

// Normalize reduces a locale such as "fa-IR" or "en_US.UTF-8" to its language code.
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if i := strings.IndexAny(tag, "-_."); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// IsRTL reports whether tag is written right to left.
func IsRTL(tag string) bool {
	_, ok := rtl[Normalize(tag)]
	return ok
}

// FindLanguage returns the picker entry for tag.
func FindLanguage(tag string) (Language, bool) {
	tag = Normalize(tag)
	for _, l := range Languages {
		if l.Code == tag {
			return l, true
		}
	}
	return Language{}, false
}
