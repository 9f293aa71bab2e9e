package wptl

import "strings"

// Language is a translation target offered to users.
type Language struct {
	Code string `json:"code"` // Short code used in slugs, e.g. "es"
	Name string `json:"name"` // Name used in prompts and page titles, e.g. "Spanish"
}

// Languages is the list of targets offered by default, in display order.
var Languages = []Language{
	{Code: "zh", Name: "Chinese (Simplified)"},
	{Code: "de", Name: "German"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "it", Name: "Italian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "ar", Name: "Arabic"},
	{Code: "nl", Name: "Dutch"},
	{Code: "pl", Name: "Polish"},
	{Code: "sv", Name: "Swedish"},
	{Code: "tr", Name: "Turkish"},
	{Code: "hi", Name: "Hindi"},
}

// LanguageNames maps locale codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	"en":    "English",
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr_FR": "French (France)",
	"fr_CA": "French (Canada)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
	"ar_SA": "Arabic (Saudi Arabia)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"ko_KR": "Korean (South Korea)",
	"nl_NL": "Dutch (Netherlands)",
	"pl_PL": "Polish (Poland)",
	"ru_RU": "Russian (Russia)",
	"sv_SE": "Swedish (Sweden)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"vi_VN": "Vietnamese (Vietnam)",
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// ResolveLanguage accepts a code ("es", "es_ES", "es-ES") or a display name
// ("Spanish") and returns the matching Language. Unknown values resolve to a
// Language whose Code and Name are both the input, so callers can still pass
// arbitrary language names through to the provider.
func ResolveLanguage(value string) Language {
	v := strings.TrimSpace(value)
	for _, l := range Languages {
		if strings.EqualFold(l.Code, v) || strings.EqualFold(l.Name, v) {
			return l
		}
	}

	locale := NormalizeLocale(v)
	for code, name := range LanguageNames {
		if strings.EqualFold(code, locale) {
			return Language{Code: code, Name: name}
		}
		if strings.EqualFold(name, v) {
			return Language{Code: code, Name: name}
		}
	}

	// Region variant of a listed language, e.g. "de_AT"
	base := normalizeBaseLang(locale)
	for _, l := range Languages {
		if l.Code == base && base != strings.ToLower(locale) {
			return Language{Code: locale, Name: l.Name}
		}
	}

	return Language{Code: v, Name: v}
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if langCode == "" {
		return ""
	}
	return ResolveLanguage(langCode).Name
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	if RTLLanguages[normalizeBaseLang(langCode)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
