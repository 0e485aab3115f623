package locale

import "strings"

const (
	LanguagePortuguese = "pt"
	LanguageEnglish    = "en"
)

type Preference struct {
	Language string
	Locale   string
}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "pt") || trimmed == "br" {
		return LanguagePortuguese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 取 Accept-Language 中第一个可识别的语言
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if language := NormalizeLanguage(tag); language != "" {
			return language
		}
	}
	return ""
}

func PreferenceForLanguage(language string) Preference {
	if NormalizeLanguage(language) == LanguageEnglish {
		return Preference{Language: LanguageEnglish, Locale: "en-US"}
	}
	return Preference{Language: LanguagePortuguese, Locale: "pt-BR"}
}

// Pick returns the text matching the request language, defaulting to Portuguese.
func Pick(language, english, portuguese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return portuguese
	}
	if portuguese != "" {
		return portuguese
	}
	return english
}
