package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Tags for the languages the classifier was trained on.
var (
	English = language.English.String()
	Hindi   = language.Hindi.String()
	Unknown = language.Und.String()
)

// Detect returns a BCP-47 language tag for the input text.
//
// Detection is a script-ratio heuristic: Devanagari codepoints indicate
// Hindi, Latin letters indicate English. Texts dominated by neither
// script fall back to a short list of romanized Hindi function words
// before defaulting to English.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown
	}

	var devanagari, latin, total int
	for _, r := range text {
		total++
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}

	if total == 0 {
		return Unknown
	}

	if float64(devanagari)/float64(total) > 0.1 {
		return Hindi
	}
	if float64(latin)/float64(total) > 0.1 {
		return English
	}

	lower := strings.ToLower(text)
	for _, word := range []string{"hai", "nahi", "kya", "tha", "thi", "hota", "hoti"} {
		if strings.Contains(lower, word) {
			return Hindi
		}
	}

	return English
}

// IsSupported reports whether the tag is one the text model understands
func IsSupported(tag string) bool {
	return tag == English || tag == Hindi
}

// Name returns the human-readable name for a detected tag
func Name(tag string) string {
	switch tag {
	case English:
		return "English"
	case Hindi:
		return "Hindi"
	default:
		return "Unknown"
	}
}
