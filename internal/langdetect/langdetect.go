// Package langdetect picks a default locale for generation from free text.
// It is a keyword/script scorer tuned for short social-media text, not a
// statistical classifier.
package langdetect

import (
	"regexp"
	"strings"
)

const (
	scriptBonus    = 10
	diacriticBonus = 2
	minScore       = 2
)

// languages in scoring order; ties resolve to the earlier entry. Japanese
// precedes Chinese so kana+kanji text resolves to ja.
var languages = []string{"en", "es", "pt", "fr", "de", "it", "nl", "hi", "ar", "ja", "ko", "zh"}

var keywords = map[string][]string{
	"en": {"the", "and", "is", "are", "you", "for", "with", "this", "that", "business", "meeting", "work", "safety", "today"},
	"es": {"hola", "el", "la", "los", "las", "es", "está", "estás", "cómo", "qué", "para", "con", "por", "gracias", "negocio", "trabajo", "seguridad"},
	"pt": {"olá", "o", "os", "as", "é", "está", "como", "para", "com", "por", "obrigado", "negócio", "trabalho", "segurança", "você"},
	"fr": {"bonjour", "le", "la", "les", "est", "vous", "pour", "avec", "merci", "travail", "sécurité", "entreprise", "comment"},
	"de": {"hallo", "der", "die", "das", "ist", "und", "für", "mit", "danke", "arbeit", "sicherheit", "nicht", "wie"},
	"it": {"ciao", "il", "lo", "gli", "è", "sono", "per", "con", "grazie", "lavoro", "sicurezza", "come", "questo"},
	"nl": {"hallo", "de", "het", "een", "is", "en", "voor", "met", "dank", "werk", "veiligheid", "niet", "hoe"},
	"hi": {"नमस्ते", "है", "और", "के", "में", "काम", "सुरक्षा"},
	"ar": {"مرحبا", "في", "من", "على", "عمل", "سلامة"},
	"ja": {"こんにちは", "です", "ます", "仕事", "安全"},
	"ko": {"안녕하세요", "입니다", "있습니다", "일", "안전"},
	"zh": {"你好", "的", "是", "工作", "安全"},
}

var diacritics = map[string]*regexp.Regexp{
	"es": regexp.MustCompile(`[áéíóúñ¿¡]`),
	"pt": regexp.MustCompile(`[ãõçê]`),
	"fr": regexp.MustCompile(`[àâçèêëîïôùûœ]`),
	"de": regexp.MustCompile(`[äöüß]`),
}

// Detect returns the best-scoring language code, or "en" when no language
// scores at least 2.
func Detect(text string) string {
	text = strings.ToLower(text)
	tokens := tokenize(text)

	scores := make(map[string]int, len(languages))
	for _, lang := range languages {
		for _, tok := range tokens {
			for _, kw := range keywords[lang] {
				if tok == kw {
					scores[lang]++
					break
				}
			}
		}
	}

	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
			scores["zh"] += scriptBonus
		case (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF): // kana
			scores["ja"] += scriptBonus
		case r >= 0xAC00 && r <= 0xD7AF: // hangul
			scores["ko"] += scriptBonus
		case r >= 0x0600 && r <= 0x06FF: // arabic
			scores["ar"] += scriptBonus
		case r >= 0x0900 && r <= 0x097F: // devanagari
			scores["hi"] += scriptBonus
		}
	}

	for lang, re := range diacritics {
		if re.MatchString(text) {
			scores[lang] += diacriticBonus
		}
	}

	best, bestScore := "en", 0
	for _, lang := range languages {
		if scores[lang] > bestScore {
			best, bestScore = lang, scores[lang]
		}
	}
	if bestScore < minScore {
		return "en"
	}
	return best
}

// Supported reports whether code is one of the detectable languages.
func Supported(code string) bool {
	for _, lang := range languages {
		if lang == code {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()¿¡«»…-")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
