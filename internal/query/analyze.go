package query

import (
	"unicode"
	"unicode/utf8"

	"github.com/certogo-tech/searchproxy/internal/tokenizer"
)

// thaiDetectionThreshold and englishDetectionThreshold are the ratio
// thresholds above which a language is considered present.
const (
	thaiDetectionThreshold    = 0.1
	englishDetectionThreshold = 0.1
)

// analysis is the intermediate result of analyzing the original text before
// tokenization is attempted.
type analysis struct {
	thaiDetected    bool
	englishDetected bool
	mixedContent    bool
	primaryLanguage PrimaryLanguage
	thaiRatio       float64
	englishRatio    float64
}

// analyze counts Thai-block code points and Latin-letter runs against the
// non-whitespace length of text.
func analyze(text string) analysis {
	var thaiCount, latinCount, nonSpace int

	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		switch {
		case tokenizer.IsThaiRune(r):
			thaiCount++
		case isLatinLetter(r):
			latinCount++
		}
	}

	if nonSpace == 0 {
		return analysis{primaryLanguage: LanguageUnknown}
	}

	thaiRatio := float64(thaiCount) / float64(nonSpace)
	englishRatio := float64(latinCount) / float64(nonSpace)

	a := analysis{
		thaiRatio:       thaiRatio,
		englishRatio:    englishRatio,
		thaiDetected:    thaiRatio > thaiDetectionThreshold,
		englishDetected: englishRatio > englishDetectionThreshold,
	}
	a.mixedContent = a.thaiDetected && a.englishDetected

	switch {
	case thaiRatio == 0 && englishRatio == 0:
		a.primaryLanguage = LanguageUnknown
	case thaiRatio > englishRatio:
		a.primaryLanguage = LanguageThai
	case englishRatio > thaiRatio:
		a.primaryLanguage = LanguageEnglish
	default:
		a.primaryLanguage = LanguageMixed
	}

	return a
}

func isLatinLetter(r rune) bool {
	if r >= utf8.RuneSelf {
		return unicode.Is(unicode.Latin, r)
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
