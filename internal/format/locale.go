// Package format renders values for display: dates in the reader's locale,
// relative times, SLA buckets, BitLocker status, and sanitized markdown.
package format

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultLanguage = "en"

var (
	supported = []language.Tag{
		language.English,
		language.German,
		language.French,
		language.Spanish,
		language.Portuguese,
	}
	matcher = language.NewMatcher(supported)

	dateLayouts = map[string]string{
		"en": "Jan 2, 2006",
		"de": "02.01.2006",
		"fr": "02/01/2006",
		"es": "02/01/2006",
		"pt": "02/01/2006",
	}
)

// SupportedLanguages lists the base language codes the UI formats for.
func SupportedLanguages() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		base, _ := tag.Base()
		out = append(out, base.String())
	}
	return out
}

// MatchLanguage picks the best supported language for an Accept-Language
// header or a bare code, falling back to English.
func MatchLanguage(accept string) string {
	if accept == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// IsSupported reports whether code is one of SupportedLanguages.
func IsSupported(code string) bool {
	_, ok := dateLayouts[code]
	return ok
}

func layout(lang string) string {
	if l, ok := dateLayouts[lang]; ok {
		return l
	}
	return dateLayouts[DefaultLanguage]
}

// Date formats t as a calendar date for lang. The zero time renders as "".
func Date(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout(lang))
}

// DateTime is Date followed by a 24 hour clock, or a 12 hour clock in English.
func DateTime(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if lang == "" || lang == DefaultLanguage || !IsSupported(lang) {
		return t.Format(layout(DefaultLanguage) + " 3:04 PM")
	}
	return t.Format(layout(lang) + " 15:04")
}

// Number groups digits the way lang does (1,234 vs 1.234).
func Number(n int64, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", n)
}
