package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/helpdesk-io/helpdesk-web/internal/format"
)

const (
	LanguageContextKey = "language"
	languageCookie     = "lang"
)

// Language picks the display language: ?lang=, then the lang cookie, then
// Accept-Language, then the default.
func Language(defaultLang string) gin.HandlerFunc {
	if !format.IsSupported(defaultLang) {
		defaultLang = format.DefaultLanguage
	}
	return func(c *gin.Context) {
		lang := detectLanguage(c, defaultLang)
		c.Set(LanguageContextKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

func detectLanguage(c *gin.Context, defaultLang string) string {
	if lang := c.Query("lang"); format.IsSupported(lang) {
		c.SetCookie(languageCookie, lang, 86400*30, "/", "", false, true)
		return lang
	}
	if lang, err := c.Cookie(languageCookie); err == nil && format.IsSupported(lang) {
		return lang
	}
	if header := c.GetHeader("Accept-Language"); header != "" {
		return format.MatchLanguage(header)
	}
	return defaultLang
}

// GetLanguage gets the current language from context
func GetLanguage(c *gin.Context) string {
	if lang := c.GetString(LanguageContextKey); lang != "" {
		return lang
	}
	return format.DefaultLanguage
}
