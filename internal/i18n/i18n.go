// SPDX-License-Identifier: MIT
package i18n

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/models"
	"golang.org/x/text/language"
)

// CookieName remembers the guest's language choice.
const CookieName = "menukitty_lang"

// Select picks the text for tag from t. It falls back to the best match
// among the available languages, then to fallback, then to any non-empty
// value in a stable order.
func Select(t models.Localized, tag, fallback string) string {
	if len(t) == 0 {
		return ""
	}
	if v := t[tag]; v != "" {
		return v
	}

	available := Languages(t)
	if len(available) > 0 {
		if want, err := language.Parse(tag); err == nil {
			tags := make([]language.Tag, 0, len(available))
			for _, a := range available {
				tags = append(tags, language.Make(a))
			}
			_, idx, conf := language.NewMatcher(tags).Match(want)
			if conf != language.No {
				return t[available[idx]]
			}
		}
	}

	if v := t[fallback]; v != "" {
		return v
	}
	if len(available) > 0 {
		return t[available[0]]
	}
	return ""
}

// Languages returns the keys of t with non-empty text, sorted.
func Languages(t models.Localized) []string {
	out := make([]string, 0, len(t))
	for k, v := range t {
		if v != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// FromRequest resolves the language for a storefront request: the lang
// query parameter, then the cookie, then Accept-Language, then def.
func FromRequest(c *gin.Context, def string) string {
	if q := normalize(c.Query("lang")); q != "" {
		return q
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		if v := normalize(cookie); v != "" {
			return v
		}
	}
	if header := c.GetHeader("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			base, _ := tags[0].Base()
			return base.String()
		}
	}
	if def == "" {
		return "en"
	}
	return def
}

// normalize reduces a tag to its base language, or "" when it does not
// parse.
func normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, _ := t.Base()
	return base.String()
}
