package seo

import (
	"regexp"
	"strings"
)

var (
	nonSlugExpr    = regexp.MustCompile(`[^a-z0-9\s-]`)
	spacesExpr     = regexp.MustCompile(`\s+`)
	dashRunExpr    = regexp.MustCompile(`-+`)
	accentReplacer = strings.NewReplacer(
		"á", "a", "à", "a", "ä", "a", "â", "a",
		"é", "e", "è", "e", "ë", "e", "ê", "e",
		"í", "i", "ì", "i", "ï", "i", "î", "i",
		"ó", "o", "ò", "o", "ö", "o", "ô", "o",
		"ú", "u", "ù", "u", "ü", "u", "û", "u",
		"ñ", "n",
	)
)

// Slugify turns a keyword into a URL-friendly slug: lowercase, accents
// folded, spaces collapsed to single hyphens.
func Slugify(keyword string) string {
	slug := strings.ToLower(strings.TrimSpace(keyword))
	slug = accentReplacer.Replace(slug)
	slug = nonSlugExpr.ReplaceAllString(slug, "")
	slug = spacesExpr.ReplaceAllString(slug, "-")
	slug = dashRunExpr.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// TitleCase capitalizes each word of a keyword; used as the fallback
// title when the model omits META_TITLE.
func TitleCase(keyword string) string {
	words := strings.Fields(keyword)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
