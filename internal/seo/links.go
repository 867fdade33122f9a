package seo

import (
	"fmt"
	"regexp"
	"strings"

	"BlogEngine/internal/domain"
)

var relativeAnchorExpr = regexp.MustCompile(`<a[^>]+href=["']/[^"']*["']`)

// EnsureMoneyLinks guarantees every money page is linked from the
// article. Pages whose URL already appears anywhere in the HTML are left
// untouched, so the pass is idempotent; missing links are appended as a
// closing sentence inside the last paragraph.
func EnsureMoneyLinks(html string, pages []domain.MoneyPage) string {
	for _, page := range pages {
		if strings.Contains(html, page.URL) {
			continue
		}

		link := fmt.Sprintf(`<a href="%s" title="%s">%s</a>`, page.URL, page.Title, page.PrimaryAnchor())
		lastP := strings.LastIndex(html, "</p>")
		if lastP > 0 {
			insert := fmt.Sprintf(" Si te interesa, puedes conocer más sobre %s.", link)
			html = html[:lastP] + insert + html[lastP:]
		}
	}
	return html
}

// EnsureInternalLinks guarantees a minimum of internal links by adding
// "related article" sentences for posts whose keyword overlaps the
// current one. No-op once two relative links exist; posts whose slug is
// already present are never linked twice, so the pass is idempotent.
func EnsureInternalLinks(html string, posts []domain.ExistingPostRef, currentKeyword string) string {
	linkCount := len(relativeAnchorExpr.FindAllString(html, -1))
	if linkCount >= 2 {
		return html
	}

	current := strings.ToLower(currentKeyword)
	for _, post := range posts {
		if linkCount >= 3 {
			break
		}
		postKeyword := strings.ToLower(post.Keyword)
		if postKeyword == "" || !keywordsOverlap(postKeyword, current) {
			continue
		}
		if strings.Contains(html, post.Slug) {
			continue
		}

		link := fmt.Sprintf(`<a href="/%s" title="%s">%s</a>`, post.Slug, post.Title, post.Title)
		insert := fmt.Sprintf("<p>Te puede interesar: %s</p>", link)

		if ctaPos := strings.Index(html, `class="cta-box"`); ctaPos > 0 {
			if divBefore := strings.LastIndex(html[:ctaPos], "<div"); divBefore > 0 {
				html = html[:divBefore] + insert + "\n" + html[divBefore:]
			}
		} else if lastP := strings.LastIndex(html, "</p>"); lastP > 0 {
			html = html[:lastP+4] + "\n" + insert + html[lastP+4:]
		}
		linkCount++
	}

	return html
}

// keywordsOverlap reports whether two keywords are related: substring in
// either direction, or a shared word longer than 3 runes.
func keywordsOverlap(a, b string) bool {
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return true
	}
	for _, w := range strings.Fields(a) {
		if len([]rune(w)) > 3 && strings.Contains(b, w) {
			return true
		}
	}
	return false
}
