package usecase

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"BlogEngine/internal/seo"
)

var (
	fenceOpenExpr  = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	jsonObjectExpr = regexp.MustCompile(`\{[\s\S]*\}`)
	htmlBlockExpr  = regexp.MustCompile(`(?i)<(p|h[1-6]|ul|ol|div|article)[\s>]`)
)

// articleMeta is the parsed form of one generation response.
type articleMeta struct {
	Title           string
	Slug            string
	MetaDescription string
	Excerpt         string
	BodyHTML        string
}

// parseArticle extracts the metadata lines (META_TITLE, META_DESCRIPTION,
// SLUG, EXTRACTO) from a generation response and returns the remaining
// body. Any subset of the lines may be missing; title and slug then
// derive from the keyword. Markdown fences are stripped, and a body
// without HTML block tags is treated as Markdown and converted.
func parseArticle(content, keyword string) articleMeta {
	meta := articleMeta{
		Title: seo.TitleCase(keyword),
		Slug:  seo.Slugify(keyword),
	}

	content = stripFences(content)
	var bodyLines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "META_TITLE:"):
			meta.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "META_TITLE:"))
		case strings.HasPrefix(trimmed, "META_DESCRIPTION:"):
			meta.MetaDescription = strings.TrimSpace(strings.TrimPrefix(trimmed, "META_DESCRIPTION:"))
		case strings.HasPrefix(trimmed, "SLUG:"):
			if slug := strings.TrimSpace(strings.TrimPrefix(trimmed, "SLUG:")); slug != "" {
				meta.Slug = slug
			}
		case strings.HasPrefix(trimmed, "EXTRACTO:"):
			meta.Excerpt = strings.TrimSpace(strings.TrimPrefix(trimmed, "EXTRACTO:"))
		default:
			bodyLines = append(bodyLines, line)
		}
	}
	if meta.Title == "" {
		meta.Title = seo.TitleCase(keyword)
	}

	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	meta.BodyHTML = renderBody(body)
	return meta
}

// stripFences removes Markdown code-fence lines wrapping a response.
func stripFences(content string) string {
	return strings.TrimSpace(fenceOpenExpr.ReplaceAllString(content, ""))
}

// renderBody passes HTML through untouched and converts Markdown-looking
// text so downstream auditing always sees HTML.
func renderBody(body string) string {
	if body == "" || htmlBlockExpr.MatchString(body) {
		return body
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		return body
	}
	return strings.TrimSpace(buf.String())
}

// parseJSONObject decodes a JSON response into dst, tolerating fence
// wrapping and prose around the object.
func parseJSONObject(content string, dst any) bool {
	text := stripFences(content)
	if json.Unmarshal([]byte(text), dst) == nil {
		return true
	}
	if match := jsonObjectExpr.FindString(text); match != "" {
		return json.Unmarshal([]byte(match), dst) == nil
	}
	return false
}
