package seo

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MinScore is the pass bar: articles scoring below it are held for
// manual review instead of being approved.
const MinScore = 70

var tagExpr = regexp.MustCompile(`<[^>]+>`)

// Check is the outcome of a single checklist item.
type Check struct {
	Name   string `json:"check"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Stats summarizes the measurable properties of the audited article.
type Stats struct {
	WordCount      int     `json:"palabras"`
	H2Count        int     `json:"h2s"`
	InternalLinks  int     `json:"links_internos"`
	ExternalLinks  int     `json:"links_externos"`
	KeywordDensity float64 `json:"keyword_density"`
	KeywordCount   int     `json:"keyword_count"`
}

// Report is the result of auditing one article against the on-page
// checklist. Score is always within [0, 100].
type Report struct {
	Score            int      `json:"puntuacion"`
	Passed           bool     `json:"aprobado"`
	Checks           []Check  `json:"checks"`
	CriticalProblems []string `json:"problemas_criticos"`
	Suggestions      []string `json:"sugerencias"`
	Stats            Stats    `json:"stats"`
}

// Input carries one candidate article into Audit.
type Input struct {
	Title           string
	MetaDescription string
	Slug            string
	BodyHTML        string

	PrimaryKeyword    string
	SecondaryKeywords []string

	// ExistingPostsCount enables the first-article exemption for the
	// internal-link check when 0 or 1; pass a negative value when the
	// tenant's post count is unknown.
	ExistingPostsCount int
}

// Audit scores an article against the fixed weighted checklist. It is
// stateless and deterministic: identical input always yields an
// identical report. All text comparisons are lowercase; the body is
// analyzed as plain text with tags stripped.
func Audit(in Input) Report {
	var (
		checks      []Check
		problems    []string
		suggestions []string
		points      int
	)

	keyword := strings.ToLower(in.PrimaryKeyword)
	secondary := make([]string, 0, len(in.SecondaryKeywords))
	for _, k := range in.SecondaryKeywords {
		secondary = append(secondary, strings.ToLower(k))
	}

	textContent := strings.ToLower(tagExpr.ReplaceAllString(in.BodyHTML, " "))
	words := strings.Fields(textContent)
	wordCount := len(words)

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(in.BodyHTML))

	// --- 1. Title (15 pts) ---
	titleLower := strings.ToLower(in.Title)
	titleLen := utf8.RuneCountInString(in.Title)
	hasKeyword := strings.Contains(titleLower, keyword)
	keywordEarly := strings.HasPrefix(titleLower, keyword) || strings.Index(titleLower, keyword) < 20

	switch {
	case hasKeyword && keywordEarly:
		checks = append(checks, Check{Name: "Keyword en título (al inicio)", Passed: true,
			Detail: fmt.Sprintf("'%s' encontrada en posición óptima", keyword)})
		points += 15
	case hasKeyword:
		checks = append(checks, Check{Name: "Keyword en título", Passed: true, Detail: "Presente pero no al inicio"})
		points += 10
		suggestions = append(suggestions, fmt.Sprintf("Mover '%s' más al inicio del título", keyword))
	default:
		checks = append(checks, Check{Name: "Keyword en título", Passed: false,
			Detail: fmt.Sprintf("'%s' NO encontrada en título", keyword)})
		problems = append(problems, fmt.Sprintf("Keyword principal '%s' no está en el título", keyword))
	}

	// --- 2. Title length (5 pts) ---
	if titleLen <= 60 {
		checks = append(checks, Check{Name: "Largo de título", Passed: true,
			Detail: fmt.Sprintf("%d chars (máx 60)", titleLen)})
		points += 5
	} else {
		checks = append(checks, Check{Name: "Largo de título", Passed: false,
			Detail: fmt.Sprintf("%d chars (máx 60)", titleLen)})
		suggestions = append(suggestions, fmt.Sprintf("Acortar título a menos de 60 caracteres (actual: %d)", titleLen))
	}

	// --- 3–4. Meta description (10 pts) ---
	metaLower := strings.ToLower(in.MetaDescription)
	metaLen := utf8.RuneCountInString(in.MetaDescription)

	if strings.Contains(metaLower, keyword) {
		checks = append(checks, Check{Name: "Keyword en meta description", Passed: true})
		points += 5
	} else {
		checks = append(checks, Check{Name: "Keyword en meta description", Passed: false})
		problems = append(problems, "Keyword no está en la meta description")
	}

	if metaLen >= 120 && metaLen <= 155 {
		checks = append(checks, Check{Name: "Largo de meta description", Passed: true,
			Detail: fmt.Sprintf("%d chars", metaLen)})
		points += 5
	} else {
		checks = append(checks, Check{Name: "Largo de meta description", Passed: false,
			Detail: fmt.Sprintf("%d chars (ideal: 120-155)", metaLen)})
		suggestions = append(suggestions, fmt.Sprintf("Ajustar la meta description a 120-155 caracteres (actual: %d)", metaLen))
	}

	// --- 5. Slug (5 pts) ---
	slugLower := strings.ToLower(in.Slug)
	hyphenated := strings.ReplaceAll(keyword, " ", "-")
	collapsed := strings.ReplaceAll(keyword, " ", "")
	slugHasKeyword := strings.Contains(slugLower, hyphenated) ||
		strings.Contains(strings.ReplaceAll(slugLower, "-", ""), collapsed)
	if slugHasKeyword {
		checks = append(checks, Check{Name: "Keyword en slug", Passed: true})
		points += 5
	} else {
		checks = append(checks, Check{Name: "Keyword en slug", Passed: false})
		suggestions = append(suggestions, fmt.Sprintf("Incluir keyword en el slug: '%s'", hyphenated))
	}

	// --- 6. First 100 words (10 pts) ---
	firstWords := words
	if len(firstWords) > 100 {
		firstWords = firstWords[:100]
	}
	if strings.Contains(strings.Join(firstWords, " "), keyword) {
		checks = append(checks, Check{Name: "Keyword en primeras 100 palabras", Passed: true})
		points += 10
	} else {
		checks = append(checks, Check{Name: "Keyword en primeras 100 palabras", Passed: false})
		problems = append(problems, "Keyword no aparece en las primeras 100 palabras")
	}

	// --- 7–8. H2 structure (10 pts) ---
	var h2Texts []string
	if docErr == nil {
		doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
			h2Texts = append(h2Texts, strings.ToLower(s.Text()))
		})
	}
	h2Count := len(h2Texts)

	h2WithKeywords := 0
	for _, h2 := range h2Texts {
		for _, k := range append([]string{keyword}, secondary...) {
			if k != "" && strings.Contains(h2, k) {
				h2WithKeywords++
				break
			}
		}
	}

	if h2Count >= 3 {
		checks = append(checks, Check{Name: fmt.Sprintf("Estructura H2 (%d secciones)", h2Count), Passed: true})
		points += 5
	} else {
		checks = append(checks, Check{Name: fmt.Sprintf("Estructura H2 (%d secciones)", h2Count), Passed: false})
		suggestions = append(suggestions, "Agregar más secciones H2 (mínimo 3)")
	}

	if h2WithKeywords >= 1 {
		checks = append(checks, Check{Name: "Keywords en H2s", Passed: true,
			Detail: fmt.Sprintf("%d H2s con keywords", h2WithKeywords)})
		points += 5
	} else {
		checks = append(checks, Check{Name: "Keywords en H2s", Passed: false})
		suggestions = append(suggestions, "Incluir keywords secundarias en al menos un H2")
	}

	// --- 9. Keyword density (10 pts) ---
	keywordCount := 0
	if keyword != "" {
		keywordCount = strings.Count(textContent, keyword)
	}
	density := 0.0
	if wordCount > 0 {
		density = float64(keywordCount) / float64(wordCount) * 100
	}
	densityName := fmt.Sprintf("Keyword density (%.1f%%)", density)
	switch {
	case density >= 0.5 && density <= 2.5:
		checks = append(checks, Check{Name: densityName, Passed: true})
		points += 10
	case density < 0.5:
		checks = append(checks, Check{Name: densityName, Passed: false, Detail: "Muy baja"})
		suggestions = append(suggestions,
			fmt.Sprintf("Keyword density muy baja (%.1f%%). Usar la keyword más veces de forma natural.", density))
	default:
		checks = append(checks, Check{Name: densityName, Passed: false, Detail: "Muy alta (riesgo keyword stuffing)"})
		suggestions = append(suggestions,
			fmt.Sprintf("Keyword density alta (%.1f%%). Reducir para evitar penalización.", density))
	}

	// --- 10 & 14. Links (20 pts) ---
	// Internal = relative hrefs; external = absolute URLs (money links).
	var internalCount, externalCount int
	if docErr == nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			switch {
			case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
				externalCount++
			case strings.HasPrefix(href, "mailto:"), strings.HasPrefix(href, "tel:"):
			default:
				internalCount++
			}
		})
	}

	// A tenant's first article has nothing to link to yet.
	firstArticle := in.ExistingPostsCount >= 0 && in.ExistingPostsCount <= 1

	switch {
	case internalCount >= 2:
		checks = append(checks, Check{Name: fmt.Sprintf("Internal links (%d)", internalCount), Passed: true})
		points += 10
	case internalCount == 1:
		if firstArticle {
			checks = append(checks, Check{Name: "Internal links (1)", Passed: true,
				Detail: "Primer artículo — sin penalización"})
			points += 10
		} else {
			checks = append(checks, Check{Name: "Internal links (1)", Passed: false, Detail: "Mínimo 2"})
			points += 5
			suggestions = append(suggestions, "Agregar al menos 1 internal link más a otros artículos del blog.")
		}
	default:
		if firstArticle {
			checks = append(checks, Check{Name: "Internal links (0)", Passed: true,
				Detail: "Primer artículo — sin penalización"})
			points += 10
		} else {
			checks = append(checks, Check{Name: "Internal links (0)", Passed: false})
			problems = append(problems, "Sin internal links. Agregar mínimo 2 links a otros artículos del blog.")
		}
	}

	// --- 11. Word count (10 pts) ---
	switch {
	case wordCount >= 800:
		checks = append(checks, Check{Name: fmt.Sprintf("Longitud (%d palabras)", wordCount), Passed: true})
		points += 10
	case wordCount >= 500:
		checks = append(checks, Check{Name: fmt.Sprintf("Longitud (%d palabras)", wordCount), Passed: true,
			Detail: "Aceptable pero corto"})
		points += 5
		suggestions = append(suggestions, fmt.Sprintf("Artículo corto (%d palabras). Ideal: 800-1500.", wordCount))
	default:
		checks = append(checks, Check{Name: fmt.Sprintf("Longitud (%d palabras)", wordCount), Passed: false})
		problems = append(problems, fmt.Sprintf("Artículo muy corto (%d palabras). Mínimo 800.", wordCount))
	}

	// --- 12. Image alt text (5 pts) ---
	var imgCount, imgWithAlt int
	if docErr == nil {
		doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			imgCount++
			if alt, ok := s.Attr("alt"); ok && alt != "" {
				imgWithAlt++
			}
		})
	}
	switch {
	case imgCount > 0 && imgWithAlt == imgCount:
		checks = append(checks, Check{Name: "Imágenes con alt text", Passed: true})
		points += 5
	case imgCount == 0:
		checks = append(checks, Check{Name: "Imágenes", Passed: false, Detail: "Sin imágenes"})
		suggestions = append(suggestions, "Agregar al menos 1 imagen con alt text que incluya la keyword")
	default:
		checks = append(checks, Check{Name: fmt.Sprintf("Alt text en imágenes (%d/%d)", imgWithAlt, imgCount), Passed: false})
	}

	// --- 13. Secondary keywords (10 pts) ---
	if len(secondary) > 0 {
		found := 0
		var missing []string
		for _, k := range secondary {
			if strings.Contains(textContent, k) {
				found++
			} else {
				missing = append(missing, k)
			}
		}
		name := fmt.Sprintf("Keywords secundarias (%d/%d)", found, len(secondary))
		if float64(found) >= float64(len(secondary))*0.5 {
			checks = append(checks, Check{Name: name, Passed: true})
			points += 10
		} else {
			checks = append(checks, Check{Name: name, Passed: false})
			if len(missing) > 3 {
				missing = missing[:3]
			}
			suggestions = append(suggestions,
				fmt.Sprintf("Keywords secundarias faltantes: %s", strings.Join(missing, ", ")))
		}
	}

	// --- 14. Money/external links (10 pts) ---
	if externalCount >= 1 {
		checks = append(checks, Check{Name: fmt.Sprintf("Money/external links (%d)", externalCount), Passed: true})
		points += 10
	} else {
		checks = append(checks, Check{Name: "Money links (0)", Passed: false})
		problems = append(problems, "Sin money links. Agregar al menos 1 link al sitio del cliente.")
	}

	if points > 100 {
		points = 100
	}

	return Report{
		Score:            points,
		Passed:           points >= MinScore,
		Checks:           checks,
		CriticalProblems: problems,
		Suggestions:      suggestions,
		Stats: Stats{
			WordCount:      wordCount,
			H2Count:        h2Count,
			InternalLinks:  internalCount,
			ExternalLinks:  externalCount,
			KeywordDensity: math.Round(density*100) / 100,
			KeywordCount:   keywordCount,
		},
	}
}
