package usecase

import (
	"strings"
	"testing"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/seo"
)

func TestParseArticleFullMetadata(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"META_TITLE: Comprar casa CDMX: guía 2024",
		"META_DESCRIPTION: Todo sobre comprar casa en la capital.",
		"SLUG: comprar-casa-cdmx-guia",
		"EXTRACTO: Dos oraciones de resumen.",
		"<h1>Comprar casa CDMX</h1>",
		"<p>Cuerpo del artículo.</p>",
	}, "\n")

	meta := parseArticle(content, "comprar casa cdmx")

	if meta.Title != "Comprar casa CDMX: guía 2024" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.MetaDescription != "Todo sobre comprar casa en la capital." {
		t.Errorf("meta description = %q", meta.MetaDescription)
	}
	if meta.Slug != "comprar-casa-cdmx-guia" {
		t.Errorf("slug = %q", meta.Slug)
	}
	if meta.Excerpt != "Dos oraciones de resumen." {
		t.Errorf("excerpt = %q", meta.Excerpt)
	}
	if strings.Contains(meta.BodyHTML, "META_TITLE") || strings.Contains(meta.BodyHTML, "SLUG:") {
		t.Errorf("metadata lines should be removed from the body: %q", meta.BodyHTML)
	}
	if !strings.Contains(meta.BodyHTML, "<p>Cuerpo del artículo.</p>") {
		t.Errorf("body missing: %q", meta.BodyHTML)
	}
}

func TestParseArticleMissingMetadataFallsBack(t *testing.T) {
	t.Parallel()

	meta := parseArticle("<p>Solo cuerpo, sin metadata.</p>", "comprar casa cdmx")

	if meta.Title != "Comprar Casa Cdmx" {
		t.Errorf("title should derive from the keyword, got %q", meta.Title)
	}
	if meta.Slug != "comprar-casa-cdmx" {
		t.Errorf("slug should derive from the keyword, got %q", meta.Slug)
	}
	if meta.MetaDescription != "" || meta.Excerpt != "" {
		t.Error("absent fields should stay empty")
	}
	if meta.BodyHTML != "<p>Solo cuerpo, sin metadata.</p>" {
		t.Errorf("body = %q", meta.BodyHTML)
	}
}

func TestParseArticleStripsFences(t *testing.T) {
	t.Parallel()

	content := "```html\nMETA_TITLE: Título\n<p>Cuerpo.</p>\n```"
	meta := parseArticle(content, "comprar casa cdmx")

	if meta.Title != "Título" {
		t.Errorf("title = %q", meta.Title)
	}
	if strings.Contains(meta.BodyHTML, "```") {
		t.Errorf("fences should be removed: %q", meta.BodyHTML)
	}
}

func TestParseArticleMetadataInAnyOrder(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"<p>Primer párrafo con comprar casa cdmx.</p>",
		"SLUG: otro-slug",
		"META_TITLE: Título tardío",
	}, "\n")

	meta := parseArticle(content, "comprar casa cdmx")

	if meta.Title != "Título tardío" || meta.Slug != "otro-slug" {
		t.Errorf("late metadata lines should still parse: %+v", meta)
	}
}

func TestParseArticleMarkdownBody(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"META_TITLE: Título",
		"",
		"## Sección",
		"",
		"Un párrafo en markdown.",
	}, "\n")

	meta := parseArticle(content, "comprar casa cdmx")

	if !strings.Contains(meta.BodyHTML, "<h2") {
		t.Errorf("markdown heading should convert to h2: %q", meta.BodyHTML)
	}
	if !strings.Contains(meta.BodyHTML, "<p>Un párrafo en markdown.</p>") {
		t.Errorf("markdown paragraph should convert: %q", meta.BodyHTML)
	}
}

func TestParseArticleEmptySlugLineKeepsFallback(t *testing.T) {
	t.Parallel()

	meta := parseArticle("SLUG:\n<p>Cuerpo.</p>", "comprar casa cdmx")

	if meta.Slug != "comprar-casa-cdmx" {
		t.Errorf("empty slug line should keep the derived slug, got %q", meta.Slug)
	}
}

func TestParseJSONObjectTolerance(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"nombre"`
	}

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"nombre": "directo"}`, "directo", true},
		{"```json\n{\"nombre\": \"con fences\"}\n```", "con fences", true},
		{"Aquí está tu estrategia:\n{\"nombre\": \"con prosa\"}\nSaludos.", "con prosa", true},
		{"sin json por ningún lado", "", false},
	}
	for _, tc := range cases {
		var p payload
		got := parseJSONObject(tc.in, &p)
		if got != tc.ok {
			t.Errorf("parseJSONObject(%q) ok = %v, want %v", tc.in, got, tc.ok)
			continue
		}
		if tc.ok && p.Name != tc.want {
			t.Errorf("parseJSONObject(%q) name = %q, want %q", tc.in, p.Name, tc.want)
		}
	}
}

func TestBuildReviewPromptListsOnlyFindings(t *testing.T) {
	t.Parallel()

	report := auditReportFixture()
	prompt := buildReviewPrompt("<p>Cuerpo.</p>", "comprar casa cdmx", []string{"enganche"}, report, "cercano")

	if !strings.Contains(prompt, "Artículo muy corto") {
		t.Error("critical problems should appear in the prompt")
	}
	if !strings.Contains(prompt, "Agregar más secciones H2") {
		t.Error("suggestions should appear in the prompt")
	}
	if !strings.Contains(prompt, "cercano") {
		t.Error("tone should be carried through")
	}
	if !strings.Contains(prompt, "ARTÍCULO A CORREGIR:") {
		t.Error("body must be embedded for correction")
	}
}

func TestBuildGenerationPromptEmbedsContext(t *testing.T) {
	t.Parallel()

	client := proClient()
	system, user := buildGenerationPrompt(generationPromptInput{
		Topic:             "Guía para comprar casa",
		PrimaryKeyword:    "comprar casa cdmx",
		SecondaryKeywords: []string{"enganche"},
		Client:            client,
		MoneyPages: []domain.MoneyPage{
			{URL: "/servicios/venta", Title: "Venta", AnchorTexts: []string{"venta de casas", "casas en venta", "tercero"}},
		},
		ExistingPosts: []domain.ExistingPostRef{
			{Slug: "post-1", Title: "Post uno"},
		},
		TargetWords: 1000,
	})

	if !strings.Contains(system, `"comprar casa cdmx"`) {
		t.Error("system prompt must pin the primary keyword")
	}
	if !strings.Contains(system, "1000 palabras") {
		t.Error("system prompt must carry the word target")
	}
	if !strings.Contains(user, "/servicios/venta") {
		t.Error("money page instruction missing")
	}
	if strings.Contains(user, "tercero") {
		t.Error("only the first two anchor texts should be offered")
	}
	if !strings.Contains(user, "→ /post-1") {
		t.Error("existing post link missing")
	}
	if !strings.Contains(user, "META_TITLE:") {
		t.Error("output format section missing")
	}
}

func auditReportFixture() seo.Report {
	return seo.Audit(seo.Input{
		Title:              "Otro título",
		BodyHTML:           "<p>Corto.</p>",
		PrimaryKeyword:     "comprar casa cdmx",
		ExistingPostsCount: -1,
	})
}
