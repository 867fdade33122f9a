package usecase

import (
	"fmt"
	"strings"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/seo"
)

const reviewSystemPrompt = "Eres un editor SEO experto. Corrige SOLO los problemas indicados. Devuelve el HTML corregido."

type generationPromptInput struct {
	Topic             string
	PrimaryKeyword    string
	SecondaryKeywords []string
	Client            *domain.Client
	MoneyPages        []domain.MoneyPage
	ExistingPosts     []domain.ExistingPostRef
	TargetWords       int
}

// buildGenerationPrompt returns the system and user prompts for the
// first draft. The system prompt carries the hard placement rules; the
// user prompt embeds the topic, mandatory money links, suggested
// internal links and the metadata-line output format.
func buildGenerationPrompt(in generationPromptInput) (string, string) {
	secondaries := "ninguna"
	if len(in.SecondaryKeywords) > 0 {
		quoted := make([]string, len(in.SecondaryKeywords))
		for i, k := range in.SecondaryKeywords {
			quoted[i] = fmt.Sprintf("%q", k)
		}
		secondaries = strings.Join(quoted, ", ")
	}

	tone := in.Client.Tone
	if tone == "" {
		tone = "profesional"
	}
	industry := in.Client.Industry
	if industry == "" {
		industry = "general"
	}
	language := in.Client.Language
	if language == "" {
		language = "es"
	}

	system := fmt.Sprintf(`Eres un redactor SEO experto. Tu ÚNICO objetivo es escribir un artículo
que POSICIONE EN GOOGLE para la keyword "%s".

REGLAS SEO OBLIGATORIAS — NO NEGOCIABLES:

1. KEYWORD PRINCIPAL: "%s"
   - DEBE aparecer en el título (primeras 5 palabras idealmente)
   - DEBE aparecer en el primer párrafo (primeras 50 palabras)
   - DEBE aparecer en al menos 1 H2
   - DEBE aparecer 4-8 veces en total (density ~1-2%%)
   - Usar variaciones naturales también

2. KEYWORDS SECUNDARIAS: %s
   - Cada una debe aparecer al menos 1 vez en el artículo
   - Idealmente en un H2 o H3

3. ESTRUCTURA:
   - Título H1: máximo 60 caracteres, keyword al inicio
   - Mínimo 4 secciones con H2
   - Al menos 1 H3 dentro de algún H2
   - Párrafos cortos (3-4 oraciones máximo)
   - Longitud total: %d palabras aproximadamente

4. PRIMER PÁRRAFO:
   - Hook que enganche al lector
   - Keyword principal en las primeras 2 oraciones
   - Debe responder la intención de búsqueda del usuario

5. ÚLTIMO PÁRRAFO:
   - Resumen de los puntos clave
   - CTA claro dirigido al negocio del cliente

CLIENTE: %s
INDUSTRIA: %s
TONO: %s
SITIO WEB: %s
IDIOMA: %s

IMPORTANTE: El artículo NO debe sonar robótico ni genérico.
Debe ser útil, con datos concretos y ejemplos reales.
Debe sonar como si lo escribió un experto humano del sector.`,
		in.PrimaryKeyword, in.PrimaryKeyword, secondaries, in.TargetWords,
		in.Client.Name, industry, tone, in.Client.SiteURL, language)

	var user strings.Builder
	fmt.Fprintf(&user, `Escribe un artículo de blog SEO-optimizado.

TEMA: %s
KEYWORD PRINCIPAL: %s
KEYWORDS SECUNDARIAS: %s
`, in.Topic, in.PrimaryKeyword, strings.Join(in.SecondaryKeywords, ", "))

	if len(in.MoneyPages) > 0 {
		user.WriteString("\nLINKS AL SITIO DEL CLIENTE (incluir de forma natural en el artículo):\n")
		for _, page := range in.MoneyPages {
			anchors := page.AnchorTexts
			if len(anchors) == 0 {
				anchors = []string{page.Title}
			}
			if len(anchors) > 2 {
				anchors = anchors[:2]
			}
			quoted := make([]string, len(anchors))
			for i, a := range anchors {
				quoted[i] = fmt.Sprintf("%q", a)
			}
			fmt.Fprintf(&user, "  - Enlazar a %s usando como texto: %s\n", page.URL, strings.Join(quoted, " o "))
		}
		user.WriteString("  Estos links son OBLIGATORIOS. Insértalos donde fluyan naturalmente.\n")
	}

	if len(in.ExistingPosts) > 0 {
		posts := in.ExistingPosts
		if len(posts) > 5 {
			posts = posts[:5]
		}
		user.WriteString("\nARTÍCULOS EXISTENTES DEL BLOG (enlazar 2-3 de forma natural):\n")
		for _, p := range posts {
			fmt.Fprintf(&user, "  - %q → /%s\n", p.Title, p.Slug)
		}
		user.WriteString("  Inserta links a 2-3 de estos artículos donde sea relevante.\n")
	}

	user.WriteString(`
FORMATO DE SALIDA:
Primero genera estas líneas (una por línea, sin formato extra):
META_TITLE: [título SEO, máx 60 chars, keyword al inicio]
META_DESCRIPTION: [descripción con keyword + CTA, 120-155 chars]
SLUG: [url-amigable-con-keyword]
EXTRACTO: [2 oraciones para preview/redes sociales]

Luego el artículo completo en HTML:
- <h1> para título (puede diferir ligeramente del META_TITLE)
- <h2> para secciones principales
- <h3> para subsecciones
- <p> para párrafos
- <ul>/<li> para listas donde aplique
- <strong> para conceptos clave
- <a href="URL"> para links (tanto internos como al sitio del cliente)
- NO incluir <html>, <head>, <body>
`)

	return system, user.String()
}

// buildReviewPrompt asks for a correction pass listing only the failing
// audit findings, never the full checklist.
func buildReviewPrompt(bodyHTML, keyword string, secondaryKeywords []string, report seo.Report, tone string) string {
	if tone == "" {
		tone = "profesional"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Revisa y CORRIGE este artículo según los problemas SEO detectados.

KEYWORD PRINCIPAL: %q
KEYWORDS SECUNDARIAS: %s
TONO REQUERIDO: %s

ESTADÍSTICAS ACTUALES:
- Palabras: %d
- Keyword density: %.2f%%
- Veces que aparece la keyword: %d
- H2s: %d
- Links internos: %d
`, keyword, strings.Join(secondaryKeywords, ", "), tone,
		report.Stats.WordCount, report.Stats.KeywordDensity, report.Stats.KeywordCount,
		report.Stats.H2Count, report.Stats.InternalLinks)

	if len(report.CriticalProblems) > 0 {
		b.WriteString("\nPROBLEMAS CRÍTICOS A CORREGIR:\n")
		for _, p := range report.CriticalProblems {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if len(report.Suggestions) > 0 {
		b.WriteString("\nMEJORAS SUGERIDAS:\n")
		for _, s := range report.Suggestions {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}

	fmt.Fprintf(&b, `
INSTRUCCIONES:
1. Corrige TODOS los problemas críticos
2. Aplica las mejoras sugeridas donde sea posible
3. NO cambies la estructura general del artículo
4. Mantén el tono %s
5. Devuelve SOLO el artículo corregido en HTML (sin META_TITLE ni otros campos)

ARTÍCULO A CORREGIR:
%s`, tone, bodyHTML)

	return b.String()
}

// buildStrategyPrompt asks the model for a keyword plan organized in
// topic clusters, JSON only.
func buildStrategyPrompt(client *domain.Client, services, existingKeywords []string, numKeywords int) (string, string) {
	system := `Eres un consultor SEO experto en estrategia de contenido.
Tu trabajo es planificar qué keywords atacar con un blog para maximizar
el tráfico orgánico de un negocio.

Responde SOLO en formato JSON válido, sin texto adicional ni backticks.`

	existing := "ninguna"
	if len(existingKeywords) > 0 {
		existing = strings.Join(existingKeywords, ", ")
	}

	user := fmt.Sprintf(`Genera una estrategia de keywords para el blog de este negocio:

NEGOCIO: %s
INDUSTRIA: %s
SERVICIOS/PRODUCTOS: %s
KEYWORDS YA USADAS (no repetir): %s

Genera %d keywords organizadas en clusters temáticos.

FORMATO JSON REQUERIDO:
{
    "clusters": [
        {
            "nombre": "Nombre del cluster temático",
            "pillar_keyword": "keyword principal competitiva del cluster",
            "pillar_titulo_sugerido": "Título sugerido para el pillar article",
            "keywords": [
                {
                    "keyword": "keyword long-tail específica",
                    "intencion": "informacional | transaccional | navegacional",
                    "titulo_sugerido": "Título SEO sugerido para el artículo",
                    "prioridad": 3
                }
            ]
        }
    ]
}

CRITERIOS DE SELECCIÓN:
- Mezclar keywords informacionales (atraer tráfico) y transaccionales (convertir)
- Priorizar keywords de cola larga con menor competencia
- Organizar en clusters de 3-5 keywords por tema
- El pillar de cada cluster debe ser la keyword más competitiva
- Los clusters deben linkear naturalmente a los servicios del negocio
`, client.Name, client.Industry, strings.Join(services, ", "), existing, numKeywords)

	return system, user
}
