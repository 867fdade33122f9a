package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/usecase"
)

type handler struct {
	engine  *usecase.Engine
	storage ports.Storage
	log     *slog.Logger
}

func newHandler(engine *usecase.Engine, storage ports.Storage, log *slog.Logger) *handler {
	return &handler{
		engine:  engine,
		storage: storage,
		log:     log.With("component", "http"),
	}
}

type generateResponse struct {
	PostID           uuid.UUID `json:"post_id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	MetaDescription  string    `json:"meta_description"`
	PrimaryKeyword   string    `json:"primary_keyword"`
	Score            int       `json:"score"`
	Passed           bool      `json:"passed"`
	TotalCostUSD     float64   `json:"total_cost_usd"`
	TotalTokens      int       `json:"total_tokens"`
	RevisionCount    int       `json:"revision_count"`
	CriticalProblems []string  `json:"critical_problems,omitempty"`
}

func toGenerateResponse(r *domain.GenerationResult) generateResponse {
	return generateResponse{
		PostID:           r.PostID,
		Title:            r.Title,
		Slug:             r.Slug,
		MetaDescription:  r.MetaDescription,
		PrimaryKeyword:   r.PrimaryKeyword,
		Score:            r.Score,
		Passed:           r.Passed,
		TotalCostUSD:     r.TotalCostUSD,
		TotalTokens:      r.TotalTokens,
		RevisionCount:    r.RevisionCount,
		CriticalProblems: r.CriticalProblems,
	}
}

type generateRequest struct {
	Keyword           string   `json:"keyword" binding:"required"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	SuggestedTitle    string   `json:"suggested_title"`
	TargetWordCount   int      `json:"target_word_count"`
	IsPillar          bool     `json:"is_pillar"`
}

// generateArticle handles POST /v1/clients/:client_id/generate.
func (h *handler) generateArticle(c *gin.Context) {
	clientID, ok := pathUUID(c, "client_id")
	if !ok {
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.GenerateArticle(c.Request.Context(), domain.GenerationRequest{
		ClientID:          clientID,
		PrimaryKeyword:    req.Keyword,
		SecondaryKeywords: req.SecondaryKeywords,
		SuggestedTitle:    req.SuggestedTitle,
		TargetWordCount:   req.TargetWordCount,
		IsPillar:          req.IsPillar,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGenerateResponse(result))
}

// generateFromKeyword handles POST /v1/clients/:client_id/keywords/:keyword_id/generate.
func (h *handler) generateFromKeyword(c *gin.Context) {
	clientID, ok := pathUUID(c, "client_id")
	if !ok {
		return
	}
	keywordID, ok := pathUUID(c, "keyword_id")
	if !ok {
		return
	}

	result, err := h.engine.GenerateFromKeyword(c.Request.Context(), clientID, keywordID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGenerateResponse(result))
}

// researchKeywords handles POST /v1/clients/:client_id/research.
func (h *handler) researchKeywords(c *gin.Context) {
	clientID, ok := pathUUID(c, "client_id")
	if !ok {
		return
	}

	saved, err := h.engine.ResearchKeywords(c.Request.Context(), clientID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"keywords_saved": saved})
}

type postResponse struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        uuid.UUID  `json:"client_id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	MetaDescription string     `json:"meta_description"`
	BodyHTML        string     `json:"body_html"`
	Excerpt         string     `json:"excerpt"`
	PrimaryKeyword  string     `json:"primary_keyword"`
	State           string     `json:"state"`
	TotalTokens     int        `json:"total_tokens"`
	TotalCostUSD    float64    `json:"total_cost_usd"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// getPost handles GET /v1/posts/:post_id.
func (h *handler) getPost(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}

	post, err := h.storage.GetPost(c.Request.Context(), postID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, postResponse{
		ID:              post.ID,
		ClientID:        post.ClientID,
		Title:           post.Title,
		Slug:            post.Slug,
		MetaDescription: post.MetaDescription,
		BodyHTML:        post.BodyHTML,
		Excerpt:         post.Excerpt,
		PrimaryKeyword:  post.PrimaryKeyword,
		State:           string(post.State),
		TotalTokens:     post.TotalTokens,
		TotalCostUSD:    post.TotalCostUSD,
		PublishedAt:     post.PublishedAt,
		CreatedAt:       post.CreatedAt,
		UpdatedAt:       post.UpdatedAt,
	})
}

// getAudits handles GET /v1/posts/:post_id/audits.
func (h *handler) getAudits(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}

	if _, err := h.storage.GetPost(c.Request.Context(), postID); err != nil {
		h.writeError(c, err)
		return
	}

	reports, err := h.storage.GetAuditReports(c.Request.Context(), postID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": reports})
}

func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrKeywordNotFound),
		errors.Is(err, domain.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrClientInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.UUID{}, false
	}
	return id, true
}
