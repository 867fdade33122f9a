package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/seo"
)

const (
	maxRevisions        = 2
	maxMoneyPages       = 2
	recentPostsLimit    = 20
	pillarTargetWords   = 1500
	regularTargetWords  = 1000
	pillarMaxTokens     = 4500
	regularMaxTokens    = 3500
	revisionMaxTokens   = 4096
	revisionTemperature = 0.3
)

// EngineDeps wires the collaborators into the content orchestrator.
type EngineDeps struct {
	Storage ports.Storage
	Router  *ai.Router
	Ledger  ports.CostLedger
	Logger  *slog.Logger
}

// Engine drives the draft, audit, revise and link stages of one article.
// Each run is sequential; concurrent runs share only the router's
// provider pool.
type Engine struct {
	storage ports.Storage
	router  *ai.Router
	ledger  ports.CostLedger
	log     *slog.Logger
}

// NewEngine constructs the orchestration component.
func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		storage: deps.Storage,
		router:  deps.Router,
		ledger:  deps.Ledger,
		log:     deps.Logger.With("component", "content_engine"),
	}
}

// GenerateFromKeyword generates an article for a keyword of the client's
// backlog and advances the keyword state by the outcome.
func (e *Engine) GenerateFromKeyword(ctx context.Context, clientID, keywordID uuid.UUID) (*domain.GenerationResult, error) {
	keyword, err := e.storage.GetKeyword(ctx, keywordID)
	if err != nil {
		return nil, fmt.Errorf("load keyword: %w", err)
	}
	if keyword.ClientID != clientID {
		return nil, fmt.Errorf("keyword %s: %w", keywordID, domain.ErrKeywordNotFound)
	}

	result, err := e.GenerateArticle(ctx, domain.GenerationRequest{
		ClientID:          clientID,
		PrimaryKeyword:    keyword.Keyword,
		SecondaryKeywords: keyword.SecondaryKeywords,
		SuggestedTitle:    keyword.SuggestedTitle,
		IsPillar:          keyword.IsPillar,
	})
	if err != nil {
		return nil, err
	}

	if result.Passed {
		keyword.State = domain.KeywordPublished
	} else {
		keyword.State = domain.KeywordInProgress
	}
	keyword.PostID = &result.PostID
	if err := e.storage.UpdateKeyword(ctx, keyword); err != nil {
		return nil, fmt.Errorf("update keyword: %w", err)
	}
	return result, nil
}

// GenerateArticle runs the full pipeline for one keyword: snapshot the
// client context, draft, audit, revise while the score is short, inject
// links and persist. Provider failures during drafting are fatal;
// revision failures only stop the loop.
func (e *Engine) GenerateArticle(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	client, err := e.storage.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if !client.Active {
		return nil, fmt.Errorf("client %s: %w", client.ID, domain.ErrClientInactive)
	}

	keyword := req.PrimaryKeyword
	targetWords := req.TargetWordCount
	if targetWords == 0 {
		targetWords = regularTargetWords
		if req.IsPillar {
			targetWords = pillarTargetWords
		}
	}

	moneyPages, err := e.storage.GetActiveMoneyPages(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("load money pages: %w", err)
	}
	relevantPages := selectMoneyPages(keyword, moneyPages, maxMoneyPages)

	existingPosts, err := e.storage.GetRecentPublishedPosts(ctx, client.ID, nil, recentPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("load existing posts: %w", err)
	}

	title := req.SuggestedTitle
	if title == "" {
		title = keyword
	}
	post := &domain.BlogPost{
		ID:                uuid.New(),
		ClientID:          client.ID,
		Title:             title,
		Slug:              seo.Slugify(keyword),
		PrimaryKeyword:    keyword,
		SecondaryKeywords: req.SecondaryKeywords,
		State:             domain.StateGenerating,
	}
	if err := e.storage.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	e.log.Info("generating article",
		"client", client.Name,
		"keyword", keyword,
		"money_pages", len(relevantPages),
		"pillar", req.IsPillar,
	)

	system, user := buildGenerationPrompt(generationPromptInput{
		Topic:             title,
		PrimaryKeyword:    keyword,
		SecondaryKeywords: req.SecondaryKeywords,
		Client:            client,
		MoneyPages:        relevantPages,
		ExistingPosts:     existingPosts,
		TargetWords:       targetWords,
	})

	maxTokens := regularMaxTokens
	if req.IsPillar {
		maxTokens = pillarMaxTokens
	}
	resp := e.router.Dispatch(ctx, ai.TaskArticleGeneration, client.Plan, user, system, maxTokens, 0.7, true)
	if !resp.Success {
		post.State = domain.StateFailed
		if updErr := e.storage.UpdatePost(ctx, post); updErr != nil {
			return nil, fmt.Errorf("mark post failed: %w", updErr)
		}
		return nil, fmt.Errorf("draft generation: %s", resp.Error)
	}
	e.ledger.Record(ctx, client.ID, ai.TaskArticleGeneration, resp, &post.ID)

	totalCost := resp.CostUSD
	totalTokens := resp.TokensTotal()

	meta := parseArticle(resp.Content, keyword)
	bodyHTML := meta.BodyHTML
	post.Title = meta.Title
	post.Slug = meta.Slug
	post.MetaDescription = meta.MetaDescription
	post.Excerpt = meta.Excerpt
	post.GenerationProvider = resp.Provider
	post.GenerationModel = resp.Model

	revisions := 0
	maxLoop := 0
	if e.router.IsTaskAvailable(ai.TaskEditorialReview, client.Plan) {
		maxLoop = maxRevisions
	}

	report := e.audit(post, bodyHTML)
	for attempt := 0; report.Score < seo.MinScore && revisions < maxLoop; attempt++ {
		e.log.Info("audit below bar, requesting revision",
			"score", report.Score,
			"attempt", attempt+1,
			"critical", len(report.CriticalProblems),
		)

		reviewPrompt := buildReviewPrompt(bodyHTML, keyword, req.SecondaryKeywords, report, client.Tone)
		reviewResp := e.router.Dispatch(ctx, ai.TaskEditorialReview, client.Plan, reviewPrompt, reviewSystemPrompt, revisionMaxTokens, revisionTemperature, true)
		if !reviewResp.Success {
			e.log.Warn("revision failed, keeping last draft", "error", reviewResp.Error)
			break
		}

		bodyHTML = stripFences(reviewResp.Content)
		totalCost += reviewResp.CostUSD
		totalTokens += reviewResp.TokensTotal()
		revisions++
		post.RevisionProvider = reviewResp.Provider
		post.RevisionModel = reviewResp.Model
		e.ledger.Record(ctx, client.ID, ai.TaskEditorialReview, reviewResp, &post.ID)

		report = e.audit(post, bodyHTML)
	}

	finalReport := report
	if err := e.storage.AppendAuditLog(ctx, post.ID, finalReport); err != nil {
		return nil, fmt.Errorf("append audit log: %w", err)
	}

	bodyHTML = seo.EnsureMoneyLinks(bodyHTML, relevantPages)
	bodyHTML = seo.EnsureInternalLinks(bodyHTML, existingPosts, keyword)

	post.BodyHTML = bodyHTML
	post.TotalCostUSD = totalCost
	post.TotalTokens = totalTokens
	if finalReport.Passed && client.AutoPublish {
		post.State = domain.StateApproved
	} else {
		post.State = domain.StateInReview
	}
	if !finalReport.Passed {
		e.log.Warn("article below the audit bar, manual review required",
			"score", finalReport.Score,
			"post_id", post.ID,
		)
	}
	if err := e.storage.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	e.log.Info("article generated",
		"title", post.Title,
		"score", finalReport.Score,
		"cost_usd", totalCost,
		"revisions", revisions,
	)

	return &domain.GenerationResult{
		PostID:           post.ID,
		Title:            post.Title,
		Slug:             post.Slug,
		MetaDescription:  post.MetaDescription,
		PrimaryKeyword:   keyword,
		Score:            finalReport.Score,
		Passed:           finalReport.Passed,
		TotalCostUSD:     totalCost,
		TotalTokens:      totalTokens,
		RevisionCount:    revisions,
		CriticalProblems: finalReport.CriticalProblems,
	}, nil
}

func (e *Engine) audit(post *domain.BlogPost, bodyHTML string) seo.Report {
	return seo.Audit(seo.Input{
		Title:              post.Title,
		MetaDescription:    post.MetaDescription,
		Slug:               post.Slug,
		BodyHTML:           bodyHTML,
		PrimaryKeyword:     post.PrimaryKeyword,
		SecondaryKeywords:  post.SecondaryKeywords,
		ExistingPostsCount: -1,
	})
}

// selectMoneyPages ranks pages by keyword affinity and keeps the top
// limit. Score is priority plus 10 per target keyword matching by
// substring in either direction, plus 3 for partial word overlap.
func selectMoneyPages(keyword string, pages []domain.MoneyPage, limit int) []domain.MoneyPage {
	keywordLower := strings.ToLower(keyword)

	type scored struct {
		score int
		page  domain.MoneyPage
	}
	ranked := make([]scored, 0, len(pages))
	for _, page := range pages {
		score := page.Priority
		for _, target := range page.TargetKeywords {
			targetLower := strings.ToLower(target)
			if strings.Contains(keywordLower, targetLower) || strings.Contains(targetLower, keywordLower) {
				score += 10
			} else if anyWordIn(targetLower, keywordLower) {
				score += 3
			}
		}
		ranked = append(ranked, scored{score: score, page: page})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].page.Priority > ranked[j].page.Priority
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	selected := make([]domain.MoneyPage, len(ranked))
	for i, s := range ranked {
		selected[i] = s.page
	}
	return selected
}

func anyWordIn(words, text string) bool {
	for _, w := range strings.Fields(words) {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
