package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/domain"
)

const defaultResearchKeywords = 20

type strategyPlan struct {
	Clusters []struct {
		Name                 string `json:"nombre"`
		PillarKeyword        string `json:"pillar_keyword"`
		PillarSuggestedTitle string `json:"pillar_titulo_sugerido"`
		Keywords             []struct {
			Keyword        string `json:"keyword"`
			Intent         string `json:"intencion"`
			SuggestedTitle string `json:"titulo_sugerido"`
			Priority       int    `json:"prioridad"`
		} `json:"keywords"`
	} `json:"clusters"`
}

// ResearchKeywords asks the strategy model for a keyword plan and
// persists the resulting clusters and keywords as a pending backlog.
// The plan avoids keywords the client has already used.
func (e *Engine) ResearchKeywords(ctx context.Context, clientID uuid.UUID) (int, error) {
	client, err := e.storage.GetClient(ctx, clientID)
	if err != nil {
		return 0, fmt.Errorf("load client: %w", err)
	}

	existing, err := e.storage.ListKeywordStrings(ctx, client.ID)
	if err != nil {
		return 0, fmt.Errorf("load existing keywords: %w", err)
	}

	moneyPages, err := e.storage.GetActiveMoneyPages(ctx, client.ID)
	if err != nil {
		return 0, fmt.Errorf("load money pages: %w", err)
	}
	services := make([]string, 0, len(moneyPages))
	for _, page := range moneyPages {
		services = append(services, page.Title)
	}
	if len(services) == 0 {
		services = []string{client.Industry}
	}

	system, user := buildStrategyPrompt(client, services, existing, defaultResearchKeywords)

	resp := e.router.Dispatch(ctx, ai.TaskEditorialStrategy, client.Plan, user, system, 4000, 0.7, true)
	if !resp.Success {
		// One more try on the bulk tier before giving up.
		resp = e.router.DispatchDirect(ctx, "deepseek", "deepseek-chat", user, system, 4000, 0.7)
	}
	e.ledger.Record(ctx, client.ID, ai.TaskEditorialStrategy, resp, nil)
	if !resp.Success {
		return 0, fmt.Errorf("keyword research: %s", resp.Error)
	}

	var plan strategyPlan
	if !parseJSONObject(resp.Content, &plan) {
		return 0, fmt.Errorf("keyword research: unparseable strategy response")
	}

	saved := 0
	for _, c := range plan.Clusters {
		cluster := &domain.TopicCluster{
			ID:                   uuid.New(),
			ClientID:             client.ID,
			Name:                 c.Name,
			PillarKeyword:        c.PillarKeyword,
			PillarSuggestedTitle: c.PillarSuggestedTitle,
		}
		if err := e.storage.SaveCluster(ctx, cluster); err != nil {
			return saved, fmt.Errorf("save cluster %q: %w", c.Name, err)
		}

		keywords := make([]domain.Keyword, 0, len(c.Keywords)+1)
		keywords = append(keywords, domain.Keyword{
			ID:             uuid.New(),
			ClientID:       client.ID,
			ClusterID:      &cluster.ID,
			Keyword:        c.PillarKeyword,
			SuggestedTitle: c.PillarSuggestedTitle,
			Priority:       5,
			IsPillar:       true,
			State:          domain.KeywordPending,
		})
		for _, kw := range c.Keywords {
			intent := kw.Intent
			if intent == "" {
				intent = "informacional"
			}
			priority := kw.Priority
			if priority == 0 {
				priority = 3
			}
			keywords = append(keywords, domain.Keyword{
				ID:             uuid.New(),
				ClientID:       client.ID,
				ClusterID:      &cluster.ID,
				Keyword:        kw.Keyword,
				SuggestedTitle: kw.SuggestedTitle,
				Intent:         intent,
				Priority:       priority,
				State:          domain.KeywordPending,
			})
		}
		if err := e.storage.SaveKeywords(ctx, keywords); err != nil {
			return saved, fmt.Errorf("save keywords for cluster %q: %w", c.Name, err)
		}
		saved += len(keywords)
	}

	e.log.Info("keyword strategy saved",
		"client", client.Name,
		"clusters", len(plan.Clusters),
		"keywords", saved,
	)
	return saved, nil
}
