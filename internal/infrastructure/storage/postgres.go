package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
	"BlogEngine/internal/seo"
)

// Postgres persists the pipeline aggregates. It also serves as the cost
// ledger: Record writes one ai_usages row per provider call.
type Postgres struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	log *slog.Logger
}

var (
	_ ports.Storage    = (*Postgres)(nil)
	_ ports.CostLedger = (*Postgres)(nil)
)

// NewPostgres wires a sql.DB implementation.
func NewPostgres(db *sql.DB, log *slog.Logger) *Postgres {
	return &Postgres{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		log: log.With("component", "storage"),
	}
}

func (p *Postgres) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query, args, err := p.sb.
		Select("id", "name", "industry", "site_url", "plan", "tone", "language", "active", "auto_publish").
		From("clients").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build client query: %w", err)
	}

	var c domain.Client
	err = p.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.Name, &c.Industry, &c.SiteURL, &c.Plan,
		&c.Tone, &c.Language, &c.Active, &c.AutoPublish,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrClientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query client: %w", err)
	}
	return &c, nil
}

func (p *Postgres) ListActiveClients(ctx context.Context) ([]domain.Client, error) {
	query, args, err := p.sb.
		Select("id", "name", "industry", "site_url", "plan", "tone", "language", "active", "auto_publish").
		From("clients").
		Where(sq.Eq{"active": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clients query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Industry, &c.SiteURL, &c.Plan,
			&c.Tone, &c.Language, &c.Active, &c.AutoPublish,
		); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (p *Postgres) GetActiveMoneyPages(ctx context.Context, clientID uuid.UUID) ([]domain.MoneyPage, error) {
	query, args, err := p.sb.
		Select("id", "client_id", "url", "title", "type", "target_keywords", "anchor_texts", "priority", "active").
		From("money_pages").
		Where(sq.Eq{"client_id": clientID, "active": true}).
		OrderBy("priority DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build money pages query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query money pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.MoneyPage
	for rows.Next() {
		var page domain.MoneyPage
		if err := rows.Scan(
			&page.ID, &page.ClientID, &page.URL, &page.Title, &page.Type,
			pq.Array(&page.TargetKeywords), pq.Array(&page.AnchorTexts),
			&page.Priority, &page.Active,
		); err != nil {
			return nil, fmt.Errorf("scan money page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (p *Postgres) GetRecentPublishedPosts(ctx context.Context, clientID uuid.UUID, excludePostID *uuid.UUID, limit int) ([]domain.ExistingPostRef, error) {
	builder := p.sb.
		Select("slug", "title", "primary_keyword", "excerpt").
		From("blog_posts").
		Where(sq.Eq{"client_id": clientID, "state": domain.StatePublished}).
		OrderBy("published_at DESC").
		Limit(uint64(limit))
	if excludePostID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludePostID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent posts query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var refs []domain.ExistingPostRef
	for rows.Next() {
		var ref domain.ExistingPostRef
		if err := rows.Scan(&ref.Slug, &ref.Title, &ref.Keyword, &ref.Excerpt); err != nil {
			return nil, fmt.Errorf("scan recent post: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (p *Postgres) GetPost(ctx context.Context, id uuid.UUID) (*domain.BlogPost, error) {
	query, args, err := p.sb.
		Select("id", "client_id", "title", "slug", "meta_description", "body_html", "excerpt",
			"primary_keyword", "secondary_keywords", "state",
			"generation_provider", "generation_model", "revision_provider", "revision_model",
			"total_tokens", "total_cost_usd", "published_at", "created_at", "updated_at").
		From("blog_posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post query: %w", err)
	}

	var post domain.BlogPost
	err = p.db.QueryRowContext(ctx, query, args...).Scan(
		&post.ID, &post.ClientID, &post.Title, &post.Slug, &post.MetaDescription,
		&post.BodyHTML, &post.Excerpt, &post.PrimaryKeyword, pq.Array(&post.SecondaryKeywords),
		&post.State, &post.GenerationProvider, &post.GenerationModel,
		&post.RevisionProvider, &post.RevisionModel,
		&post.TotalTokens, &post.TotalCostUSD, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrPostNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	return &post, nil
}

func (p *Postgres) CreatePost(ctx context.Context, post *domain.BlogPost) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	query, args, err := p.sb.
		Insert("blog_posts").
		Columns("id", "client_id", "title", "slug", "meta_description", "body_html", "excerpt",
			"primary_keyword", "secondary_keywords", "state",
			"generation_provider", "generation_model", "revision_provider", "revision_model",
			"total_tokens", "total_cost_usd", "created_at", "updated_at").
		Values(post.ID, post.ClientID, post.Title, post.Slug, post.MetaDescription, post.BodyHTML, post.Excerpt,
			post.PrimaryKeyword, pq.Array(post.SecondaryKeywords), post.State,
			post.GenerationProvider, post.GenerationModel, post.RevisionProvider, post.RevisionModel,
			post.TotalTokens, post.TotalCostUSD, post.CreatedAt, post.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build post insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// UpdatePost persists the post after validating the state move against
// the stored row, so an illegal transition never reaches the table.
func (p *Postgres) UpdatePost(ctx context.Context, post *domain.BlogPost) error {
	var current domain.PostState
	query, args, err := p.sb.
		Select("state").From("blog_posts").Where(sq.Eq{"id": post.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build state query: %w", err)
	}
	err = p.db.QueryRowContext(ctx, query, args...).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("post %s not found", post.ID)
	}
	if err != nil {
		return fmt.Errorf("query post state: %w", err)
	}
	if err := current.Transition(post.State); err != nil {
		return fmt.Errorf("post %s: %w", post.ID, err)
	}

	post.UpdatedAt = time.Now().UTC()
	query, args, err = p.sb.
		Update("blog_posts").
		Set("title", post.Title).
		Set("slug", post.Slug).
		Set("meta_description", post.MetaDescription).
		Set("body_html", post.BodyHTML).
		Set("excerpt", post.Excerpt).
		Set("secondary_keywords", pq.Array(post.SecondaryKeywords)).
		Set("state", post.State).
		Set("generation_provider", post.GenerationProvider).
		Set("generation_model", post.GenerationModel).
		Set("revision_provider", post.RevisionProvider).
		Set("revision_model", post.RevisionModel).
		Set("total_tokens", post.TotalTokens).
		Set("total_cost_usd", post.TotalCostUSD).
		Set("published_at", post.PublishedAt).
		Set("updated_at", post.UpdatedAt).
		Where(sq.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build post update: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (p *Postgres) CountPostsSince(ctx context.Context, clientID uuid.UUID, since time.Time) (int, error) {
	query, args, err := p.sb.
		Select("COUNT(*)").
		From("blog_posts").
		Where(sq.Eq{"client_id": clientID}).
		Where(sq.GtOrEq{"created_at": since}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (p *Postgres) AppendAuditLog(ctx context.Context, postID uuid.UUID, report seo.Report) error {
	checks, err := json.Marshal(report.Checks)
	if err != nil {
		return fmt.Errorf("marshal checks: %w", err)
	}
	stats, err := json.Marshal(report.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	query, args, err := p.sb.
		Insert("seo_audit_logs").
		Columns("post_id", "score", "passed", "checks", "critical_problems", "suggestions", "stats", "created_at").
		Values(postID, report.Score, report.Passed, checks,
			pq.Array(report.CriticalProblems), pq.Array(report.Suggestions),
			stats, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (p *Postgres) GetAuditReports(ctx context.Context, postID uuid.UUID) ([]seo.Report, error) {
	query, args, err := p.sb.
		Select("score", "passed", "checks", "critical_problems", "suggestions", "stats").
		From("seo_audit_logs").
		Where(sq.Eq{"post_id": postID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var reports []seo.Report
	for rows.Next() {
		var (
			report seo.Report
			checks []byte
			stats  []byte
		)
		if err := rows.Scan(&report.Score, &report.Passed, &checks,
			pq.Array(&report.CriticalProblems), pq.Array(&report.Suggestions), &stats); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if err := json.Unmarshal(checks, &report.Checks); err != nil {
			return nil, fmt.Errorf("unmarshal checks: %w", err)
		}
		if err := json.Unmarshal(stats, &report.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal stats: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (p *Postgres) GetKeyword(ctx context.Context, id uuid.UUID) (*domain.Keyword, error) {
	query, args, err := p.sb.
		Select("id", "client_id", "cluster_id", "keyword", "secondary_keywords",
			"suggested_title", "intent", "priority", "is_pillar", "state", "post_id").
		From("seo_keywords").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keyword query: %w", err)
	}

	kw, err := p.scanKeyword(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("keyword %s: %w", id, domain.ErrKeywordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query keyword: %w", err)
	}
	return kw, nil
}

func (p *Postgres) ListKeywordStrings(ctx context.Context, clientID uuid.UUID) ([]string, error) {
	query, args, err := p.sb.
		Select("keyword").
		From("seo_keywords").
		Where(sq.Eq{"client_id": clientID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keywords query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

func (p *Postgres) UpdateKeyword(ctx context.Context, keyword *domain.Keyword) error {
	query, args, err := p.sb.
		Update("seo_keywords").
		Set("state", keyword.State).
		Set("post_id", keyword.PostID).
		Set("priority", keyword.Priority).
		Where(sq.Eq{"id": keyword.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build keyword update: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update keyword: %w", err)
	}
	return nil
}

func (p *Postgres) NextPendingKeyword(ctx context.Context, clientID uuid.UUID) (*domain.Keyword, error) {
	query, args, err := p.sb.
		Select("id", "client_id", "cluster_id", "keyword", "secondary_keywords",
			"suggested_title", "intent", "priority", "is_pillar", "state", "post_id").
		From("seo_keywords").
		Where(sq.Eq{"client_id": clientID, "state": domain.KeywordPending}).
		OrderBy("priority DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending keyword query: %w", err)
	}

	kw, err := p.scanKeyword(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKeywordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query pending keyword: %w", err)
	}
	return kw, nil
}

func (p *Postgres) SaveCluster(ctx context.Context, cluster *domain.TopicCluster) error {
	query, args, err := p.sb.
		Insert("topic_clusters").
		Columns("id", "client_id", "name", "pillar_keyword", "pillar_suggested_title").
		Values(cluster.ID, cluster.ClientID, cluster.Name, cluster.PillarKeyword, cluster.PillarSuggestedTitle).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cluster insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert cluster: %w", err)
	}
	return nil
}

func (p *Postgres) SaveKeywords(ctx context.Context, keywords []domain.Keyword) error {
	if len(keywords) == 0 {
		return nil
	}

	builder := p.sb.
		Insert("seo_keywords").
		Columns("id", "client_id", "cluster_id", "keyword", "secondary_keywords",
			"suggested_title", "intent", "priority", "is_pillar", "state")
	for _, kw := range keywords {
		builder = builder.Values(kw.ID, kw.ClientID, kw.ClusterID, kw.Keyword,
			pq.Array(kw.SecondaryKeywords), kw.SuggestedTitle, kw.Intent,
			kw.Priority, kw.IsPillar, kw.State)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build keywords insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert keywords: %w", err)
	}
	return nil
}

// Record writes one AI usage row. Failures are logged and swallowed so
// ledger trouble never stops a pipeline run.
func (p *Postgres) Record(ctx context.Context, clientID uuid.UUID, taskType string, resp ai.Response, postID *uuid.UUID) {
	query, args, err := p.sb.
		Insert("ai_usages").
		Columns("client_id", "task_type", "provider", "model",
			"input_tokens", "output_tokens", "cost_usd", "cache_hit",
			"success", "error", "post_id", "created_at").
		Values(clientID, taskType, resp.Provider, resp.Model,
			resp.InputTokens, resp.OutputTokens, resp.CostUSD, resp.CacheHit,
			resp.Success, resp.Error, postID, time.Now().UTC()).
		ToSql()
	if err != nil {
		p.log.Error("build usage insert", "error", err)
		return
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		p.log.Error("record ai usage", "task", taskType, "error", err)
	}
}

func (p *Postgres) scanKeyword(row *sql.Row) (*domain.Keyword, error) {
	var kw domain.Keyword
	err := row.Scan(
		&kw.ID, &kw.ClientID, &kw.ClusterID, &kw.Keyword,
		pq.Array(&kw.SecondaryKeywords), &kw.SuggestedTitle, &kw.Intent,
		&kw.Priority, &kw.IsPillar, &kw.State, &kw.PostID,
	)
	if err != nil {
		return nil, err
	}
	return &kw, nil
}
