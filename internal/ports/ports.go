package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/domain"
	"BlogEngine/internal/seo"
)

// Storage persists clients, money pages, posts and the keyword backlog.
type Storage interface {
	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	ListActiveClients(ctx context.Context) ([]domain.Client, error)

	// GetActiveMoneyPages returns the client's active pages sorted by
	// priority descending.
	GetActiveMoneyPages(ctx context.Context, clientID uuid.UUID) ([]domain.MoneyPage, error)

	// GetRecentPublishedPosts returns up to limit of the most recently
	// published posts, excluding excludePostID when non-nil.
	GetRecentPublishedPosts(ctx context.Context, clientID uuid.UUID, excludePostID *uuid.UUID, limit int) ([]domain.ExistingPostRef, error)

	GetPost(ctx context.Context, id uuid.UUID) (*domain.BlogPost, error)
	CreatePost(ctx context.Context, post *domain.BlogPost) error
	UpdatePost(ctx context.Context, post *domain.BlogPost) error
	CountPostsSince(ctx context.Context, clientID uuid.UUID, since time.Time) (int, error)
	AppendAuditLog(ctx context.Context, postID uuid.UUID, report seo.Report) error
	GetAuditReports(ctx context.Context, postID uuid.UUID) ([]seo.Report, error)

	GetKeyword(ctx context.Context, id uuid.UUID) (*domain.Keyword, error)
	ListKeywordStrings(ctx context.Context, clientID uuid.UUID) ([]string, error)
	UpdateKeyword(ctx context.Context, keyword *domain.Keyword) error
	NextPendingKeyword(ctx context.Context, clientID uuid.UUID) (*domain.Keyword, error)
	SaveCluster(ctx context.Context, cluster *domain.TopicCluster) error
	SaveKeywords(ctx context.Context, keywords []domain.Keyword) error
}

// CostLedger records per-call AI spend. Record is fire-and-forget: the
// pipeline ignores its errors.
type CostLedger interface {
	Record(ctx context.Context, clientID uuid.UUID, taskType string, resp ai.Response, postID *uuid.UUID)
}

// Scheduler controls when generation sweeps execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
