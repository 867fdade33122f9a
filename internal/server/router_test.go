package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/seo"
)

type stubStorage struct {
	posts   map[uuid.UUID]*domain.BlogPost
	reports []seo.Report
}

func (s *stubStorage) GetClient(context.Context, uuid.UUID) (*domain.Client, error) {
	return nil, domain.ErrClientNotFound
}

func (s *stubStorage) ListActiveClients(context.Context) ([]domain.Client, error) {
	return nil, nil
}

func (s *stubStorage) GetActiveMoneyPages(context.Context, uuid.UUID) ([]domain.MoneyPage, error) {
	return nil, nil
}

func (s *stubStorage) GetRecentPublishedPosts(context.Context, uuid.UUID, *uuid.UUID, int) ([]domain.ExistingPostRef, error) {
	return nil, nil
}

func (s *stubStorage) GetPost(_ context.Context, id uuid.UUID) (*domain.BlogPost, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

func (s *stubStorage) CreatePost(context.Context, *domain.BlogPost) error { return nil }
func (s *stubStorage) UpdatePost(context.Context, *domain.BlogPost) error { return nil }

func (s *stubStorage) CountPostsSince(context.Context, uuid.UUID, time.Time) (int, error) {
	return 0, nil
}

func (s *stubStorage) AppendAuditLog(context.Context, uuid.UUID, seo.Report) error { return nil }

func (s *stubStorage) GetAuditReports(context.Context, uuid.UUID) ([]seo.Report, error) {
	return s.reports, nil
}

func (s *stubStorage) GetKeyword(context.Context, uuid.UUID) (*domain.Keyword, error) {
	return nil, domain.ErrKeywordNotFound
}

func (s *stubStorage) ListKeywordStrings(context.Context, uuid.UUID) ([]string, error) {
	return nil, nil
}

func (s *stubStorage) UpdateKeyword(context.Context, *domain.Keyword) error { return nil }

func (s *stubStorage) NextPendingKeyword(context.Context, uuid.UUID) (*domain.Keyword, error) {
	return nil, domain.ErrKeywordNotFound
}

func (s *stubStorage) SaveCluster(context.Context, *domain.TopicCluster) error { return nil }
func (s *stubStorage) SaveKeywords(context.Context, []domain.Keyword) error { return nil }

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil, &stubStorage{}, slog.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetPost(t *testing.T) {
	t.Parallel()

	postID := uuid.New()
	store := &stubStorage{posts: map[uuid.UUID]*domain.BlogPost{
		postID: {
			ID:             postID,
			Title:          "Guía de jardinería urbana",
			Slug:           "guia-de-jardineria-urbana",
			PrimaryKeyword: "jardinería urbana",
			State:          domain.StateInReview,
		},
	}}
	router := NewRouter(nil, store, slog.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/posts/"+postID.String(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	var got postResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Slug != "guia-de-jardineria-urbana" {
		t.Fatalf("unexpected slug: %s", got.Slug)
	}
	if got.State != string(domain.StateInReview) {
		t.Fatalf("unexpected state: %s", got.State)
	}
}

func TestGetPostNotFound(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil, &stubStorage{}, slog.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/posts/"+uuid.NewString(), nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetPostBadID(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil, &stubStorage{}, slog.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/posts/not-a-uuid", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetAudits(t *testing.T) {
	t.Parallel()

	postID := uuid.New()
	store := &stubStorage{
		posts: map[uuid.UUID]*domain.BlogPost{
			postID: {ID: postID, State: domain.StateInReview},
		},
		reports: []seo.Report{
			{Score: 65, Passed: false},
			{Score: 85, Passed: true},
		},
	}
	router := NewRouter(nil, store, slog.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/posts/"+postID.String()+"/audits", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	var got struct {
		Audits []seo.Report `json:"audits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Audits) != 2 {
		t.Fatalf("expected 2 audits, got %d", len(got.Audits))
	}
	if !got.Audits[1].Passed {
		t.Fatal("second audit must be the passing one")
	}
}

func TestGenerateRejectsBadBody(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil, &stubStorage{}, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/clients/"+uuid.NewString()+"/generate", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
