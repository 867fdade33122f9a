package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type fakeProvider struct {
	id    string
	model string
	fail  bool

	mu    sync.Mutex
	calls int
}

func (p *fakeProvider) Generate(_ context.Context, prompt, system string, maxTokens int, temperature float64) Response {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.fail {
		return Response{Provider: p.id, Model: p.model, Success: false, Error: "simulated outage"}
	}
	return Response{
		Content:      "respuesta de " + p.id,
		InputTokens:  100,
		OutputTokens: 200,
		CostUSD:      0.001,
		Provider:     p.id,
		Model:        p.model,
		Success:      true,
	}
}

func (p *fakeProvider) EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens+outputTokens) / 1_000_000
}

type fakePool struct {
	mu       sync.Mutex
	built    []string
	failures map[string]bool
}

func (f *fakePool) factory(providerID, model string) (Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := providerID + ":" + model
	if providerID == "desconocido" {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	f.built = append(f.built, key)
	return &fakeProvider{id: providerID, model: model, fail: f.failures[key]}, nil
}

func testTable() RoutingTable {
	return RoutingTable{
		TaskArticleGeneration: {
			"free":    {Provider: "deepseek", Model: "deepseek-chat"},
			"starter": {Provider: "deepseek", Model: "deepseek-chat"},
			"pro":     {Provider: "claude", Model: "sonnet"},
		},
		TaskEditorialReview: {
			"pro": {Provider: "claude", Model: "haiku"},
		},
	}
}

func newTestRouter(pool *fakePool) *Router {
	return NewRouter(testTable(), pool.factory, slog.Default())
}

func TestDispatchRoutesByTaskAndPlan(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakePool{})
	resp := router.Dispatch(context.Background(), TaskArticleGeneration, "pro", "hola", "", 1000, 0.7, true)

	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.Provider != "claude" || resp.Model != "sonnet" {
		t.Fatalf("wrong route: %s/%s", resp.Provider, resp.Model)
	}
	if resp.TokensTotal() != 300 {
		t.Errorf("TokensTotal = %d, want 300", resp.TokensTotal())
	}
}

func TestDispatchTaskUnavailable(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	router := newTestRouter(pool)
	resp := router.Dispatch(context.Background(), TaskEditorialReview, "free", "hola", "", 1000, 0.7, true)

	if resp.Success {
		t.Fatal("unroutable task must not succeed")
	}
	if !strings.Contains(resp.Error, "no disponible") {
		t.Errorf("error should name the unavailable task, got %q", resp.Error)
	}
	if len(pool.built) != 0 {
		t.Errorf("no provider should be instantiated, built %v", pool.built)
	}
}

func TestDispatchFallbackOnPrimaryFailure(t *testing.T) {
	t.Parallel()

	pool := &fakePool{failures: map[string]bool{"deepseek:deepseek-chat": true}}
	router := newTestRouter(pool)
	resp := router.Dispatch(context.Background(), TaskArticleGeneration, "starter", "hola", "", 1000, 0.7, true)

	if !resp.Success {
		t.Fatalf("fallback should have answered, got error %q", resp.Error)
	}
	if resp.Provider != FallbackProviderID || resp.Model != FallbackModel {
		t.Fatalf("expected fallback %s/%s, got %s/%s",
			FallbackProviderID, FallbackModel, resp.Provider, resp.Model)
	}
}

func TestDispatchNoFallbackWhenDisabled(t *testing.T) {
	t.Parallel()

	pool := &fakePool{failures: map[string]bool{"deepseek:deepseek-chat": true}}
	router := newTestRouter(pool)
	resp := router.Dispatch(context.Background(), TaskArticleGeneration, "starter", "hola", "", 1000, 0.7, false)

	if resp.Success {
		t.Fatal("primary failure with fallback disabled must not succeed")
	}
	if resp.Provider != "deepseek" {
		t.Fatalf("response should come from the primary, got %s", resp.Provider)
	}
}

func TestDispatchFallbackFailureIsReturned(t *testing.T) {
	t.Parallel()

	pool := &fakePool{failures: map[string]bool{
		"deepseek:deepseek-chat": true,
		"claude:haiku":           true,
	}}
	router := newTestRouter(pool)
	resp := router.Dispatch(context.Background(), TaskArticleGeneration, "free", "hola", "", 1000, 0.7, true)

	if resp.Success {
		t.Fatal("both providers down, dispatch must report failure")
	}
	if resp.Provider != FallbackProviderID {
		t.Fatalf("failure should carry the fallback provider, got %s", resp.Provider)
	}
}

func TestProviderPoolIsMemoized(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	router := newTestRouter(pool)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		router.Dispatch(ctx, TaskArticleGeneration, "free", "hola", "", 1000, 0.7, true)
	}
	router.Dispatch(ctx, TaskArticleGeneration, "pro", "hola", "", 1000, 0.7, true)

	if len(pool.built) != 2 {
		t.Fatalf("expected 2 provider instances, factory ran %d times: %v", len(pool.built), pool.built)
	}
}

func TestDispatchDirectBypassesTable(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakePool{})
	resp := router.DispatchDirect(context.Background(), "claude", "opus", "hola", "", 500, 0.2)

	if !resp.Success {
		t.Fatalf("direct dispatch failed: %q", resp.Error)
	}
	if resp.Model != "opus" {
		t.Fatalf("expected requested model, got %s", resp.Model)
	}
}

func TestDispatchUnknownProviderIsTrapped(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakePool{})
	resp := router.DispatchDirect(context.Background(), "desconocido", "x", "hola", "", 500, 0.7)

	if resp.Success {
		t.Fatal("unknown provider must not succeed")
	}
	if resp.Error == "" {
		t.Fatal("error message missing")
	}
}

func TestIsTaskAvailable(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakePool{})

	if !router.IsTaskAvailable(TaskEditorialReview, "pro") {
		t.Error("revision should be routable for pro")
	}
	if router.IsTaskAvailable(TaskEditorialReview, "free") {
		t.Error("revision must not be routable for free")
	}
	if router.IsTaskAvailable("tarea_inexistente", "pro") {
		t.Error("unknown task must not be routable")
	}
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakePool{})

	cost, ok := router.EstimateCost(TaskArticleGeneration, "free", 500_000, 500_000)
	if !ok {
		t.Fatal("routable task should produce an estimate")
	}
	if cost != 1.0 {
		t.Errorf("estimate = %f, want 1.0", cost)
	}

	if _, ok := router.EstimateCost(TaskEditorialReview, "free", 1, 1); ok {
		t.Error("unroutable task must not produce an estimate")
	}
}

func TestConcurrentDispatch(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	router := newTestRouter(pool)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := router.Dispatch(context.Background(), TaskArticleGeneration, "free", "hola", "", 100, 0.7, true)
			if !resp.Success {
				t.Errorf("concurrent dispatch failed: %q", resp.Error)
			}
		}()
	}
	wg.Wait()

	if len(pool.built) != 1 {
		t.Errorf("pool should hold one instance, factory ran %d times", len(pool.built))
	}
}
