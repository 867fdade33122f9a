package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Fallback used by Dispatch whenever the routed provider fails. The
// fallback call itself never falls back again.
const (
	FallbackProviderID = "claude"
	FallbackModel      = "haiku"
)

// Provider generates text for a single prompt. Implementations trap
// their own transport and API errors into the Response.
type Provider interface {
	Generate(ctx context.Context, prompt, system string, maxTokens int, temperature float64) Response
	EstimateCost(inputTokens, outputTokens int) float64
}

// Route is one (provider, model) entry of the routing table.
type Route struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// RoutingTable maps task type and client plan to a route. It is built
// once from configuration and never mutated afterwards.
type RoutingTable map[string]map[string]Route

// Factory builds a provider client for a provider id and model.
type Factory func(providerID, model string) (Provider, error)

// Router resolves tasks to providers and applies the fixed fallback.
// Provider clients are created lazily and memoized per provider:model,
// so concurrent pipeline runs share connections.
type Router struct {
	table   RoutingTable
	factory Factory
	log     *slog.Logger

	mu   sync.RWMutex
	pool map[string]Provider
}

func NewRouter(table RoutingTable, factory Factory, log *slog.Logger) *Router {
	return &Router{
		table:   table,
		factory: factory,
		log:     log.With("component", "ai_router"),
		pool:    make(map[string]Provider),
	}
}

// Dispatch resolves (taskType, clientPlan) against the routing table and
// calls the selected provider. When the primary call fails and
// useFallback is set, the same prompt is retried once on the fallback
// provider and that response is returned even if it also fails.
func (r *Router) Dispatch(ctx context.Context, taskType, clientPlan, prompt, system string, maxTokens int, temperature float64, useFallback bool) Response {
	route, ok := r.resolve(taskType, clientPlan)
	if !ok {
		r.log.Warn("task not routable", "task", taskType, "plan", clientPlan)
		return Response{
			Success: false,
			Error:   fmt.Sprintf("tarea '%s' no disponible para plan '%s'", taskType, clientPlan),
		}
	}

	r.log.Info("dispatching task",
		"task", taskType,
		"plan", clientPlan,
		"provider", route.Provider,
		"model", route.Model,
	)

	resp := r.call(ctx, route.Provider, route.Model, prompt, system, maxTokens, temperature)
	if resp.Success || !useFallback {
		return resp
	}

	r.log.Warn("primary provider failed, using fallback",
		"provider", route.Provider,
		"error", resp.Error,
	)
	resp = r.call(ctx, FallbackProviderID, FallbackModel, prompt, system, maxTokens, temperature)
	if resp.Success {
		r.log.Info("fallback succeeded", "provider", FallbackProviderID, "model", FallbackModel)
	}
	return resp
}

// DispatchDirect calls a specific provider and model, bypassing the
// routing table. Meant for manual and diagnostic invocations.
func (r *Router) DispatchDirect(ctx context.Context, providerID, model, prompt, system string, maxTokens int, temperature float64) Response {
	return r.call(ctx, providerID, model, prompt, system, maxTokens, temperature)
}

// IsTaskAvailable reports whether the routing table has an entry for the
// task and plan.
func (r *Router) IsTaskAvailable(taskType, clientPlan string) bool {
	_, ok := r.resolve(taskType, clientPlan)
	return ok
}

// EstimateCost prices a hypothetical call through the route that
// Dispatch would take. The second return is false when the task is not
// routable for the plan.
func (r *Router) EstimateCost(taskType, clientPlan string, inputTokens, outputTokens int) (float64, bool) {
	route, ok := r.resolve(taskType, clientPlan)
	if !ok {
		return 0, false
	}
	provider, err := r.provider(route.Provider, route.Model)
	if err != nil {
		return 0, false
	}
	return provider.EstimateCost(inputTokens, outputTokens), true
}

func (r *Router) resolve(taskType, clientPlan string) (Route, bool) {
	plans, ok := r.table[taskType]
	if !ok {
		return Route{}, false
	}
	route, ok := plans[clientPlan]
	return route, ok
}

func (r *Router) call(ctx context.Context, providerID, model, prompt, system string, maxTokens int, temperature float64) Response {
	provider, err := r.provider(providerID, model)
	if err != nil {
		return Response{
			Provider: providerID,
			Model:    model,
			Success:  false,
			Error:    err.Error(),
		}
	}
	return provider.Generate(ctx, prompt, system, maxTokens, temperature)
}

func (r *Router) provider(providerID, model string) (Provider, error) {
	key := providerID + ":" + model

	r.mu.RLock()
	provider, ok := r.pool[key]
	r.mu.RUnlock()
	if ok {
		return provider, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if provider, ok := r.pool[key]; ok {
		return provider, nil
	}
	provider, err := r.factory(providerID, model)
	if err != nil {
		return nil, fmt.Errorf("create provider %s: %w", key, err)
	}
	r.pool[key] = provider
	return provider, nil
}
