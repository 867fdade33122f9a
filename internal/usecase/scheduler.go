package usecase

import (
	"context"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/ports"
)

// Monthly article quota per plan.
var planLimits = map[string]int{
	"free":    2,
	"starter": 8,
	"pro":     20,
	"agency":  50,
}

const defaultPlanLimit = 2

// Scheduler wires the cron-like driver with the generation sweep.
type Scheduler struct {
	driver ports.Scheduler
	engine *Engine
}

// NewScheduler returns a helper to start/stop recurring sweeps.
func NewScheduler(driver ports.Scheduler, engine *Engine) *Scheduler {
	return &Scheduler{driver: driver, engine: engine}
}

// Start registers the sweep with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.engine == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.engine.RunScheduledSweep(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// RunScheduledSweep generates one article for every active client that
// still has monthly quota and a pending keyword. A failing client never
// stops the sweep; its keyword goes back to pending for the next run.
func (e *Engine) RunScheduledSweep(ctx context.Context, now time.Time) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	clients, err := e.storage.ListActiveClients(ctx)
	if err != nil {
		e.log.Error("sweep: list clients", "error", err)
		return
	}

	for _, client := range clients {
		limit, ok := planLimits[client.Plan]
		if !ok {
			limit = defaultPlanLimit
		}

		count, err := e.storage.CountPostsSince(ctx, client.ID, firstOfMonth)
		if err != nil {
			e.log.Error("sweep: count posts", "client", client.Name, "error", err)
			continue
		}
		if count >= limit {
			e.log.Info("sweep: monthly quota reached",
				"client", client.Name, "count", count, "limit", limit)
			continue
		}

		keyword, err := e.storage.NextPendingKeyword(ctx, client.ID)
		if err != nil {
			e.log.Info("sweep: no pending keywords", "client", client.Name)
			continue
		}

		keyword.State = domain.KeywordInProgress
		if err := e.storage.UpdateKeyword(ctx, keyword); err != nil {
			e.log.Error("sweep: mark keyword in progress", "client", client.Name, "error", err)
			continue
		}

		if _, err := e.GenerateFromKeyword(ctx, client.ID, keyword.ID); err != nil {
			e.log.Error("sweep: generation failed",
				"client", client.Name, "keyword", keyword.Keyword, "error", err)
			keyword.State = domain.KeywordPending
			if updErr := e.storage.UpdateKeyword(ctx, keyword); updErr != nil {
				e.log.Error("sweep: restore keyword state", "error", updErr)
			}
			continue
		}

		e.log.Info("sweep: article generated",
			"client", client.Name, "keyword", keyword.Keyword)
	}
}
