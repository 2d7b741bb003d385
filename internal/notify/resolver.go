package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/retry"
	"github.com/taskwire/taskwire/internal/store"
)

// Resolver computes the deduplicated recipient set for an event scope.
//
// Project lookups go through a bounded retry because the write that produced
// the event may not be visible to this read path yet; the project store can
// sit behind a lagging replica. The retry budget, not a single read, is the
// unit of failure.
type Resolver struct {
	projects  store.ProjectStore
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

// NewResolver creates a Resolver using the retry tuning from cfg.
func NewResolver(projects store.ProjectStore, cfg config.NotifyConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		projects:  projects,
		attempts:  cfg.ResolveAttempts,
		baseDelay: time.Duration(cfg.ResolveBackoffMillis) * time.Millisecond,
		logger:    logger.With("component", "recipient_resolver"),
	}
}

// Resolve returns the recipients for the given scope with excludePrincipal
// removed and duplicates collapsed.
//
// For a project scope the set is the project's creator plus members. If
// excluding the actor empties the set (the creator acted alone), the creator
// is kept anyway so a durable record always exists for project-scoped
// events. If the project is still missing after the retry budget, Resolve
// fails and the whole notification fails with it.
func (r *Resolver) Resolve(ctx context.Context, scope Scope, excludePrincipal uuid.UUID) ([]uuid.UUID, error) {
	if !scope.IsProject() {
		return dedupe(scope.principals, excludePrincipal), nil
	}

	projectID := scope.ProjectID()
	project, err := retry.Value(ctx, r.attempts, r.baseDelay,
		func(ctx context.Context) (*domain.Project, error) {
			return r.projects.GetByID(ctx, projectID)
		})
	if err != nil {
		r.logger.Warn("project lookup exhausted retry budget",
			"project_id", projectID,
			"attempts", r.attempts,
			"error", err)
		return nil, fmt.Errorf("failed to resolve recipients for project %s: %w", projectID, err)
	}

	recipients := dedupe(project.Audience(), excludePrincipal)

	// The actor was the only member of the audience. Keep the creator so the
	// event still leaves a durable record, even if nobody should see it live.
	if len(recipients) == 0 && project.CreatorID != uuid.Nil {
		recipients = []uuid.UUID{project.CreatorID}
	}

	return recipients, nil
}

// dedupe collapses duplicates and removes exclude and nil ids, preserving
// first-seen order.
func dedupe(principals []uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(principals))
	out := make([]uuid.UUID, 0, len(principals))

	for _, p := range principals {
		if p == uuid.Nil || p == exclude {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out
}
