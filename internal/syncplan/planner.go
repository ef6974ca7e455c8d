package syncplan

import (
	"context"

	"spotsync/internal/catalog"
	"spotsync/internal/logger"
)

// Acquirer obtains audio for one track into folder. Its outcome is not
// verified here; a later run's existence check is the only judge.
type Acquirer interface {
	Acquire(ctx context.Context, t catalog.Track, folder string) error
}

// Plan partitions a catalog, preserving catalog order in both halves.
type Plan struct {
	Present []catalog.Track
	Missing []catalog.Track
}

// Planner finds missing tracks and acquires them one at a time.
type Planner struct {
	Acquirer Acquirer
	Logger   *logger.Logger
	DryRun   bool

	// Planned holds files a dry run would have created before planning.
	Planned []string

	// OnMissing is called once with the number of tracks to acquire.
	OnMissing func(total int)
	// OnAcquired is called after each acquisition attempt.
	OnAcquired func(t catalog.Track)
}

// NewPlanner creates a Planner.
func NewPlanner(acq Acquirer, log *logger.Logger, dryRun bool) *Planner {
	return &Planner{Acquirer: acq, Logger: log, DryRun: dryRun}
}

// Plan checks every track against folder.
func (p *Planner) Plan(tracks []catalog.Track, folder string) Plan {
	var plan Plan
	for _, t := range tracks {
		if ExistsWithPlanned(t, folder, p.Planned) {
			plan.Present = append(plan.Present, t)
		} else {
			plan.Missing = append(plan.Missing, t)
		}
	}
	return plan
}

// Run plans, reports the missing tracks and acquires each of them
// sequentially in catalog order. Existence is not re-checked afterwards.
// Run stops launching acquisitions once ctx is cancelled.
func (p *Planner) Run(ctx context.Context, tracks []catalog.Track, folder string) (Plan, error) {
	plan := p.Plan(tracks, folder)

	p.Logger.Info("=== Missing Songs ===")
	for _, t := range plan.Missing {
		p.Logger.Info(" - %s", t)
	}
	p.Logger.Debug("%d of %d track(s) already present", len(plan.Present), len(tracks))

	if p.DryRun || len(plan.Missing) == 0 {
		return plan, nil
	}

	if p.OnMissing != nil {
		p.OnMissing(len(plan.Missing))
	}

	for i, t := range plan.Missing {
		if err := ctx.Err(); err != nil {
			return plan, err
		}

		p.Logger.Info("[%d/%d] Downloading: %s", i+1, len(plan.Missing), t)
		if err := p.Acquirer.Acquire(ctx, t, folder); err != nil {
			p.Logger.Debug("Acquisition of %s reported: %v", t, err)
		}

		if p.OnAcquired != nil {
			p.OnAcquired(t)
		}
	}

	return plan, nil
}
