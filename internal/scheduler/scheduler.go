package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/wealthsim/advisor/internal/domain"
	"github.com/wealthsim/advisor/internal/planner"
	"github.com/wealthsim/advisor/internal/store"
)

// Scheduler periodically re-runs prioritization for every stored profile so
// the persisted priority goal tracks drifting balances. Each run persists
// through the same planner callback the API uses; the near-tie stability
// rule keeps the priority goal from flapping between runs.
type Scheduler struct {
	cron     *cron.Cron
	planner  *planner.Planner
	profiles store.ProfileStore
	spec     string
}

// New creates a scheduler with a cron spec like "0 6 * * *".
func New(pl *planner.Planner, profiles store.ProfileStore, spec string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		planner:  pl,
		profiles: profiles,
		spec:     spec,
	}
}

// Start registers the job and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid scheduler spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("re-prioritization scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("re-prioritization scheduler stopped")
}

// runOnce re-prioritizes every stored profile. Profiles without goals are
// skipped; other failures are logged and do not stop the sweep.
func (s *Scheduler) runOnce(ctx context.Context) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: failed to list profiles")
		return
	}

	now := time.Now()
	for _, profile := range profiles {
		result, err := s.planner.Prioritize(profile, now, store.PersistFunc(ctx, s.profiles))
		if errors.Is(err, domain.ErrNoGoals) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("profile", profile.ID).Msg("scheduler: prioritization failed")
			continue
		}
		log.Info().
			Str("profile", profile.ID).
			Str("priority_goal", result.PriorityGoal.ID).
			Float64("score", result.PriorityGoal.FeasibilityScore).
			Int("reallocations", len(result.CapitalReallocations)).
			Msg("scheduler: profile re-prioritized")
	}
}
