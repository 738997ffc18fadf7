package actions

import (
	"context"
	"errors"

	"github.com/marcus/studysync/internal/apiclient"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/setup"
)

// SyncResult summarizes a finished sync.
type SyncResult struct {
	TotalAdded    int
	AddedByCourse map[string]int
	// NewCoursesNeedSetup is set when the sync brought in courses that still
	// need reminder lists.
	NewCoursesNeedSetup bool
}

// Sync streams a sync from the backend. When setup is incomplete it records
// a sync continuation and returns *SetupRequiredError without starting the
// stream. progress, if set, sees every event in order.
func (d *Dispatcher) Sync(ctx context.Context, progress func(models.SyncEvent)) (*SyncResult, error) {
	release, err := d.enter(gate.OpSync)
	if err != nil {
		return nil, err
	}
	defer release()

	settings, required, err := d.checkSetup(ctx)
	if err != nil {
		return nil, d.fail("Error syncing: ", err)
	}
	if required {
		return nil, d.redirect(Resume{Action: ActionSync}, "")
	}
	return d.runSync(ctx, settings.AIEnabled(), progress)
}

func (d *Dispatcher) runSync(ctx context.Context, aiEnabled bool, progress func(models.SyncEvent)) (*SyncResult, error) {
	var (
		res      SyncResult
		terminal *models.SyncEvent
	)
	err := d.api.StreamSync(ctx, aiEnabled, func(ev models.SyncEvent) error {
		switch ev.Type {
		case models.SyncProgress:
			if ev.Assignment != nil {
				d.store.Upsert(*ev.Assignment)
				d.gate.SetAssignmentCount(d.store.Len())
			}
		case models.SyncComplete, models.SyncError:
			e := ev
			terminal = &e
		}
		if progress != nil {
			progress(ev)
		}
		return nil
	})

	switch {
	case errors.Is(err, apiclient.ErrStreamClosed):
		d.log.Warn().Msg("sync stream ended without a result")
		d.banner.Error("Error syncing: Connection error")
		return nil, err
	case err != nil:
		return nil, d.fail("Error syncing: ", err)
	case terminal.Type == models.SyncError:
		return nil, d.fail("Error: ", &apiclient.APIError{Status: 200, Message: terminal.Error})
	}

	res.TotalAdded = terminal.TotalAdded
	res.AddedByCourse = terminal.AddedByCourse
	d.log.Info().Int("added", res.TotalAdded).Msg("sync complete")
	if res.TotalAdded > 0 {
		d.banner.Success("Successfully synced %d new assignments!", res.TotalAdded)
	} else {
		d.banner.Info("No new assignments to add. You're all caught up!")
	}

	d.reconcile(ctx)
	if s, err := d.api.Settings(ctx); err != nil {
		d.log.Warn().Err(err).Msg("load settings after sync")
	} else if setup.Required(s, d.store.Courses()) {
		res.NewCoursesNeedSetup = true
		d.banner.Info("New courses detected! Please set reminder list names for all courses below.")
	}
	return &res, nil
}

// checkSetup fetches settings and courses. A failed course fetch is logged
// and treated as complete so the action can proceed.
func (d *Dispatcher) checkSetup(ctx context.Context) (*models.Settings, bool, error) {
	settings, err := d.api.Settings(ctx)
	if err != nil {
		return nil, false, err
	}
	courses, err := d.api.ListCourses(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("setup check: course fetch failed")
		return settings, false, nil
	}
	d.store.ReplaceCourses(courses)
	return settings, setup.Required(settings, courses), nil
}
