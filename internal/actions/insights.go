package actions

import (
	"context"

	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
)

// DefaultEndDate is one month from today in the configured insights zone.
func (d *Dispatcher) DefaultEndDate() string {
	return d.opts.Now().In(d.opts.Location).AddDate(0, 1, 0).Format("2006-01-02")
}

// Insights fetches AI insights up to endDate (default DefaultEndDate).
// refresh forces regeneration. Insights need at least one assignment.
func (d *Dispatcher) Insights(ctx context.Context, endDate string, refresh bool) (*models.InsightsResult, error) {
	release, err := d.enter(gate.OpInsights)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := d.ensureLoaded(ctx); err != nil {
		return nil, d.fail("Error generating insights: ", err)
	}
	if d.store.Len() == 0 {
		d.banner.Info("%v", ErrNoAssignments)
		return nil, ErrNoAssignments
	}
	if endDate == "" {
		endDate = d.DefaultEndDate()
	}

	res, err := d.api.Insights(ctx, endDate, refresh)
	if err != nil {
		return nil, d.fail("Error generating insights: ", err)
	}
	if res.Cached {
		d.banner.Info("Showing cached insights from %s", res.GeneratedAt)
	} else {
		d.banner.Success("AI insights generated")
	}
	return res, nil
}

// InsightsStatus reports whether cached insights exist. It is not gated.
func (d *Dispatcher) InsightsStatus(ctx context.Context) (*models.InsightsStatus, error) {
	st, err := d.api.InsightsStatus(ctx)
	if err != nil {
		return nil, d.fail("Error: ", err)
	}
	return st, nil
}
