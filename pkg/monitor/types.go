package monitor

import (
	"time"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/setup"
)

// Pane is what fills the main area.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
	PaneInsights
)

// TickMsg is sent periodically to reload data and expire banners.
type TickMsg time.Time

// bannerTickMsg re-renders so expired banners disappear.
type bannerTickMsg time.Time

// RefreshDataMsg reports a reload of the dispatcher's store.
type RefreshDataMsg struct {
	Err error
	At  time.Time
}

// ControlsMsg is the gate's latest control state.
type ControlsMsg gate.Controls

// ActionDoneMsg reports a finished dispatcher action.
type ActionDoneMsg struct {
	Action actions.Name
	Err    error
}

// SyncProgressMsg is one progress event from a running sync.
type SyncProgressMsg models.SyncEvent

// InsightsMsg carries rendered insights.
type InsightsMsg struct {
	Result   *models.InsightsResult
	Rendered string
	Err      error
}

// SetupFormMsg opens the setup form after a redirect.
type SetupFormMsg struct {
	Form *setup.Form
	Err  error
}
