// Package actions implements every user operation. Gated operations take
// their gate flag before any network call and release it on every exit
// path; all failures are reported to the status banner and returned.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcus/studysync/internal/apiclient"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/poll"
	"github.com/marcus/studysync/internal/setup"
	"github.com/marcus/studysync/internal/snapshot"
	"github.com/marcus/studysync/internal/status"
)

// Backend is the subset of the API client the actions use.
type Backend interface {
	setup.Source
	setup.Applier

	ListAssignments(ctx context.Context) ([]models.Assignment, error)
	ListDeleted(ctx context.Context) ([]models.Assignment, error)
	CreateAssignment(ctx context.Context, a apiclient.NewAssignment) error
	UpdateAssignment(ctx context.Context, id string, fields map[string]any) error
	BulkUpdate(ctx context.Context, ids []string, fields map[string]any) (int, error)
	DeleteAssignment(ctx context.Context, id string) error
	RestoreAssignment(ctx context.Context, id string) error
	PurgeAssignment(ctx context.Context, id string) error
	GenerateAISummary(ctx context.Context, id string) error
	AddReminder(ctx context.Context, id string) error
	RemoveReminder(ctx context.Context, id string) error
	DeleteCourse(ctx context.Context, course string) error
	StreamSync(ctx context.Context, aiEnabled bool, fn apiclient.SyncHandler) error
	Insights(ctx context.Context, endDate string, refresh bool) (*models.InsightsResult, error)
	InsightsStatus(ctx context.Context) (*models.InsightsStatus, error)
}

// Snapshotter persists the last loaded snapshot for offline reads.
type Snapshotter interface {
	Save(ctx context.Context, assignments []models.Assignment, courses []models.Course) error
}

// Name identifies an action in the registry.
type Name string

const (
	ActionSync            Name = "sync"
	ActionReload          Name = "reload"
	ActionGenerateSummary Name = "summary.generate"
	ActionRemoveSummary   Name = "summary.remove"
	ActionAddReminder     Name = "reminder.add"
	ActionRemoveReminder  Name = "reminder.remove"
	ActionInsights        Name = "insights"
	ActionAddAssignment   Name = "assignment.add"
	ActionDelete          Name = "assignment.delete"
	ActionRestore         Name = "assignment.restore"
	ActionPurge           Name = "assignment.purge"
	ActionUpdate          Name = "assignment.update"
	ActionBulkUpdate      Name = "assignment.bulk-update"
	ActionOpenSettings    Name = "settings.open"
	ActionSaveSettings    Name = "settings.save"
	ActionEnableCourse    Name = "course.enable"
	ActionDisableCourse   Name = "course.disable"
	ActionSetReminderList Name = "course.set-list"
	ActionAddCourse       Name = "course.add"
	ActionDeleteCourse    Name = "course.delete"
)

// Args carries the inputs any action may need.
type Args struct {
	AssignmentID string
	IDs          []string
	Course       string
	ReminderList string
	Fields       map[string]any
	Assignment   NewAssignment
	EndDate      string
	Refresh      bool
	Settings     models.Settings
	Progress     func(models.SyncEvent)
}

// Handler runs one registered action.
type Handler func(ctx context.Context, args Args) error

// Precondition errors. They are reported before any network call.
var (
	ErrAssignmentNotFound = errors.New("Assignment not found.")
	ErrNoAssignments      = errors.New(gate.NoAssignmentsReason)
	ErrUnknownAction      = errors.New("unknown action")
)

// SetupRequiredError means the action was redirected into setup. Resume is
// the continuation that CompleteSetup will run.
type SetupRequiredError struct {
	Resume Resume
	// Course is set when a specific course is missing its reminder list.
	Course string
}

func (e *SetupRequiredError) Error() string {
	if e.Course != "" {
		return fmt.Sprintf("Please set a reminder list name for %q below.", e.Course)
	}
	return "Please complete setup to continue."
}

// Options tune a Dispatcher.
type Options struct {
	AIWait   poll.Config
	Location *time.Location
	Cache    Snapshotter
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Dispatcher owns the gate-guarded actions.
type Dispatcher struct {
	api    Backend
	gate   *gate.Gate
	store  *snapshot.Store
	banner *status.Banner
	opts   Options
	log    zerolog.Logger

	handlers map[Name]Handler

	mu      sync.Mutex
	pending *Resume
}

// New wires a dispatcher and registers every action once.
func New(api Backend, g *gate.Gate, store *snapshot.Store, banner *status.Banner, opts Options) *Dispatcher {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AIWait.Interval == 0 && opts.AIWait.Timeout == 0 {
		opts.AIWait = poll.Default()
	}
	opts.AIWait.Logger = opts.Logger
	d := &Dispatcher{
		api:    api,
		gate:   g,
		store:  store,
		banner: banner,
		opts:   opts,
		log:    opts.Logger,
	}
	d.register()
	return d
}

// Gate returns the dispatcher's gate.
func (d *Dispatcher) Gate() *gate.Gate { return d.gate }

// Store returns the snapshot the dispatcher maintains.
func (d *Dispatcher) Store() *snapshot.Store { return d.store }

// Banner returns the status banner actions report to.
func (d *Dispatcher) Banner() *status.Banner { return d.banner }

func (d *Dispatcher) register() {
	d.handlers = map[Name]Handler{
		ActionSync: func(ctx context.Context, a Args) error {
			_, err := d.Sync(ctx, a.Progress)
			return err
		},
		ActionReload:          func(ctx context.Context, _ Args) error { return d.Reload(ctx) },
		ActionGenerateSummary: func(ctx context.Context, a Args) error { return d.GenerateAISummary(ctx, a.AssignmentID) },
		ActionRemoveSummary:   func(ctx context.Context, a Args) error { return d.RemoveAISummary(ctx, a.AssignmentID) },
		ActionAddReminder:     func(ctx context.Context, a Args) error { return d.AddReminder(ctx, a.AssignmentID) },
		ActionRemoveReminder:  func(ctx context.Context, a Args) error { return d.RemoveReminder(ctx, a.AssignmentID) },
		ActionInsights: func(ctx context.Context, a Args) error {
			_, err := d.Insights(ctx, a.EndDate, a.Refresh)
			return err
		},
		ActionAddAssignment: func(ctx context.Context, a Args) error {
			_, err := d.AddAssignment(ctx, a.Assignment)
			return err
		},
		ActionDelete:  func(ctx context.Context, a Args) error { return d.Delete(ctx, a.AssignmentID) },
		ActionRestore: func(ctx context.Context, a Args) error { return d.Restore(ctx, a.AssignmentID, a.Course) },
		ActionPurge:   func(ctx context.Context, a Args) error { return d.Purge(ctx, a.AssignmentID) },
		ActionUpdate:  func(ctx context.Context, a Args) error { return d.Update(ctx, a.AssignmentID, a.Fields) },
		ActionBulkUpdate: func(ctx context.Context, a Args) error {
			_, err := d.BulkUpdate(ctx, a.IDs, a.Fields)
			return err
		},
		ActionOpenSettings:    func(context.Context, Args) error { return d.OpenSettings() },
		ActionSaveSettings:    func(ctx context.Context, a Args) error { return d.SaveSettings(ctx, a.Settings) },
		ActionEnableCourse:    func(ctx context.Context, a Args) error { return d.SetCourseEnabled(ctx, a.Course, true) },
		ActionDisableCourse:   func(ctx context.Context, a Args) error { return d.SetCourseEnabled(ctx, a.Course, false) },
		ActionSetReminderList: func(ctx context.Context, a Args) error { return d.SetReminderList(ctx, a.Course, a.ReminderList) },
		ActionAddCourse:       func(ctx context.Context, a Args) error { return d.AddCourse(ctx, a.Course) },
		ActionDeleteCourse:    func(ctx context.Context, a Args) error { return d.DeleteCourse(ctx, a.Course) },
	}
}

// Actions lists registered action names, sorted.
func (d *Dispatcher) Actions() []Name {
	names := make([]Name, 0, len(d.handlers))
	for n := range d.handlers {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Dispatch routes name to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, name Name, args Args) error {
	h, ok := d.handlers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	d.log.Debug().Str("action", string(name)).Msg("dispatch")
	return h(ctx, args)
}

// enter takes op's gate flag, reporting a denial to the banner.
func (d *Dispatcher) enter(op gate.Op) (func(), error) {
	release, err := d.gate.TryEnter(op)
	if err != nil {
		d.log.Debug().Str("op", op.Name).Str("reason", err.Error()).Msg("operation blocked")
		d.banner.Info("%v", err)
		return release, err
	}
	return release, nil
}

// fail reports err to the banner with prefix and returns it.
func (d *Dispatcher) fail(prefix string, err error) error {
	d.log.Warn().Err(err).Msg(prefix)
	d.banner.Error("%s%s", prefix, err.Error())
	return err
}

// Reload replaces the snapshot from the backend and refreshes dependent controls.
func (d *Dispatcher) Reload(ctx context.Context) error {
	assignments, err := d.api.ListAssignments(ctx)
	if err != nil {
		return err
	}
	courses, err := d.api.ListCourses(ctx)
	if err != nil {
		return err
	}
	d.store.ReplaceAssignments(assignments)
	d.store.ReplaceCourses(courses)
	d.gate.SetAssignmentCount(d.store.Len())

	if d.opts.Cache != nil {
		if err := d.opts.Cache.Save(ctx, d.store.Assignments(), d.store.Courses()); err != nil {
			d.log.Warn().Err(err).Msg("cache snapshot")
		}
	}
	return nil
}

// reconcile reloads after a confirmed write. A failed reload keeps the
// optimistic state and is only logged.
func (d *Dispatcher) reconcile(ctx context.Context) {
	if err := d.Reload(ctx); err != nil {
		d.log.Warn().Err(err).Msg("reload after write")
	}
}

func (d *Dispatcher) ensureLoaded(ctx context.Context) error {
	if d.store.Loaded() {
		return nil
	}
	return d.Reload(ctx)
}

func (d *Dispatcher) lookup(ctx context.Context, id string) (models.Assignment, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return models.Assignment{}, err
	}
	a, ok := d.store.Assignment(id)
	if !ok {
		return models.Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}
