package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/apiclient"
	"github.com/marcus/studysync/internal/cache"
	"github.com/marcus/studysync/internal/config"
	"github.com/marcus/studysync/internal/forms"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/logging"
	"github.com/marcus/studysync/internal/output"
	"github.com/marcus/studysync/internal/snapshot"
	"github.com/marcus/studysync/internal/status"
)

// app is everything a command needs, built from the resolved config.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
	api    *apiclient.Client
	cache  *cache.Cache
	disp   *actions.Dispatcher
}

// loadApp resolves config and wires the client, cache and dispatcher.
// Banners print as they are raised unless --json is set.
func loadApp(cmd *cobra.Command) (*app, error) {
	return newApp(cmd, status.NotifierFunc(func(m status.Message) {
		if !jsonOutput {
			output.Banner(m)
		}
	}))
}

// newApp is loadApp with an explicit banner sink; sink may be nil.
func newApp(cmd *cobra.Command, sink status.Notifier) (*app, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}

	a := &app{cfg: cfg, log: log, closer: closer}
	a.api = apiclient.New(cfg.Server.URL, cfg.Server.Timeout, log)

	opts := actions.Options{
		AIWait:   cfg.AISummary,
		Location: cfg.Insights.Location,
		Logger:   log,
	}
	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache.Path, log)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Cache.Path).Msg("cache disabled")
		} else {
			a.cache = c
			opts.Cache = c
		}
	}

	banner := status.NewBanner(cfg.Status, sink)
	a.disp = actions.New(a.api, gate.New(), snapshot.New(), banner, opts)
	log.Debug().Str("version", version).Str("server", cfg.Server.URL).Str("command", cmd.CommandPath()).Msg("app ready")
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	a.closer.Close()
}

// withApp runs fn with a loaded app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// finishSetup handles a setup redirect: on a terminal it shows the setup
// form and resumes the interrupted operation, otherwise it points at the
// setup command. Other errors pass through.
func (a *app) finishSetup(ctx context.Context, err error) error {
	var setupErr *actions.SetupRequiredError
	if !errors.As(err, &setupErr) {
		return err
	}
	if !interactive() || jsonOutput {
		output.Info("Run 'studysync setup' to finish setup, then try again.")
		return err
	}

	form, ferr := a.disp.SetupForm(ctx)
	if ferr != nil {
		output.Error("%v", ferr)
		return ferr
	}
	if ferr := forms.RunSetup(ctx, form); ferr != nil {
		a.disp.CancelSetup()
		if !errors.Is(ferr, context.Canceled) {
			output.Error("%v", ferr)
		}
		return ferr
	}
	_, ferr = a.disp.CompleteSetup(ctx, form)
	return ferr
}

// loadSnapshot fills the store from the backend, falling back to the cache
// when the backend is unreachable or cached is set.
func (a *app) loadSnapshot(ctx context.Context, cached bool) (fromCache bool, err error) {
	if !cached {
		err = a.disp.Reload(ctx)
		if err == nil {
			return false, nil
		}
		if a.cache == nil {
			output.Error("%v", err)
			return false, err
		}
		a.log.Warn().Err(err).Msg("backend unreachable, using cache")
	}
	if a.cache == nil {
		err := errors.New("cache is disabled")
		output.Error("%v", err)
		return false, err
	}
	snap, cerr := a.cache.Load(ctx)
	if cerr != nil {
		if err != nil {
			cerr = fmt.Errorf("%w (cache: %v)", err, cerr)
		}
		output.Error("%v", cerr)
		return false, cerr
	}
	a.disp.Store().ReplaceAssignments(snap.Assignments)
	a.disp.Store().ReplaceCourses(snap.Courses)
	if !jsonOutput {
		output.Warning("showing cached data from %s", snap.SavedAt.Local().Format("Jan 2 15:04"))
	}
	return true, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
