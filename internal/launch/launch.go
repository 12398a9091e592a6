package launch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/leo/txr/internal/config"
	"github.com/leo/txr/internal/logger"
	"github.com/leo/txr/internal/mux"
	"github.com/leo/txr/internal/session"
)

// ErrNotTerminal is returned when a new session would be started without a
// terminal to attach it to.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Launcher decides between running the editor in place and starting it in a
// new multiplexer session.
type Launcher struct {
	Config config.Config
	Runner mux.Runner
	// Lookup reads environment markers. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
	// IsTerminal reports whether stdin is a terminal. Defaults to isatty.
	IsTerminal func() bool
	Identity   mux.Identity
}

// New returns a Launcher for cfg with OS defaults filled in.
func New(cfg config.Config) *Launcher {
	return &Launcher{
		Config:     cfg,
		Runner:     mux.OSRunner{},
		Lookup:     os.LookupEnv,
		IsTerminal: stdinIsTerminal,
		Identity:   mux.Identity{User: session.CurrentUser(), Host: session.CurrentHost()},
	}
}

// Run opens args in the configured editor. Inside a multiplexer the editor
// runs directly; otherwise a new session of the configured multiplexer is
// created around it.
func (l *Launcher) Run(ctx context.Context, args []string) error {
	editor := l.Config.Editor
	if editor == "" {
		editor = config.DefaultEditor
	}
	log := logger.Get().WithField("editor", editor)

	if inside := mux.Detect(l.Lookup); inside != "" {
		log.WithField("multiplexer", inside).Debug("already inside a multiplexer, running editor directly")
		return l.runEditor(editor, args)
	}

	m, err := l.Multiplexer()
	if err != nil {
		return err
	}
	if l.IsTerminal != nil && !l.IsTerminal() {
		return fmt.Errorf("start %s: %w", m.Name(), ErrNotTerminal)
	}
	log.WithField("multiplexer", m.Name()).WithField("args", args).Debug("starting new session")
	return m.Launch(ctx, editor, args)
}

// Multiplexer builds the multiplexer named in the config.
func (l *Launcher) Multiplexer() (mux.Multiplexer, error) {
	return mux.New(l.Config.Multiplexer, mux.Options{
		Runner:     l.Runner,
		LayoutPath: l.Config.Layout,
		Identity:   l.Identity,
	})
}

// Inside reports whether the process runs inside the named multiplexer.
func (l *Launcher) Inside(name string) bool {
	return mux.Detect(l.Lookup) == name
}

func (l *Launcher) runEditor(editor string, args []string) error {
	if err := l.Runner.Interactive(editor, args...); err != nil {
		return fmt.Errorf("run %s: %w", editor, err)
	}
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
