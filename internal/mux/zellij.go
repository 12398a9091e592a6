package mux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/leo/txr/internal/layout"
	"github.com/leo/txr/internal/logger"
)

func init() {
	Register("zellij", "ZELLIJ", func(o Options) Multiplexer {
		return &Zellij{runner: o.Runner, layoutPath: o.LayoutPath}
	})
}

// Zellij starts the editor through a copy of the user's layout with the
// placeholder pane swapped for the editor pane.
type Zellij struct {
	runner     Runner
	layoutPath string
}

func (*Zellij) Name() string   { return "zellij" }
func (*Zellij) EnvVar() string { return "ZELLIJ" }

// LayoutPath returns the configured layout, or ~/.config/zellij/layout.kdl.
func (z *Zellij) LayoutPath() (string, error) {
	if z.layoutPath != "" {
		return z.layoutPath, nil
	}
	return layout.DefaultPath()
}

// Launch runs zellij with the rewritten layout and removes it afterwards.
func (z *Zellij) Launch(_ context.Context, editor string, args []string) error {
	src, err := z.LayoutPath()
	if err != nil {
		return err
	}
	path, err := layout.Prepare(src, editor, args)
	if errors.Is(err, layout.ErrPlaceholderMissing) {
		logger.Get().WithField("layout", src).Warn(err)
	} else if err != nil {
		return err
	}
	defer os.Remove(path)

	logger.Get().WithField("layout", path).Debug("starting zellij")
	if err := z.runner.Interactive("zellij", "--layout", path); err != nil {
		return fmt.Errorf("start zellij with layout %s: %w", path, err)
	}
	return nil
}

// ListSessions runs zellij list-sessions. Zellij exits non-zero when there
// are no sessions, which is not an error here.
func (z *Zellij) ListSessions(ctx context.Context) ([]Session, error) {
	out, err := z.runner.Output(ctx, "zellij", "list-sessions", "--short", "--no-formatting")
	if err != nil {
		if strings.Contains(string(out), "No active zellij sessions") {
			return nil, nil
		}
		return nil, fmt.Errorf("zellij list-sessions: %w", err)
	}
	return parseZellijSessions(out), nil
}

// Attach attaches this terminal to the session. Zellij sessions cannot be
// switched from the CLI while inside another one.
func (z *Zellij) Attach(_ context.Context, name string, inside bool) error {
	if inside {
		return fmt.Errorf("zellij attach %s: %w", name, ErrNestedAttach)
	}
	if err := z.runner.Interactive("zellij", "attach", name); err != nil {
		return fmt.Errorf("zellij attach %s: %w", name, err)
	}
	return nil
}

func (z *Zellij) Kill(ctx context.Context, name string) error {
	if out, err := z.runner.Output(ctx, "zellij", "kill-session", name); err != nil {
		return fmt.Errorf("zellij kill-session: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (*Zellij) Capture(context.Context, string, int) (string, error) {
	return "", errors.ErrUnsupported
}

func parseZellijSessions(out []byte) []Session {
	var sessions []Session
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		// Older zellij releases ignore --short and append a status.
		if i := strings.IndexByte(name, ' '); i > 0 {
			name = name[:i]
		}
		sessions = append(sessions, Session{Name: name, Multiplexer: "zellij"})
	}
	return sessions
}
