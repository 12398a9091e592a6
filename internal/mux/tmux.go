package mux

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leo/txr/internal/session"
)

func init() {
	Register("tmux", "TMUX", func(o Options) Multiplexer { return &Tmux{runner: o.Runner, id: o.Identity} })
}

// Tmux starts each editor in a fresh session named <user>-<host>-<n>.
type Tmux struct {
	runner Runner
	id     Identity
}

func (*Tmux) Name() string   { return "tmux" }
func (*Tmux) EnvVar() string { return "TMUX" }

// Launch creates a uniquely named session whose initial program is the editor.
func (t *Tmux) Launch(ctx context.Context, editor string, args []string) error {
	name := t.NextSessionName(ctx)
	cmd := append([]string{"new-session", "-s", name, editor}, args...)
	if err := t.runner.Interactive("tmux", cmd...); err != nil {
		return fmt.Errorf("tmux new-session %s: %w", name, err)
	}
	return nil
}

// NextSessionName probes tmux until it finds an unused session name.
func (t *Tmux) NextSessionName(ctx context.Context) string {
	base := session.Base(t.id.User, t.id.Host)
	return session.UniqueName(base, func(name string) bool {
		return t.HasSession(ctx, name)
	})
}

// HasSession reports whether a session with exactly this name exists.
// The "=" prefix stops tmux from matching on a name prefix.
func (t *Tmux) HasSession(ctx context.Context, name string) bool {
	_, err := t.runner.Output(ctx, "tmux", "has-session", "-t", "="+name)
	return err == nil
}

// ListSessions runs tmux list-sessions. A missing server yields no sessions.
func (t *Tmux) ListSessions(ctx context.Context) ([]Session, error) {
	out, err := t.runner.Output(ctx, "tmux", "list-sessions", "-F",
		"#{session_name}\t#{session_windows}\t#{session_created}\t#{session_attached}")
	if err != nil {
		if isNoServer(out) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-sessions: %w", err)
	}
	return parseTmuxSessions(out), nil
}

// Attach switches the current client when already inside tmux, otherwise
// attaches this terminal.
func (t *Tmux) Attach(ctx context.Context, name string, inside bool) error {
	if inside {
		if out, err := t.runner.Output(ctx, "tmux", "switch-client", "-t", "="+name); err != nil {
			return fmt.Errorf("switch-client: %s: %w", strings.TrimSpace(string(out)), err)
		}
		return nil
	}
	if err := t.runner.Interactive("tmux", "attach-session", "-t", "="+name); err != nil {
		return fmt.Errorf("attach-session: %w", err)
	}
	return nil
}

func (t *Tmux) Kill(ctx context.Context, name string) error {
	if out, err := t.runner.Output(ctx, "tmux", "kill-session", "-t", "="+name); err != nil {
		return fmt.Errorf("kill-session: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Capture captures the visible content of the session's active pane.
func (t *Tmux) Capture(ctx context.Context, name string, lines int) (string, error) {
	out, err := t.runner.Output(ctx, "tmux", "capture-pane", "-t", "="+name+":", "-e", "-p", "-S",
		fmt.Sprintf("-%d", lines))
	if err != nil {
		return "", fmt.Errorf("capture-pane %s: %w", name, err)
	}
	return string(out), nil
}

// parseTmuxSessions parses list-sessions output in the format requested by
// ListSessions. Malformed lines are skipped.
func parseTmuxSessions(out []byte) []Session {
	var sessions []Session
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 4 {
			continue
		}
		windows, _ := strconv.Atoi(fields[1])
		var created time.Time
		if secs, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			created = time.Unix(secs, 0)
		}
		attached, _ := strconv.Atoi(fields[3])
		sessions = append(sessions, Session{
			Name:        fields[0],
			Multiplexer: "tmux",
			Windows:     windows,
			Created:     created,
			Attached:    attached > 0,
		})
	}
	return sessions
}

func isNoServer(out []byte) bool {
	s := string(out)
	return strings.Contains(s, "no server running") ||
		strings.Contains(s, "error connecting to") ||
		strings.Contains(s, "no sessions")
}
