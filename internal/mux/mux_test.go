package mux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo/txr/internal/config"
)

type fakeRunner struct {
	calls       []runnerCall
	interactive []runnerCall
	// outputs maps "name arg0 arg1..." to a canned result.
	outputs map[string]runnerResult
	// onInteractive runs before an interactive call returns.
	onInteractive func(name string, args []string) error
}

type runnerCall struct {
	name string
	args []string
}

type runnerResult struct {
	out []byte
	err error
}

func key(name string, args ...string) string {
	k := name
	for _, a := range args {
		k += " " + a
	}
	return k
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, runnerCall{name: name, args: append([]string(nil), args...)})
	if r, ok := f.outputs[key(name, args...)]; ok {
		return r.out, r.err
	}
	return nil, nil
}

func (f *fakeRunner) Interactive(name string, args ...string) error {
	f.interactive = append(f.interactive, runnerCall{name: name, args: append([]string(nil), args...)})
	if f.onInteractive != nil {
		return f.onInteractive(name, args)
	}
	return nil
}

var errExit1 = errors.New("exit status 1")

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"outside", map[string]string{"HOME": "/home/leo"}, ""},
		{"tmux", map[string]string{"TMUX": "/tmp/tmux-1000/default,123,0"}, "tmux"},
		{"zellij", map[string]string{"ZELLIJ": "0"}, "zellij"},
		{"empty marker still counts", map[string]string{"ZELLIJ": ""}, "zellij"},
		{"tmux wins when both are set", map[string]string{"TMUX": "x", "ZELLIJ": "0"}, "tmux"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(lookupFrom(tt.env)))
		})
	}
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"tmux", "zellij"}, Names())

	m, err := New("tmux", Options{})
	require.NoError(t, err)
	assert.Equal(t, "tmux", m.Name())
	assert.Equal(t, "TMUX", m.EnvVar())

	_, err = New("screen", Options{})
	assert.ErrorIs(t, err, ErrUnknownMultiplexer)
}

func TestTmuxLaunchPicksUnusedName(t *testing.T) {
	r := &fakeRunner{outputs: map[string]runnerResult{
		key("tmux", "has-session", "-t", "=leo-mbp-1"): {},
		key("tmux", "has-session", "-t", "=leo-mbp-2"): {},
		key("tmux", "has-session", "-t", "=leo-mbp-3"): {out: []byte("can't find session: leo-mbp-3"), err: errExit1},
	}}
	m, err := New("tmux", Options{Runner: r, Identity: Identity{User: "leo", Host: "mbp"}})
	require.NoError(t, err)

	require.NoError(t, m.Launch(context.Background(), "nvim", []string{"main.go", "-R"}))

	require.Len(t, r.calls, 3)
	require.Len(t, r.interactive, 1)
	assert.Equal(t, "tmux", r.interactive[0].name)
	assert.Equal(t, []string{"new-session", "-s", "leo-mbp-3", "nvim", "main.go", "-R"}, r.interactive[0].args)
}

func TestTmuxNextSessionName(t *testing.T) {
	taken := map[string]bool{"leo-mbp-1": true, "leo-mbp-2": true}
	r := &fakeRunner{outputs: map[string]runnerResult{}}
	for _, n := range []string{"leo-mbp-1", "leo-mbp-2", "leo-mbp-3", "leo-mbp-4"} {
		if taken[n] {
			r.outputs[key("tmux", "has-session", "-t", "="+n)] = runnerResult{}
		} else {
			r.outputs[key("tmux", "has-session", "-t", "="+n)] = runnerResult{err: errExit1}
		}
	}
	tm := &Tmux{runner: r, id: Identity{User: "leo", Host: "mbp"}}

	assert.Equal(t, "leo-mbp-3", tm.NextSessionName(context.Background()))
}

func TestTmuxListSessions(t *testing.T) {
	out := "main\t3\t1700000000\t1\nleo-mbp-1\t1\t1700000100\t0\nbroken line\n"
	r := &fakeRunner{outputs: map[string]runnerResult{}}
	tm := &Tmux{runner: r}
	r.outputs[key("tmux", "list-sessions", "-F",
		"#{session_name}\t#{session_windows}\t#{session_created}\t#{session_attached}")] = runnerResult{out: []byte(out)}

	sessions, err := tm.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, Session{Name: "main", Multiplexer: "tmux", Windows: 3, Created: time.Unix(1700000000, 0), Attached: true}, sessions[0])
	assert.Equal(t, "leo-mbp-1", sessions[1].Name)
	assert.False(t, sessions[1].Attached)
}

func TestTmuxListSessionsNoServer(t *testing.T) {
	r := &fakeRunner{outputs: map[string]runnerResult{
		key("tmux", "list-sessions", "-F",
			"#{session_name}\t#{session_windows}\t#{session_created}\t#{session_attached}"): {
			out: []byte("no server running on /tmp/tmux-1000/default\n"), err: errExit1,
		},
	}}
	sessions, err := (&Tmux{runner: r}).ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestTmuxAttach(t *testing.T) {
	r := &fakeRunner{}
	tm := &Tmux{runner: r}

	require.NoError(t, tm.Attach(context.Background(), "work", true))
	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"switch-client", "-t", "=work"}, r.calls[0].args)

	require.NoError(t, tm.Attach(context.Background(), "work", false))
	require.Len(t, r.interactive, 1)
	assert.Equal(t, []string{"attach-session", "-t", "=work"}, r.interactive[0].args)
}

func TestTmuxKillReportsOutput(t *testing.T) {
	r := &fakeRunner{outputs: map[string]runnerResult{
		key("tmux", "kill-session", "-t", "=gone"): {out: []byte("can't find session: gone\n"), err: errExit1},
	}}
	err := (&Tmux{runner: r}).Kill(context.Background(), "gone")
	assert.ErrorContains(t, err, "can't find session: gone")
}

func TestZellijLaunch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "layout.kdl")
	require.NoError(t, os.WriteFile(src, []byte("layout {\n    pane command=\"nvim\"\n}\n"), 0o644))

	var seen string
	r := &fakeRunner{onInteractive: func(name string, args []string) error {
		require.Equal(t, "zellij", name)
		require.Len(t, args, 2)
		require.Equal(t, "--layout", args[0])
		data, err := os.ReadFile(args[1])
		require.NoError(t, err)
		seen = string(data)
		return nil
	}}
	m, err := New("zellij", Options{Runner: r, LayoutPath: src})
	require.NoError(t, err)

	require.NoError(t, m.Launch(context.Background(), "nvim", []string{"notes.md"}))
	assert.Equal(t, "layout {\n    pane {\n    command \"nvim\"\n    args \"--\" \"notes.md\"\n    focus true\n}\n}\n", seen)

	// The temporary layout is gone once zellij exits.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "layout.kdl", entries[0].Name())
}

func TestZellijLaunchMissingLayout(t *testing.T) {
	r := &fakeRunner{}
	z := &Zellij{runner: r, layoutPath: filepath.Join(t.TempDir(), "layout.kdl")}

	err := z.Launch(context.Background(), "nvim", nil)
	assert.ErrorContains(t, err, "read layout")
	assert.Empty(t, r.interactive)
}

func TestZellijLaunchWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")
	r := &fakeRunner{}
	z := &Zellij{runner: r}

	err := z.Launch(context.Background(), "nvim", nil)
	assert.ErrorIs(t, err, config.ErrNoHome)
	assert.Empty(t, r.interactive)
}

func TestZellijLaunchWithoutPlaceholderStillStarts(t *testing.T) {
	src := filepath.Join(t.TempDir(), "layout.kdl")
	require.NoError(t, os.WriteFile(src, []byte("layout {\n    pane\n}\n"), 0o644))
	r := &fakeRunner{}

	require.NoError(t, (&Zellij{runner: r, layoutPath: src}).Launch(context.Background(), "nvim", nil))
	assert.Len(t, r.interactive, 1)
}

func TestZellijListSessions(t *testing.T) {
	r := &fakeRunner{outputs: map[string]runnerResult{
		key("zellij", "list-sessions", "--short", "--no-formatting"): {out: []byte("dev\nscratch [Created 2h ago] (EXITED)\n\n")},
	}}
	sessions, err := (&Zellij{runner: r}).ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Session{
		{Name: "dev", Multiplexer: "zellij"},
		{Name: "scratch", Multiplexer: "zellij"},
	}, sessions)

	r.outputs[key("zellij", "list-sessions", "--short", "--no-formatting")] = runnerResult{
		out: []byte("No active zellij sessions found.\n"), err: errExit1,
	}
	sessions, err = (&Zellij{runner: r}).ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestZellijAttachInsideIsRefused(t *testing.T) {
	r := &fakeRunner{}
	z := &Zellij{runner: r}

	assert.ErrorIs(t, z.Attach(context.Background(), "dev", true), ErrNestedAttach)
	assert.Empty(t, r.interactive)

	require.NoError(t, z.Attach(context.Background(), "dev", false))
	assert.Equal(t, []string{"attach", "dev"}, r.interactive[0].args)
}

func TestZellijCaptureUnsupported(t *testing.T) {
	_, err := (&Zellij{}).Capture(context.Background(), "dev", 10)
	assert.ErrorIs(t, err, errors.ErrUnsupported)
}
