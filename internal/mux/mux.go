package mux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
)

var (
	// ErrUnknownMultiplexer is returned by New for names nobody registered.
	ErrUnknownMultiplexer = errors.New("unknown multiplexer")
	// ErrNestedAttach is returned when attaching would nest a session inside
	// one the multiplexer cannot switch away from.
	ErrNestedAttach = errors.New("cannot attach from inside this multiplexer")
)

// Session is a running multiplexer session.
type Session struct {
	Name        string
	Multiplexer string
	Windows     int
	Created     time.Time
	Attached    bool
}

// Multiplexer launches an editor in a new session and manages existing ones.
type Multiplexer interface {
	// Name is the binary name, also used as the registry key.
	Name() string
	// EnvVar is set in every process running inside one of its sessions.
	EnvVar() string
	// Launch starts a new session running editor with args and blocks until
	// the client detaches or exits.
	Launch(ctx context.Context, editor string, args []string) error
	// ListSessions returns running sessions. No server means no sessions.
	ListSessions(ctx context.Context) ([]Session, error)
	// Attach connects the terminal to an existing session. inside reports
	// whether the caller already runs inside this multiplexer.
	Attach(ctx context.Context, name string, inside bool) error
	// Kill terminates a session.
	Kill(ctx context.Context, name string) error
	// Capture returns the last lines of the session's active pane.
	// Multiplexers that cannot do this return errors.ErrUnsupported.
	Capture(ctx context.Context, name string, lines int) (string, error)
}

// Options carries what a multiplexer needs to be constructed.
type Options struct {
	Runner Runner
	// LayoutPath is the zellij layout holding the editor placeholder.
	LayoutPath string
	// Identity seeds tmux session names.
	Identity Identity
}

// Identity is the user and host a session name is derived from.
type Identity struct {
	User string
	Host string
}

// Factory builds a multiplexer from options.
type Factory func(Options) Multiplexer

type entry struct {
	envVar  string
	factory Factory
}

var registry = map[string]entry{}

// Register adds a multiplexer to the global registry.
func Register(name, envVar string, f Factory) {
	registry[name] = entry{envVar: envVar, factory: f}
}

// New returns the named multiplexer. A nil Runner means OSRunner.
func New(name string, opts Options) (Multiplexer, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownMultiplexer, name, Names())
	}
	if opts.Runner == nil {
		opts.Runner = OSRunner{}
	}
	return e.factory(opts), nil
}

// Names returns the registered multiplexer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns the name of the multiplexer the process is running inside,
// or "" when none of the registered markers are set. A marker counts as set
// even when its value is empty.
func Detect(lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range Names() {
		if _, ok := lookup(registry[name].envVar); ok {
			return name
		}
	}
	return ""
}
