package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leo/txr/internal/config"
	"github.com/leo/txr/internal/launch"
	"github.com/leo/txr/internal/logger"
	"github.com/leo/txr/internal/tui"
)

// Variant describes one of the binaries built from this module.
type Variant struct {
	// Name is the binary name and the directory under ~/.config.
	Name string
	// Multiplexer is used when the config does not name one.
	Multiplexer string
	Short       string
}

// Version is set via ldflags at build time.
var Version = "dev"

// newLauncher is swapped in tests to capture what would be run.
var newLauncher = launch.New

type options struct {
	editor      string
	multiplexer string
	configPath  string
	debug       bool
	sessions    bool
	printConfig bool
	showPath    bool
}

// NewRootCommand builds the command for v. It has no subcommands: every
// positional argument, whatever its name, is a file for the editor.
func NewRootCommand(v Variant) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   v.Name + " [flags] [--] [file...]",
		Short: v.Short,
		Long: fmt.Sprintf(`%s opens files in your editor inside a %s session.

Run from inside tmux or zellij, the editor starts in the current pane.
Otherwise a new session is created around it. Settings live in
~/.config/%s/config.toml, which is created on first run.

Flag parsing stops at the first argument %s does not know, so
"%s -R notes.md" passes -R to the editor. Use -- to pass anything else.`,
			v.Name, v.Multiplexer, v.Name, v.Name, v.Name),
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Own flags are split from editor arguments in RunE.
		DisableFlagParsing: true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			own, rest := splitArgs(fs, args)
			if err := fs.Parse(own); err != nil {
				return err
			}
			if help, _ := fs.GetBool("help"); help {
				return cmd.Help()
			}
			if version, _ := fs.GetBool("version"); version {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", v.Name, cmd.Version)
				return nil
			}
			if opts.debug {
				if err := logger.Init(logger.DefaultPath(v.Name)); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(v, opts)
			if err != nil {
				return err
			}
			switch {
			case opts.showPath:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Path)
				return nil
			case opts.printConfig:
				printConfig(cmd.OutOrStdout(), cfg)
				return nil
			case opts.sessions:
				return runSessions(cmd, newLauncher(cfg))
			}
			return newLauncher(cfg).Run(cmd.Context(), rest)
		},
	}
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	f := cmd.Flags()
	f.StringVarP(&opts.editor, "editor", "e", "", "editor to run (overrides config)")
	f.StringVarP(&opts.multiplexer, "multiplexer", "m", "", "tmux or zellij (overrides config)")
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/"+v.Name+"/config.toml)")
	f.BoolVar(&opts.debug, "debug", false, "write a debug log to "+logger.DefaultPath(v.Name))
	f.BoolVar(&opts.sessions, "sessions", false, "pick a running session to attach to (j/k move, enter attach, dd kill, q quit)")
	f.BoolVar(&opts.printConfig, "print-config", false, "print the resolved configuration")
	f.BoolVar(&opts.showPath, "config-path", false, "print the config file path")
	f.BoolP("help", "h", false, "help for "+v.Name)
	f.BoolP("version", "v", false, "version for "+v.Name)
	return cmd
}

// splitArgs separates the tool's own leading flags from the arguments meant
// for the editor. Splitting stops at "--", at the first positional argument
// and at the first flag fs does not define.
func splitArgs(fs *pflag.FlagSet, args []string) (own, rest []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return args[:i], args[i+1:]
		}
		f, inline := lookupFlag(fs, a)
		if f == nil {
			return args[:i], args[i:]
		}
		if f.NoOptDefVal == "" && !inline {
			i++ // the value is the next argument
		}
	}
	return args, nil
}

// lookupFlag finds the flag arg refers to. inline reports whether the value
// is part of arg itself ("--editor=vim", "-evim").
func lookupFlag(fs *pflag.FlagSet, arg string) (f *pflag.Flag, inline bool) {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name, _, hasValue := strings.Cut(arg[2:], "=")
		return fs.Lookup(name), hasValue
	case strings.HasPrefix(arg, "-") && len(arg) > 1:
		return fs.ShorthandLookup(arg[1:2]), len(arg) > 2
	}
	return nil, false
}

func loadConfig(v Variant, opts *options) (config.Config, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.Path(v.Name)
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	cfg, err := config.LoadOrCreate(path, config.Defaults(v.Multiplexer))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.editor != "" {
		cfg.Editor = opts.editor
	}
	if opts.multiplexer != "" {
		cfg.Multiplexer = opts.multiplexer
	}
	logger.Get().WithField("path", cfg.Path).WithField("editor", cfg.Editor).
		WithField("multiplexer", cfg.Multiplexer).Debug("config loaded")
	return cfg, nil
}

// Main runs the command for v and exits. A child that exits non-zero makes
// the tool exit with the same status.
func Main(v Variant) {
	err := NewRootCommand(v).Execute()
	logger.Close()
	os.Exit(exitCode(err, os.Stderr))
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stderr, tui.ErrorText("error: "+err.Error()))
	return 1
}
