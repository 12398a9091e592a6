package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/leo/txr/internal/config"
)

// printConfig writes cfg in config.toml syntax, headed by its path.
func printConfig(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "# %s\n", cfg.Path)
	fmt.Fprintf(w, "editor = %q\n", cfg.Editor)
	fmt.Fprintf(w, "multiplexer = %q\n", cfg.Multiplexer)
	if cfg.Layout != "" {
		fmt.Fprintf(w, "layout = %q\n", cfg.Layout)
	}
	keys := make([]string, 0, len(cfg.Extra))
	for k := range cfg.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %q\n", k, cfg.Extra[k])
	}
}
