package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/leo/txr/internal/config"
)

// Placeholder is the pane in the user's layout that gets replaced by the
// editor pane.
const Placeholder = `pane command="nvim"`

// ErrPlaceholderMissing means the layout has no placeholder pane. The layout
// is still usable, it just won't open the editor.
var ErrPlaceholderMissing = errors.New("layout has no " + Placeholder + " pane")

// DefaultPath returns ~/.config/zellij/layout.kdl.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", config.ErrNoHome
	}
	return filepath.Join(home, ".config", "zellij", "layout.kdl"), nil
}

// PaneBlock renders the KDL pane that runs editor with args.
func PaneBlock(editor string, args []string) string {
	var b strings.Builder
	b.WriteString("pane {\n")
	fmt.Fprintf(&b, "    command %s\n", quote(editor))
	if len(args) > 0 {
		b.WriteString(`    args "--"`)
		for _, a := range args {
			b.WriteString(" ")
			b.WriteString(quote(a))
		}
		b.WriteString("\n")
	}
	b.WriteString("    focus true\n")
	b.WriteString("}")
	return b.String()
}

// Substitute replaces every placeholder pane in content with the editor
// pane. It returns ErrPlaceholderMissing alongside the unchanged content when
// there is nothing to replace.
func Substitute(content, editor string, args []string) (string, error) {
	if !strings.Contains(content, Placeholder) {
		return content, ErrPlaceholderMissing
	}
	return strings.ReplaceAll(content, Placeholder, PaneBlock(editor, args)), nil
}

// WriteTemp writes content next to the layout at src and returns the new
// file's path. Each call gets its own file so concurrent launches don't
// clobber each other.
func WriteTemp(src, content string) (string, error) {
	path := filepath.Join(filepath.Dir(src), "temp_layout-"+uuid.NewString()+".kdl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write temporary layout: %w", err)
	}
	return path, nil
}

// Prepare reads the layout at src, injects the editor pane and writes the
// result to a temporary sibling file. A missing placeholder is returned as
// ErrPlaceholderMissing together with a valid path.
func Prepare(src, editor string, args []string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read layout: %w", err)
	}
	content, subErr := Substitute(string(data), editor, args)
	path, err := WriteTemp(src, content)
	if err != nil {
		return "", err
	}
	return path, subErr
}

var kdlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quote returns s as a KDL string literal.
func quote(s string) string {
	return `"` + kdlEscaper.Replace(s) + `"`
}
