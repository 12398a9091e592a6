package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leo/txr/internal/mux"
)

// Group holds the sessions of one multiplexer.
type Group struct {
	Multiplexer string
	Sessions    []mux.Session
}

// ItemKind distinguishes multiplexer headers from session entries.
type ItemKind int

const (
	KindGroup ItemKind = iota
	KindSession
)

// TreeItem is one visible row in the flattened tree.
type TreeItem struct {
	Kind         ItemKind
	GroupIndex   int
	SessionIndex int
}

// GroupByMultiplexer groups sessions by multiplexer, sorted by name within
// each group. Multiplexers without sessions are left out.
func GroupByMultiplexer(sessions []mux.Session) []Group {
	byMux := make(map[string][]mux.Session)
	for _, s := range sessions {
		byMux[s.Multiplexer] = append(byMux[s.Multiplexer], s)
	}
	groups := make([]Group, 0, len(byMux))
	for name, ss := range byMux {
		sort.Slice(ss, func(i, j int) bool { return ss[i].Name < ss[j].Name })
		groups = append(groups, Group{Multiplexer: name, Sessions: ss})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Multiplexer < groups[j].Multiplexer
	})
	return groups
}

// FlattenTree builds the visible flat list from groups.
// Groups are always expanded; headers are non-selectable.
func FlattenTree(groups []Group) []TreeItem {
	var items []TreeItem
	for gi, g := range groups {
		items = append(items, TreeItem{Kind: KindGroup, GroupIndex: gi})
		for si := range g.Sessions {
			items = append(items, TreeItem{Kind: KindSession, GroupIndex: gi, SessionIndex: si})
		}
	}
	return items
}

// NextSession returns the index of the next KindSession item after from, or from if none.
func NextSession(items []TreeItem, from int) int {
	for i := from + 1; i < len(items); i++ {
		if items[i].Kind == KindSession {
			return i
		}
	}
	return from
}

// PrevSession returns the index of the previous KindSession item before from, or from if none.
func PrevSession(items []TreeItem, from int) int {
	for i := from - 1; i >= 0; i-- {
		if items[i].Kind == KindSession {
			return i
		}
	}
	return from
}

// NearestSession returns the closest KindSession to the given index.
// Out-of-bounds indices are clamped; a header prefers the previous session
// over the next one, so deleting the last row moves the cursor up.
func NearestSession(items []TreeItem, from int) int {
	if len(items) == 0 {
		return 0
	}
	if from >= len(items) {
		from = len(items) - 1
	}
	if from < 0 {
		from = 0
	}
	if items[from].Kind == KindSession {
		return from
	}
	if prev := PrevSession(items, from); prev != from {
		return prev
	}
	if next := NextSession(items, from); next != from {
		return next
	}
	return 0
}

// FirstSession returns the index of the first KindSession item, or 0 if none.
func FirstSession(items []TreeItem) int {
	for i, it := range items {
		if it.Kind == KindSession {
			return i
		}
	}
	return 0
}

// RenderTreeItem renders a single row.
func RenderTreeItem(item TreeItem, groups []Group, selected bool, width int, now time.Time) string {
	switch item.Kind {
	case KindGroup:
		g := groups[item.GroupIndex]
		text := " " + truncate(g.Multiplexer, width-2)
		count := fmt.Sprintf("%d ", len(g.Sessions))
		pad := max(width-len(text)-len(count), 0)
		return groupStyle.Render(text+strings.Repeat(" ", pad)) + dimStyle.Render(count)

	case KindSession:
		s := groups[item.GroupIndex].Sessions[item.SessionIndex]
		right := " "
		if !s.Created.IsZero() {
			right = " " + formatElapsed(now.Sub(s.Created)) + " "
		}
		prefix := "   "
		avail := width - len(prefix) - 2 - len(right) // 2 for icon+space
		middle := s.Name
		if s.Windows > 1 {
			middle = fmt.Sprintf("%s (%d)", s.Name, s.Windows)
		}
		if len(middle) > avail {
			middle = truncate(middle, avail)
		}
		gap := max(avail-len(middle), 0)

		if selected {
			icon := idleIconSelectedStyle.Render("○")
			if s.Attached {
				icon = attachedIconSelectedStyle.Render("●")
			}
			return selectedStyle.Render(prefix) + icon + selectedStyle.Render(" "+middle+strings.Repeat(" ", gap)+right)
		}
		icon := sessionItemStyle.Render("○")
		if s.Attached {
			icon = attachedIconStyle.Render("●")
		}
		return sessionItemStyle.Render(prefix) + icon + sessionItemStyle.Render(" "+middle) + dimStyle.Render(strings.Repeat(" ", gap)+right)
	}
	return ""
}

// truncate shortens s to maxLen, adding ellipsis if needed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatElapsed returns a human-readable short duration string.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

// VisibleSlice returns the start index for scrolling the tree view.
func VisibleSlice(total, cursor, height int) int {
	if total <= height {
		return 0
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	if start+height > total {
		start = total - height
	}
	return start
}
