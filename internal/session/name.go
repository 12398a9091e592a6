package session

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

// Base joins user and host into a session name prefix, e.g. "leo-mbp".
// Characters tmux treats specially in targets ('.', ':') and whitespace are
// replaced with '_'.
func Base(user, host string) string {
	if user == "" {
		user = "user"
	}
	if host == "" {
		host = "localhost"
	}
	return sanitize(user) + "-" + sanitize(host)
}

// UniqueName returns the first of base-1, base-2, ... for which exists
// reports false.
func UniqueName(base string, exists func(string) bool) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s-%d", base, n)
		if !exists(name) {
			return name
		}
	}
}

// UniqueAmong is UniqueName over a known list of session names.
func UniqueAmong(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s] = true
	}
	return UniqueName(base, func(name string) bool { return taken[name] })
}

// CurrentUser returns the login name, falling back to $USER.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// Windows usernames come as DOMAIN\name.
		if i := strings.LastIndex(u.Username, `\`); i >= 0 {
			return u.Username[i+1:]
		}
		return u.Username
	}
	return os.Getenv("USER")
}

// CurrentHost returns the short hostname, without any domain part.
func CurrentHost() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	if i := strings.Index(h, "."); i > 0 {
		h = h[:i]
	}
	return h
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
