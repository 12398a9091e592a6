package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	tests := []struct {
		user, host string
		want       string
	}{
		{"leo", "mbp", "leo-mbp"},
		{"leo", "mbp.local", "leo-mbp_local"},
		{"first last", "host:1", "first_last-host_1"},
		{"", "", "user-localhost"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Base(tt.user, tt.host), "Base(%q, %q)", tt.user, tt.host)
	}
}

func TestUniqueAmong(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"no sessions", nil, "leo-mbp-1"},
		{"first taken", []string{"leo-mbp-1"}, "leo-mbp-2"},
		{"gap is reused", []string{"leo-mbp-1", "leo-mbp-3"}, "leo-mbp-2"},
		{"unrelated names", []string{"main", "leo-mbp", "leo-mbp-10"}, "leo-mbp-1"},
		{"run of taken", []string{"leo-mbp-1", "leo-mbp-2", "leo-mbp-3"}, "leo-mbp-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueAmong("leo-mbp", tt.existing)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, tt.existing, got)
		})
	}
}

func TestUniqueName_ProbesInOrder(t *testing.T) {
	var probed []string
	got := UniqueName("x", func(name string) bool {
		probed = append(probed, name)
		return len(probed) < 3
	})
	assert.Equal(t, "x-3", got)
	assert.Equal(t, []string{"x-1", "x-2", "x-3"}, probed)
}
