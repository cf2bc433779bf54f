package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordMatcher_Match(t *testing.T) {
	t.Parallel()
	m := NewKeywordMatcher(DefaultKeywordRules, "zone3")

	tests := []struct {
		name    string
		query   string
		want    string
		matched bool
	}{
		{"coffee", "I love coffee and pastries", "zone8", true},
		{"case insensitive", "EMERGENCY room tour", "zone1", true},
		{"construction", "bridge construction", "zone2", true},
		{"gaming", "indie titles", "zone4", true},
		{"farming", "hydroponic lettuce", "zone5", true},
		{"multiword keyword", "3d printing demo", "zone6", true},
		{"automation goes to earlier zone", "automation", "zone6", true},
		{"appliance", "smart appliance", "zone7", true},
		{"short keyword substring", "ml pipeline", "zone3", true},
		{"earlier rule wins over later", "doctor drinking coffee", "zone1", true},
		{"no hit uses default", "poetry slam", "zone3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, matched := m.Match(tt.query)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestKeywordMatcher_LowercasesRules(t *testing.T) {
	t.Parallel()
	m := NewKeywordMatcher([]KeywordRule{{ZoneID: "zoneX", Keywords: []string{"Telescope", ""}}}, "zoneD")

	got, ok := m.Match("big TELESCOPE")
	assert.True(t, ok)
	assert.Equal(t, "zoneX", got)

	got, ok = m.Match("anything")
	assert.False(t, ok, "empty keywords never match")
	assert.Equal(t, "zoneD", got)
}

func TestKeywordMatcher_DoesNotAliasInput(t *testing.T) {
	t.Parallel()
	rules := []KeywordRule{{ZoneID: "zone1", Keywords: []string{"Nurse"}}}
	m := NewKeywordMatcher(rules, "zone1")
	rules[0].Keywords[0] = "changed"

	_, ok := m.Match("nurse station")
	assert.True(t, ok)
	assert.Equal(t, []string{"zone1"}, m.ZoneIDs())
}
