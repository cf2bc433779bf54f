package classifier

import "strings"

// KeywordRule maps a set of substrings to a zone.
type KeywordRule struct {
	ZoneID   string
	Keywords []string
}

// DefaultKeywordRules is the local matcher table. Rules are tried in order and
// the first rule with any hit wins, so overlapping words such as "automation"
// resolve to the earlier zone.
var DefaultKeywordRules = []KeywordRule{
	{ZoneID: "zone1", Keywords: []string{"health", "medicine", "doctor", "nurse", "emergency", "patient"}},
	{ZoneID: "zone2", Keywords: []string{"civil", "construction", "structural", "building", "materials"}},
	{ZoneID: "zone3", Keywords: []string{"computer", "engineering", "robot", "embedded", "ai", "ml", "iot"}},
	{ZoneID: "zone4", Keywords: []string{"game", "esport", "vr", "arcade", "indie"}},
	{ZoneID: "zone5", Keywords: []string{"farm", "agri", "hydroponic", "crop", "drone"}},
	{ZoneID: "zone6", Keywords: []string{"factory", "automation", "manufacturing", "cnc", "3d printing"}},
	{ZoneID: "zone7", Keywords: []string{"home", "automation", "appliance", "energy", "security"}},
	{ZoneID: "zone8", Keywords: []string{"coffee", "barista", "cafe", "brew", "pastry"}},
}

// KeywordMatcher is the deterministic local classifier.
type KeywordMatcher struct {
	rules       []KeywordRule
	defaultZone string
}

// NewKeywordMatcher copies rules, lower-casing every keyword.
func NewKeywordMatcher(rules []KeywordRule, defaultZone string) *KeywordMatcher {
	cp := make([]KeywordRule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			kws[j] = strings.ToLower(k)
		}
		cp[i] = KeywordRule{ZoneID: r.ZoneID, Keywords: kws}
	}
	return &KeywordMatcher{rules: cp, defaultZone: defaultZone}
}

// Match returns the zone id of the first rule hit, or the default zone.
// Matching is plain substring search, so "ai" also hits "train".
func (m *KeywordMatcher) Match(query string) (zoneID string, matched bool) {
	q := strings.ToLower(query)
	for _, r := range m.rules {
		for _, k := range r.Keywords {
			if k != "" && strings.Contains(q, k) {
				return r.ZoneID, true
			}
		}
	}
	return m.defaultZone, false
}

// ZoneIDs returns every zone id referenced by the rules.
func (m *KeywordMatcher) ZoneIDs() []string {
	ids := make([]string, 0, len(m.rules))
	for _, r := range m.rules {
		ids = append(ids, r.ZoneID)
	}
	return ids
}
