// internal/service/classifier/rules.go

package classifier

import "strings"

// Rule maps a category tag to a capture radius and importance score
type Rule struct {
	Tag                 string
	CaptureRadiusMeters float64
	ImportanceScore     int
}

func (r Rule) matches(tag string) bool {
	return r.Tag == tag
}

// Classification is the outcome of classifying a POI
type Classification struct {
	CaptureRadiusMeters float64
	ImportanceScore     int
	MatchedTag          string // empty when the fallback applied
}

// Fallback is used when no tag of a record matches a rule
var Fallback = Classification{CaptureRadiusMeters: 100, ImportanceScore: 0}

// RuleTable is an immutable ordered rule list plus the exclusion set.
// Build it once at startup and share it by pointer.
type RuleTable struct {
	rules      []Rule
	exclusions map[string]struct{}
}

// NewRuleTable copies rules and exclusions into an immutable table
func NewRuleTable(rules []Rule, exclusions []string) *RuleTable {
	t := &RuleTable{
		rules:      make([]Rule, len(rules)),
		exclusions: make(map[string]struct{}, len(exclusions)),
	}
	copy(t.rules, rules)
	for _, tag := range exclusions {
		t.exclusions[normalizeTag(tag)] = struct{}{}
	}
	return t
}

// DefaultRuleTable returns the production rule table
func DefaultRuleTable() *RuleTable {
	return NewRuleTable(
		[]Rule{
			{Tag: "restaurant", CaptureRadiusMeters: 50, ImportanceScore: 9},
			{Tag: "cafe", CaptureRadiusMeters: 40, ImportanceScore: 8},
			{Tag: "bar", CaptureRadiusMeters: 60, ImportanceScore: 8},
			{Tag: "bakery", CaptureRadiusMeters: 40, ImportanceScore: 8},
			{Tag: "night_club", CaptureRadiusMeters: 80, ImportanceScore: 7},
			{Tag: "store", CaptureRadiusMeters: 70, ImportanceScore: 7},
			{Tag: "shopping_mall", CaptureRadiusMeters: 200, ImportanceScore: 7},
			{Tag: "tourist_attraction", CaptureRadiusMeters: 150, ImportanceScore: 6},
			{Tag: "museum", CaptureRadiusMeters: 100, ImportanceScore: 6},
			{Tag: "park", CaptureRadiusMeters: 300, ImportanceScore: 5},
			{Tag: "stadium", CaptureRadiusMeters: 400, ImportanceScore: 5},
			{Tag: "lodging", CaptureRadiusMeters: 120, ImportanceScore: 5},
			{Tag: "train_station", CaptureRadiusMeters: 250, ImportanceScore: 4},
			{Tag: "university", CaptureRadiusMeters: 500, ImportanceScore: 4},
			{Tag: "airport", CaptureRadiusMeters: 1000, ImportanceScore: 3},
		},
		[]string{
			"locality",
			"political",
			"country",
			"administrative_area_level_1",
			"administrative_area_level_2",
			"administrative_area_level_3",
			"administrative_area_level_4",
			"administrative_area_level_5",
			"sublocality",
			"neighborhood",
			"colloquial_area",
			"postal_code",
			"route",
			"street_address",
			"premise",
			"plus_code",
			"geocode",
			"natural_feature",
		},
	)
}

// Classify returns the rule of the first record tag, in record order, that
// has a rule. Table order does not matter for precedence.
func (t *RuleTable) Classify(tags []string) Classification {
	for _, tag := range tags {
		tag = normalizeTag(tag)
		for _, r := range t.rules {
			if r.matches(tag) {
				return Classification{
					CaptureRadiusMeters: r.CaptureRadiusMeters,
					ImportanceScore:     r.ImportanceScore,
					MatchedTag:          r.Tag,
				}
			}
		}
	}
	return Fallback
}

// Excluded reports whether any tag is in the exclusion set
func (t *RuleTable) Excluded(tags []string) bool {
	for _, tag := range tags {
		if _, ok := t.exclusions[normalizeTag(tag)]; ok {
			return true
		}
	}
	return false
}

// Rules returns a copy of the ordered rules
func (t *RuleTable) Rules() []Rule {
	rules := make([]Rule, len(t.rules))
	copy(rules, t.rules)
	return rules
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
